package chat

import (
	"time"

	"github.com/saahil/toolcalling/tools"
)

// Turn is one query/answer exchange within a conversation session.
type Turn struct {
	// ID is the unique identifier of the turn.
	ID string `json:"id"`
	// Query is the user's question.
	Query string `json:"query"`
	// FilterInstruction is the user-supplied refinement instruction.
	FilterInstruction string `json:"filter_instruction,omitempty"`
	// RawAnswer is the agent's answer before filtering.
	RawAnswer string `json:"raw_answer"`
	// FilteredAnswer is derived from RawAnswer by the response filter.
	// It equals RawAnswer when no instruction was given.
	FilteredAnswer string `json:"filtered_answer"`
	// ToolTrace records the tool executions of this turn, at most one.
	ToolTrace []tools.Result `json:"tool_trace,omitempty"`
	// CreatedAt is when the turn completed.
	CreatedAt time.Time `json:"created_at"`
}
