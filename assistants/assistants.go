package assistants

import (
	"context"

	"github.com/effective-security/xlog"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/tools"
)

var logger = xlog.NewPackageLogger("github.com/saahil/toolcalling", "assistants")

//go:generate mockgen -destination=../mocks/mockllms/llm_mock.gen.go -package mockllms github.com/saahil/toolcalling/pkg/llms Model
//go:generate mockgen -source=assistants.go -destination=../mocks/mockassistants/assistants_mock.gen.go -package mockassistants

// IAssistant is the agent-facing surface of an assistant.
type IAssistant interface {
	// Name returns the name of the Assistant.
	Name() string
	// Description returns the description of the Assistant.
	Description() string

	// Call runs one turn: the model decides whether to invoke a tool, and
	// the result carries the raw answer and the tool trace.
	Call(ctx context.Context, input string) (*Result, error)
}

// Callback receives assistant lifecycle events.
type Callback interface {
	tools.Callback
	OnAssistantStart(ctx context.Context, assistant IAssistant, input string)
	OnAssistantEnd(ctx context.Context, assistant IAssistant, input string, result *Result)
	OnAssistantError(ctx context.Context, assistant IAssistant, input string, err error)
	OnToolNotFound(ctx context.Context, assistant IAssistant, toolName string)
	OnAssistantLLMCallStart(ctx context.Context, assistant IAssistant, llm llms.Model, payload []llms.Message)
	OnAssistantLLMCallEnd(ctx context.Context, assistant IAssistant, llm llms.Model, resp *llms.ContentResponse)
}

// Result is the outcome of one assistant turn.
type Result struct {
	// Content is the raw answer: either the model's own text, or the
	// output of a return-direct tool.
	Content string
	// ToolTrace records the tool execution of this turn, if any.
	// At most one tool runs per turn.
	ToolTrace []tools.Result
	// Response is the model response that produced this result.
	Response *llms.ContentResponse
}
