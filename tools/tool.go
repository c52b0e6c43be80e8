package tools

import (
	"context"

	"github.com/cockroachdb/errors"
)

//go:generate mockgen -source=tool.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

// Error taxonomy shared by all tool adapters. Adapters return typed errors
// instead of encoding failures as prose in the success payload.
var (
	// ErrExternalService indicates a transport failure or a non-2xx
	// response from the backing service.
	ErrExternalService = errors.New("external service failure")
	// ErrNotFound indicates the lookup matched nothing. It is an expected,
	// user-facing outcome, not a failure.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedField indicates a requested report field is not recognized.
	ErrUnsupportedField = errors.New("unsupported field")
	// ErrQueryRejected indicates a database query was refused by the
	// read-only guard before execution.
	ErrQueryRejected = errors.New("query rejected")
	// ErrQueryExecution indicates the database rejected or failed the query.
	ErrQueryExecution = errors.New("query execution failed")
	// ErrDuplicateToolName indicates a registration conflict in the registry.
	ErrDuplicateToolName = errors.New("duplicate tool name")
)

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given JSON input and returns the result.
	// If the tool fails to parse the input, it returns an error wrapping
	// chatmodel.ErrFailedUnmarshalInput.
	Call(context.Context, string) (string, error)
}

// Callback receives tool lifecycle events.
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, input string)
	OnToolEnd(ctx context.Context, tool ITool, input string, output string)
	OnToolError(ctx context.Context, tool ITool, input string, err error)
}

// Tool is a typed tool with a structured input and output.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// Result records one tool execution in a turn's trace.
type Result struct {
	// ToolName is the name of the executed tool.
	ToolName string `json:"tool_name"`
	// Output is the textual output of the tool.
	Output string `json:"output"`
	// Succeeded reports whether the call completed. Expected outcomes such
	// as "no results" are successes.
	Succeeded bool `json:"succeeded"`
	// Error holds the failure message when Succeeded is false.
	Error string `json:"error,omitempty"`
}
