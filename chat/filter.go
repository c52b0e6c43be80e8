package chat

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/pkg/llms"
)

// Filter is the second LLM pass that rewrites an answer according to a
// user-supplied instruction. It is best-effort: the output is not
// validated against the instruction.
type Filter struct {
	LLM llms.Model

	callOpts []llms.CallOption
}

// NewFilter creates a response filter using the given model.
func NewFilter(llmModel llms.Model, callOpts ...llms.CallOption) *Filter {
	return &Filter{
		LLM:      llmModel,
		callOpts: callOpts,
	}
}

// Refine rewrites rawAnswer per the instruction with one LLM call.
// An empty instruction returns rawAnswer unchanged without calling the
// model. A failed LLM call is an error, never a silent fallback to the
// unfiltered answer.
func (f *Filter) Refine(ctx context.Context, rawAnswer, instruction string) (string, error) {
	if instruction == "" {
		return rawAnswer, nil
	}

	prompt := fmt.Sprintf("Given the response: '%s', refine the content based on the following instruction: '%s'.",
		rawAnswer, instruction)

	resp, err := f.LLM.GenerateContent(ctx,
		[]llms.Message{llms.MessageFromTextParts(llms.RoleSystem, prompt)},
		f.callOpts...)
	if err != nil {
		return "", errors.Wrap(err, "failed to filter response")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("filter: LLM returned empty response")
	}
	return resp.Choices[0].Content, nil
}
