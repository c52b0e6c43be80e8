// Package openai provides an llms.Model implementation backed by an
// OpenAI-compatible chat-completions API, including Azure OpenAI and
// Perplexity endpoints.
package openai

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/pkg/llms/openai/internal/openaiclient"
)

// RoleFnc maps a chat message role to the wire role of the provider.
func RoleFnc(role llms.Role) string {
	switch role {
	case llms.RoleSystem:
		return "system"
	case llms.RoleAI:
		return "assistant"
	case llms.RoleHuman:
		return "user"
	case llms.RoleTool:
		return "tool"
	default:
		return "user"
	}
}

// LLM is an OpenAI-backed implementation of llms.Model.
type LLM struct {
	client *openaiclient.Client
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	_, c, err := newClient(opts...)
	if err != nil {
		return nil, err
	}
	return &LLM{client: c}, nil
}

// GetName implements the llms.Model interface.
func (o *LLM) GetName() string {
	return o.client.Model
}

// GetProviderType implements the llms.Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderType(o.client.Provider)
}

// GenerateContent implements the llms.Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs := make([]*openaiclient.ChatMessage, 0, len(messages))
	for _, mc := range messages {
		msg := &openaiclient.ChatMessage{
			Role: RoleFnc(mc.Role),
		}
		for _, p := range mc.Parts {
			switch pt := p.(type) {
			case llms.TextContent:
				msg.Content += pt.Text
			case llms.ToolCall:
				if pt.FunctionCall == nil {
					return nil, errors.New("tool call without a function call")
				}
				msg.ToolCalls = append(msg.ToolCalls, openaiclient.ToolCall{
					ID:   pt.ID,
					Type: pt.Type,
					Function: openaiclient.ToolFunction{
						Name:      pt.FunctionCall.Name,
						Arguments: pt.FunctionCall.Arguments,
					},
				})
			case llms.ToolCallResponse:
				msg.ToolCallID = pt.ToolCallID
				msg.Name = pt.Name
				msg.Content = pt.Content
			default:
				return nil, errors.Newf("unsupported content part type: %T", p)
			}
		}
		chatMsgs = append(chatMsgs, msg)
	}

	req := &openaiclient.ChatRequest{
		Model:       opts.Model,
		Messages:    chatMsgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		StopWords:   opts.StopWords,
		Seed:        opts.Seed,
		ToolChoice:  opts.ToolChoice,
	}
	if opts.JSONMode {
		req.ResponseFormat = openaiclient.ResponseFormatJSON
	}
	for _, tool := range opts.Tools {
		if tool.Function == nil {
			continue
		}
		req.Tools = append(req.Tools, openaiclient.Tool{
			Type: tool.Type,
			Function: openaiclient.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
				Strict:      tool.Function.Strict,
			},
		})
	}

	result, err := o.client.CreateChat(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, errors.WithStack(openaiclient.ErrEmptyResponse)
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: c.FinishReason,
		}
		for _, tc := range c.Message.ToolCalls {
			choices[i].ToolCalls = append(choices[i].ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		// populate the legacy single-function field from the first tool call
		if len(choices[i].ToolCalls) > 0 {
			choices[i].FuncCall = choices[i].ToolCalls[0].FunctionCall
		}
	}

	return &llms.ContentResponse{Choices: choices}, nil
}
