package assistants

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/pkg/llmutils"
	"github.com/saahil/toolcalling/tools"
)

// Assistant runs the tool-dispatch loop: one decision call to the model,
// optionally one tool execution. All registered tools are return-direct,
// so a tool's output is the turn's final answer and no further model
// reasoning happens.
type Assistant struct {
	LLM llms.Model

	registry *tools.Registry
	cfg      *Config

	name        string
	description string
	sysPrompt   string
}

var _ IAssistant = (*Assistant)(nil)

// NewAssistant initializes the Assistant with a model, a system prompt and
// the tool registry.
func NewAssistant(llmModel llms.Model, sysPrompt string, registry *tools.Registry, options ...Option) *Assistant {
	return &Assistant{
		LLM:         llmModel,
		registry:    registry,
		cfg:         NewConfig(options...),
		sysPrompt:   sysPrompt,
		name:        "Multi-Tool Assistant",
		description: "An AI assistant that answers questions using external tools.",
	}
}

// WithName sets the name of the Assistant.
func (a *Assistant) WithName(name string) *Assistant {
	a.name = name
	return a
}

// WithDescription sets the description of the Assistant.
func (a *Assistant) WithDescription(description string) *Assistant {
	a.description = description
	return a
}

// Name returns the name of the Assistant.
func (a *Assistant) Name() string {
	return a.name
}

// Description returns the description of the Assistant.
func (a *Assistant) Description() string {
	return a.description
}

// GetTools returns the registered tools.
func (a *Assistant) GetTools() []tools.ITool {
	return a.registry.Tools()
}

// GetSystemPrompt generates the system prompt, appending the tool listing.
func (a *Assistant) GetSystemPrompt() string {
	prompt := strings.TrimRight(a.sysPrompt, "\n")
	if len(a.registry.Tools()) > 0 {
		prompt = fmt.Sprintf("%s\n\n# AVAILABLE TOOLS\n%s", prompt, a.registry.Descriptions())
	}
	return prompt
}

// Call runs one turn. Malformed tool arguments, unknown tool names and
// external service failures are surfaced to the caller; there is no retry.
// When a tool was dispatched and failed, the returned Result still carries
// the failed trace entry alongside the error.
func (a *Assistant) Call(ctx context.Context, input string) (*Result, error) {
	callback := a.cfg.CallbackHandler
	if callback != nil {
		callback.OnAssistantStart(ctx, a, input)
	}

	result, err := a.run(ctx, a.cfg, input)
	if err != nil {
		if callback != nil {
			callback.OnAssistantError(ctx, a, input, err)
		}
		// result carries the failed tool trace when a tool was dispatched
		return result, err
	}
	if callback != nil {
		callback.OnAssistantEnd(ctx, a, input, result)
	}
	return result, nil
}

func (a *Assistant) run(ctx context.Context, cfg *Config, input string) (*Result, error) {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return nil, errors.WithStack(chatmodel.ErrInvalidChatContext)
	}

	messageHistory := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, a.GetSystemPrompt()),
	}
	if cfg.Store != nil && !cfg.SkipMessageHistory {
		prevMessages := cfg.Store.Messages(ctx)
		logger.ContextKV(ctx, xlog.DEBUG,
			"assistant", a.name,
			"chat_id", chatID,
			"message_history", len(prevMessages))
		messageHistory = append(messageHistory, prevMessages...)
	}
	messageHistory = append(messageHistory, llms.MessageFromTextParts(llms.RoleHuman, input))

	bytesLimit := uint64(values.NumbersCoalesce(cfg.MaxLength, DefaultMaxContentSize))
	if bytesSent := llmutils.CountMessagesContentSize(messageHistory); bytesSent > bytesLimit {
		return nil, errors.Newf("assistant %s: the content size exceeded limit", a.name)
	}

	var extraOptions []llms.CallOption
	if len(a.registry.Tools()) > 0 {
		prov := a.LLM.GetProviderType()
		if !prov.Supports(llms.CapabilityFunctionCalling) {
			return nil, errors.Newf("assistant %s: the LLM does not support function calling", a.name)
		}
		extraOptions = append(extraOptions, llms.WithTools(a.registry.Definitions()))
	}
	callOpts := cfg.GetCallOptions(extraOptions...)

	if cfg.CallbackHandler != nil {
		cfg.CallbackHandler.OnAssistantLLMCallStart(ctx, a, a.LLM, messageHistory)
	}

	resp, err := a.LLM.GenerateContent(ctx, messageHistory, callOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate content from LLM")
	}

	if cfg.CallbackHandler != nil {
		cfg.CallbackHandler.OnAssistantLLMCallEnd(ctx, a, a.LLM, resp)
	}

	if len(resp.Choices) == 0 {
		logger.ContextKV(ctx, xlog.ERROR,
			"assistant", a.name,
			"status", "empty_choices",
			"input", slices.StringUpto(input, 64),
		)
		return nil, errors.Newf("assistant %s: LLM returned empty response with no choices", a.name)
	}

	choice := resp.Choices[0]
	result := &Result{Response: resp}

	if len(choice.ToolCalls) == 0 {
		// Answering: no tool was selected, the model's own text is the answer.
		result.Content = choice.Content
		return result, nil
	}

	// ToolSelected: return-direct semantics, only the first call runs.
	toolCall := choice.ToolCalls[0]
	if len(choice.ToolCalls) > 1 {
		logger.ContextKV(ctx, xlog.WARNING,
			"assistant", a.name,
			"status", "extra_tool_calls_ignored",
			"tool_calls", len(choice.ToolCalls),
		)
	}

	output, err := a.executeToolCall(ctx, cfg, toolCall)
	toolName := toolCall.FunctionCall.Name
	if err != nil {
		result.ToolTrace = append(result.ToolTrace, tools.Result{
			ToolName:  toolName,
			Succeeded: false,
			Error:     err.Error(),
		})
		return result, err
	}

	result.ToolTrace = append(result.ToolTrace, tools.Result{
		ToolName:  toolName,
		Output:    output,
		Succeeded: true,
	})
	result.Content = output
	return result, nil
}

func (a *Assistant) executeToolCall(ctx context.Context, cfg *Config, toolCall llms.ToolCall) (string, error) {
	toolName := toolCall.FunctionCall.Name
	toolArgs := toolCall.FunctionCall.Arguments

	tool, ok := a.registry.Lookup(toolName)
	if !ok {
		if cfg.CallbackHandler != nil {
			cfg.CallbackHandler.OnToolNotFound(ctx, a, toolName)
		}
		availableTools := strings.Join(a.registry.Names(), ", ")
		logger.ContextKV(ctx, xlog.WARNING,
			"assistant", a.name,
			"status", "tool_not_found",
			"tool_name", toolName,
			"available_tools", availableTools,
		)
		return "", errors.Newf("tool %q not found, available tools: %s", toolName, availableTools)
	}

	if cfg.CallbackHandler != nil {
		cfg.CallbackHandler.OnToolStart(ctx, tool, toolArgs)
	}

	output, err := tool.Call(ctx, toolArgs)
	if err != nil {
		if cfg.CallbackHandler != nil {
			cfg.CallbackHandler.OnToolError(ctx, tool, toolArgs, err)
		}
		if errors.Is(err, chatmodel.ErrFailedUnmarshalInput) {
			return "", errors.WithMessagef(err, "tool %s: schema mismatch", toolName)
		}
		return "", errors.WithMessagef(err, "failed to call tool %s", toolName)
	}

	if cfg.CallbackHandler != nil {
		cfg.CallbackHandler.OnToolEnd(ctx, tool, toolArgs, output)
	}
	return output, nil
}
