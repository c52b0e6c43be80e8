package openaiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// ChatRequest is a request to complete a chat completion.
type ChatRequest struct {
	Model       string         `json:"model"`
	Messages    []*ChatMessage `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_completion_tokens,omitempty"`
	StopWords   []string       `json:"stop,omitempty"`
	Seed        int            `json:"seed,omitempty"`

	// Tools is a list of tools the model may call.
	Tools []Tool `json:"tools,omitempty"`
	// ToolChoice controls which (if any) tool is called by the model.
	ToolChoice any `json:"tool_choice,omitempty"`

	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat is the format of the response.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ResponseFormatJSON requests responses as JSON objects.
var ResponseFormatJSON = &ResponseFormat{Type: "json_object"}

// ChatMessage is a message in a chat request.
type ChatMessage struct {
	// Role is the role of the message author: system, user, assistant, or tool.
	Role string `json:"role"`
	// Content is the content of the message.
	Content string `json:"content"`

	// ToolCalls is a list of tools that the assistant requested to call.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID is the ID of the tool call this message is responding to,
	// required for messages with the tool role.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Name of the tool, for tool role messages.
	Name string `json:"name,omitempty"`
}

// Tool is a tool the model may use.
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function.
type FunctionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
	Strict      bool   `json:"strict,omitempty"`
}

// ToolCall is a tool call the model requested.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction names the function to call with its arguments.
type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatResponseMessage is the message returned in a chat completion choice.
type ChatResponseMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ChatCompletionChoice is a choice in a chat completion response.
type ChatCompletionChoice struct {
	Index        int                 `json:"index"`
	Message      ChatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

// ChatUsage reports token usage of a chat completion.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse is a response to a chat completion request.
type ChatCompletionResponse struct {
	ID      string                  `json:"id"`
	Object  string                  `json:"object"`
	Created int64                   `json:"created"`
	Model   string                  `json:"model"`
	Choices []*ChatCompletionChoice `json:"choices"`
	Usage   ChatUsage               `json:"usage"`
}

// CreateChat creates a chat completion.
func (c *Client) CreateChat(ctx context.Context, r *ChatRequest) (*ChatCompletionResponse, error) {
	if r.Model == "" {
		r.Model = c.Model
		if r.Model == "" {
			r.Model = DefaultChatModel
		}
	}
	resp, err := c.createChat(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.WithStack(ErrEmptyResponse)
	}
	return resp, nil
}

func (c *Client) createChat(ctx context.Context, payload *ChatRequest) (*ChatCompletionResponse, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to marshal chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.buildURL("/chat/completions", payload.Model),
		bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to send chat request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg := fmt.Sprintf("API returned unexpected status code: %d", resp.StatusCode)

		var errResp errorMessage
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil &&
			errResp.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, errResp.Error.Message)
		}
		return nil, errors.New(msg)
	}

	var response ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.WithMessage(err, "failed to decode chat response")
	}
	return &response, nil
}
