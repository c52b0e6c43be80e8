package llms

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// JSON models for persisting messages in a store.

// messageJSON represents the JSON structure for a Message with a single text part.
type messageJSON struct {
	Role Role   `json:"role"`
	Text string `json:"text,omitempty"`
}

// contentPartJSON represents the JSON structure for content parts
type contentPartJSON struct {
	Type         string            `json:"type"`
	Text         string            `json:"text,omitempty"`
	ToolCall     *toolCallJSON     `json:"tool_call,omitempty"`
	ToolResponse *toolResponseJSON `json:"tool_response,omitempty"`
}

// toolCallJSON represents the JSON structure for tool call content
type toolCallJSON struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	FunctionCall *FunctionCall `json:"function"`
}

// toolResponseJSON represents the JSON structure for tool response content
type toolResponseJSON struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
}

type messageWithPartsJSON struct {
	Role  Role              `json:"role"`
	Parts []contentPartJSON `json:"parts"`
}

// MarshalJSON implements json.Marshaler for Message
func (m Message) MarshalJSON() ([]byte, error) {
	// Special case: single text part can be simplified
	if len(m.Parts) == 1 {
		if tp, ok := m.Parts[0].(TextContent); ok {
			return json.Marshal(messageJSON{
				Role: m.Role,
				Text: tp.Text,
			})
		}
	}

	out := messageWithPartsJSON{
		Role:  m.Role,
		Parts: make([]contentPartJSON, 0, len(m.Parts)),
	}
	for _, part := range m.Parts {
		switch typ := part.(type) {
		case TextContent:
			out.Parts = append(out.Parts, contentPartJSON{Type: "text", Text: typ.Text})
		case ToolCall:
			out.Parts = append(out.Parts, contentPartJSON{
				Type: "tool_call",
				ToolCall: &toolCallJSON{
					ID:           typ.ID,
					Type:         typ.Type,
					FunctionCall: typ.FunctionCall,
				},
			})
		case ToolCallResponse:
			out.Parts = append(out.Parts, contentPartJSON{
				Type: "tool_response",
				ToolResponse: &toolResponseJSON{
					ToolCallID: typ.ToolCallID,
					Name:       typ.Name,
					Content:    typ.Content,
				},
			})
		default:
			return nil, errors.Newf("unsupported content part type %T", part)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for Message
func (m *Message) UnmarshalJSON(data []byte) error {
	var msgJSON messageJSON
	if err := json.Unmarshal(data, &msgJSON); err != nil {
		return errors.WithStack(err)
	}

	m.Role = msgJSON.Role

	// Handle special case: single text field
	if msgJSON.Text != "" {
		m.Parts = []ContentPart{TextContent{Text: msgJSON.Text}}
		return nil
	}

	var withParts messageWithPartsJSON
	if err := json.Unmarshal(data, &withParts); err != nil {
		return errors.WithStack(err)
	}

	m.Parts = nil
	for _, part := range withParts.Parts {
		switch part.Type {
		case "text":
			m.Parts = append(m.Parts, TextContent{Text: part.Text})
		case "tool_call":
			if part.ToolCall == nil {
				return errors.New("tool_call part is missing the tool_call field")
			}
			m.Parts = append(m.Parts, ToolCall{
				ID:           part.ToolCall.ID,
				Type:         part.ToolCall.Type,
				FunctionCall: part.ToolCall.FunctionCall,
			})
		case "tool_response":
			if part.ToolResponse == nil {
				return errors.New("tool_response part is missing the tool_response field")
			}
			m.Parts = append(m.Parts, ToolCallResponse{
				ToolCallID: part.ToolResponse.ToolCallID,
				Name:       part.ToolResponse.Name,
				Content:    part.ToolResponse.Content,
			})
		default:
			return errors.Newf("unsupported content part type %q", part.Type)
		}
	}
	return nil
}
