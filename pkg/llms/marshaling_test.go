package llms_test

import (
	"encoding/json"
	"testing"

	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Message_MarshalJSON_Text(t *testing.T) {
	msg := llms.MessageFromTextParts(llms.RoleHuman, "hello")

	bs, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Equal(t, `{"role":"human","text":"hello"}`, string(bs))

	var decoded llms.Message
	require.NoError(t, json.Unmarshal(bs, &decoded))
	assert.Equal(t, llms.RoleHuman, decoded.Role)
	assert.Equal(t, "hello", decoded.GetContent())
}

func Test_Message_MarshalJSON_ToolCall(t *testing.T) {
	msg := llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
		ID:   "call_1",
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      "weather",
			Arguments: `{"location": "Paris"}`,
		},
	})

	bs, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded llms.Message
	require.NoError(t, json.Unmarshal(bs, &decoded))
	assert.Equal(t, llms.RoleAI, decoded.Role)
	require.Len(t, decoded.Parts, 1)

	tc, ok := decoded.Parts[0].(llms.ToolCall)
	require.True(t, ok)
	assert.Equal(t, "call_1", tc.ID)
	assert.Equal(t, "weather", tc.FunctionCall.Name)
	assert.Equal(t, `{"location": "Paris"}`, tc.FunctionCall.Arguments)
}

func Test_Message_MarshalJSON_ToolResponse(t *testing.T) {
	msg := llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
		ToolCallID: "call_1",
		Name:       "weather",
		Content:    "The temperature in Paris is 20.0°C.",
	})

	bs, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded llms.Message
	require.NoError(t, json.Unmarshal(bs, &decoded))
	require.Len(t, decoded.Parts, 1)

	tr, ok := decoded.Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_1", tr.ToolCallID)
	assert.Equal(t, "The temperature in Paris is 20.0°C.", tr.Content)
}

func Test_Message_UnmarshalJSON_UnknownPart(t *testing.T) {
	var decoded llms.Message
	err := json.Unmarshal([]byte(`{"role":"ai","parts":[{"type":"image"}]}`), &decoded)
	assert.Error(t, err)
}
