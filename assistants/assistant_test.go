package assistants_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/assistants"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/mocks/mockllms"
	"github.com/saahil/toolcalling/mocks/mocktools"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/store"
	"github.com/saahil/toolcalling/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const systemPrompt = "You are a helpful assistant."

func newWeatherMock(ctrl *gomock.Controller) *mocktools.MockITool {
	tool := mocktools.NewMockITool(ctrl)
	tool.EXPECT().Name().Return("weather").AnyTimes()
	tool.EXPECT().Description().Return("Get the current weather.").AnyTimes()
	tool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	return tool
}

func toolCallResponse(name, args string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				StopReason: "tool_calls",
				ToolCalls: []llms.ToolCall{
					{
						ID:   "call_1",
						Type: "function",
						FunctionCall: &llms.FunctionCall{
							Name:      name,
							Arguments: args,
						},
					},
				},
			},
		},
	}
}

func Test_Assistant_NoToolCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{Content: "Hello! How can I help?", StopReason: "stop"},
			},
		}, nil)

	registry, err := tools.NewRegistry(newWeatherMock(ctrl))
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockLLM, systemPrompt, registry)
	assert.Equal(t, "Multi-Tool Assistant", assistant.Name())
	assert.Contains(t, assistant.GetSystemPrompt(), "# AVAILABLE TOOLS")

	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	res, err := assistant.Call(ctx, "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", res.Content)
	assert.Empty(t, res.ToolTrace)
}

func Test_Assistant_ToolCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tool := newWeatherMock(ctrl)
	tool.EXPECT().Call(gomock.Any(), `{"location": "Paris"}`).
		Return("The temperature in Paris is 20.0°C.", nil)

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(toolCallResponse("weather", `{"location": "Paris"}`), nil)

	registry, err := tools.NewRegistry(tool)
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockLLM, systemPrompt, registry)

	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	res, err := assistant.Call(ctx, "What's the weather in Paris?")
	require.NoError(t, err)

	// return-direct: the tool output is the final answer
	assert.Equal(t, "The temperature in Paris is 20.0°C.", res.Content)
	require.Len(t, res.ToolTrace, 1)
	assert.Equal(t, "weather", res.ToolTrace[0].ToolName)
	assert.True(t, res.ToolTrace[0].Succeeded)
}

func Test_Assistant_ToolNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(toolCallResponse("no_such_tool", `{}`), nil)

	registry, err := tools.NewRegistry(newWeatherMock(ctrl))
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockLLM, systemPrompt, registry)

	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	res, err := assistant.Call(ctx, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tool "no_such_tool" not found`)
	assert.Contains(t, err.Error(), "available tools: weather")

	// the result still carries the failed trace entry
	require.NotNil(t, res)
	require.Len(t, res.ToolTrace, 1)
	assert.Equal(t, "no_such_tool", res.ToolTrace[0].ToolName)
	assert.False(t, res.ToolTrace[0].Succeeded)
	assert.Contains(t, res.ToolTrace[0].Error, "not found")
}

func Test_Assistant_SchemaMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tool := newWeatherMock(ctrl)
	tool.EXPECT().Call(gomock.Any(), "not json").
		Return("", errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, "invalid character"))

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(toolCallResponse("weather", "not json"), nil)

	registry, err := tools.NewRegistry(tool)
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockLLM, systemPrompt, registry)

	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	res, err := assistant.Call(ctx, "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))
	assert.Contains(t, err.Error(), "tool weather: schema mismatch")

	require.NotNil(t, res)
	require.Len(t, res.ToolTrace, 1)
	assert.Equal(t, "weather", res.ToolTrace[0].ToolName)
	assert.False(t, res.ToolTrace[0].Succeeded)
}

func Test_Assistant_FailedToolTrace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tool := newWeatherMock(ctrl)
	tool.EXPECT().Call(gomock.Any(), `{"location": "Nowhere"}`).
		Return("", errors.WithMessage(tools.ErrExternalService, "could not retrieve weather data for Nowhere"))

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(toolCallResponse("weather", `{"location": "Nowhere"}`), nil)

	registry, err := tools.NewRegistry(tool)
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockLLM, systemPrompt, registry)

	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	res, err := assistant.Call(ctx, "What's the weather in Nowhere?")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrExternalService))

	require.NotNil(t, res)
	assert.Empty(t, res.Content)
	require.Len(t, res.ToolTrace, 1)
	assert.Equal(t, "weather", res.ToolTrace[0].ToolName)
	assert.False(t, res.ToolTrace[0].Succeeded)
	assert.Contains(t, res.ToolTrace[0].Error, "could not retrieve weather data")
}

func Test_Assistant_RequiresChatContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)

	registry, err := tools.NewRegistry()
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockLLM, systemPrompt, registry)

	_, err = assistant.Call(context.Background(), "anything")
	assert.True(t, errors.Is(err, chatmodel.ErrInvalidChatContext))
}

func Test_Assistant_FunctionCallingRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	// AZURE_AD is a text-only passthrough, tools cannot be used with it
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderAzureAD).AnyTimes()

	registry, err := tools.NewRegistry(newWeatherMock(ctrl))
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockLLM, systemPrompt, registry)

	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	_, err = assistant.Call(ctx, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support function calling")
}

func Test_Assistant_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := store.NewMemoryStore(store.DefaultWindow)
	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	err := st.Add(ctx,
		llms.MessageFromTextParts(llms.RoleHuman, "What's the weather in Paris?"),
		llms.MessageFromTextParts(llms.RoleAI, "The temperature in Paris is 20.0°C."),
	)
	require.NoError(t, err)

	var seen []llms.Message
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			seen = messages
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "About 20 degrees.", StopReason: "stop"}},
			}, nil
		})

	registry, err := tools.NewRegistry()
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockLLM, systemPrompt, registry,
		assistants.WithMessageStore(st))

	_, err = assistant.Call(ctx, "And feels like?")
	require.NoError(t, err)

	// system prompt, two history messages, then the new question
	require.Len(t, seen, 4)
	assert.Equal(t, llms.RoleSystem, seen[0].Role)
	assert.Equal(t, "What's the weather in Paris?", seen[1].GetContent())
	assert.Equal(t, "The temperature in Paris is 20.0°C.", seen[2].GetContent())
	assert.Equal(t, "And feels like?", seen[3].GetContent())
}
