package chat_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saahil/toolcalling/assistants"
	"github.com/saahil/toolcalling/chat"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/mocks/mockllms"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/store"
	"github.com/saahil/toolcalling/tools"
	"github.com/saahil/toolcalling/tools/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const parisWeather = `{
	"weather": [{"description": "clear sky"}],
	"main": {"temp": 20.0, "feels_like": 19.2, "humidity": 65},
	"wind": {"speed": 3.5},
	"sys": {"sunrise": 1727763600, "sunset": 1727806800}
}`

func newWeatherTool(t *testing.T) *weather.Tool {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(parisWeather))
	}))
	t.Cleanup(server.Close)

	tool, err := weather.New("testkey")
	require.NoError(t, err)
	return tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())
}

func Test_Service_FilteredTurn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry, err := tools.NewRegistry(newWeatherTool(t))
	require.NoError(t, err)

	agentLLM := mockllms.NewMockModel(ctrl)
	agentLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	agentLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{
					StopReason: "tool_calls",
					ToolCalls: []llms.ToolCall{
						{
							ID:   "call_1",
							Type: "function",
							FunctionCall: &llms.FunctionCall{
								Name:      "weather",
								Arguments: `{"location": "Paris", "specific_info": "temperature"}`,
							},
						},
					},
				},
			},
		}, nil)

	var filterSaw string
	filterLLM := mockllms.NewMockModel(ctrl)
	filterLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			require.Len(t, messages, 1)
			filterSaw = messages[0].GetContent()
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{
					{Content: "La température à Paris est de 20,0°C.", StopReason: "stop"},
				},
			}, nil
		})

	st := store.NewMemoryStore(store.DefaultWindow)
	assistant := assistants.NewAssistant(agentLLM, "You are a helpful assistant.", registry,
		assistants.WithMessageStore(st))
	session := chat.NewSession("chat1")
	svc := chat.NewService(assistant, chat.NewFilter(filterLLM), st, session)

	turn, err := svc.Submit(context.Background(),
		"What's the weather in Paris, show only temperature", "translate to French")
	require.NoError(t, err)

	assert.Equal(t, "The temperature in Paris is 20.0°C.", turn.RawAnswer)
	assert.Equal(t, "La température à Paris est de 20,0°C.", turn.FilteredAnswer)
	assert.NotEqual(t, turn.RawAnswer, turn.FilteredAnswer)
	require.Len(t, turn.ToolTrace, 1)
	assert.Equal(t, "weather", turn.ToolTrace[0].ToolName)
	assert.True(t, turn.ToolTrace[0].Succeeded)

	// the filter model saw the raw answer and the instruction
	assert.Equal(t,
		"Given the response: 'The temperature in Paris is 20.0°C.', refine the content based on the following instruction: 'translate to French'.",
		filterSaw)

	// the turn is appended to the session
	assert.Equal(t, 1, session.Len())
	turns := session.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, turn.ID, turns[0].ID)
	assert.NotEmpty(t, turn.ID)
	assert.False(t, turn.CreatedAt.IsZero())

	// query and filtered answer are persisted as context for later turns
	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	msgs := st.Messages(ctx)
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.RoleHuman, msgs[0].Role)
	assert.Equal(t, "What's the weather in Paris, show only temperature", msgs[0].GetContent())
	assert.Equal(t, llms.RoleAI, msgs[1].Role)
	assert.Equal(t, "La température à Paris est de 20,0°C.", msgs[1].GetContent())
}

func Test_Service_NoFilterInstruction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	agentLLM := mockllms.NewMockModel(ctrl)
	agentLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	agentLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{Content: "Hello!", StopReason: "stop"},
			},
		}, nil)

	// the filter model must not be called when there is no instruction
	filterLLM := mockllms.NewMockModel(ctrl)

	registry, err := tools.NewRegistry()
	require.NoError(t, err)

	st := store.NewMemoryStore(store.DefaultWindow)
	assistant := assistants.NewAssistant(agentLLM, "You are a helpful assistant.", registry,
		assistants.WithMessageStore(st))
	svc := chat.NewService(assistant, chat.NewFilter(filterLLM), st, chat.NewSession("chat1"))

	turn, err := svc.Submit(context.Background(), "Hi", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", turn.RawAnswer)
	assert.Equal(t, turn.RawAnswer, turn.FilteredAnswer)
	assert.Empty(t, turn.ToolTrace)
}

func Test_Service_EmptyQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry, err := tools.NewRegistry()
	require.NoError(t, err)

	assistant := assistants.NewAssistant(mockllms.NewMockModel(ctrl), "prompt", registry)
	svc := chat.NewService(assistant, chat.NewFilter(mockllms.NewMockModel(ctrl)), nil, chat.NewSession("chat1"))

	_, err = svc.Submit(context.Background(), "", "")
	assert.Error(t, err)
}

func Test_Service_Reset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	agentLLM := mockllms.NewMockModel(ctrl)
	agentLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	agentLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{Content: "Hello!", StopReason: "stop"},
			},
		}, nil)

	registry, err := tools.NewRegistry()
	require.NoError(t, err)

	st := store.NewMemoryStore(store.DefaultWindow)
	assistant := assistants.NewAssistant(agentLLM, "prompt", registry,
		assistants.WithMessageStore(st))
	session := chat.NewSession("chat1")
	svc := chat.NewService(assistant, chat.NewFilter(mockllms.NewMockModel(ctrl)), st, session)

	_, err = svc.Submit(context.Background(), "Hi", "")
	require.NoError(t, err)
	assert.Equal(t, 1, session.Len())

	require.NoError(t, svc.Reset(context.Background()))
	assert.Equal(t, 0, session.Len())

	ctx := chatmodel.SetChatID(context.Background(), "chat1")
	assert.Empty(t, st.Messages(ctx))
}
