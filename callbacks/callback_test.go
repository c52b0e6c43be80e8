package callbacks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/saahil/toolcalling/assistants"
	"github.com/saahil/toolcalling/callbacks"
	"github.com/saahil/toolcalling/mocks/mockllms"
	"github.com/saahil/toolcalling/mocks/mocktools"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type namedAssistant struct{}

func (namedAssistant) Name() string        { return "Multi-Tool Assistant" }
func (namedAssistant) Description() string { return "test assistant" }
func (namedAssistant) Call(ctx context.Context, input string) (*assistants.Result, error) {
	return &assistants.Result{Content: input}, nil
}

func Test_Printer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tool := mocktools.NewMockITool(ctrl)
	tool.EXPECT().Name().Return("weather").AnyTimes()

	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().GetName().Return("gpt-4o-mini").AnyTimes()

	var buf bytes.Buffer
	printer := callbacks.NewPrinter(&buf)

	ctx := context.Background()
	assistant := namedAssistant{}

	printer.OnAssistantStart(ctx, assistant, "hello")
	printer.OnAssistantLLMCallStart(ctx, assistant, model, []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	})
	printer.OnAssistantLLMCallEnd(ctx, assistant, model, &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "hi"}},
	})
	printer.OnToolStart(ctx, tool, `{"location": "Paris"}`)
	printer.OnToolEnd(ctx, tool, `{"location": "Paris"}`, "sunny")
	printer.OnAssistantEnd(ctx, assistant, "hello", &assistants.Result{Content: "sunny"})

	out := buf.String()
	assert.Contains(t, out, "Assistant Start: Multi-Tool Assistant")
	assert.Contains(t, out, "LLM Call Start: gpt-4o-mini, messages: 1")
	assert.Contains(t, out, "Tool Start: weather")
	assert.Contains(t, out, "Output: sunny")
	assert.Contains(t, out, "Assistant End: Multi-Tool Assistant")
}

func Test_Fanout(t *testing.T) {
	var first, second bytes.Buffer
	fanout := callbacks.NewFanout(callbacks.NewPrinter(&first))
	fanout.Add(callbacks.NewPrinter(&second))

	fanout.OnAssistantStart(context.Background(), namedAssistant{}, "hello")

	require.NotEmpty(t, first.String())
	assert.Equal(t, first.String(), second.String())
}

func Test_Noop(t *testing.T) {
	var cb assistants.Callback = callbacks.NewNoop()
	var tcb tools.Callback = callbacks.NewNoop()

	// nothing to observe, just exercise the no-op paths
	cb.OnAssistantStart(context.Background(), namedAssistant{}, "hello")
	tcb.OnToolStart(context.Background(), nil, "")
}
