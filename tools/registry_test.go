package tools_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/mocks/mocktools"
	"github.com/saahil/toolcalling/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newNamedTool(ctrl *gomock.Controller, name, description string) *mocktools.MockITool {
	tool := mocktools.NewMockITool(ctrl)
	tool.EXPECT().Name().Return(name).AnyTimes()
	tool.EXPECT().Description().Return(description).AnyTimes()
	tool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	return tool
}

func Test_Registry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := newNamedTool(ctrl, "web_search", "Perform a web search.")
	weather := newNamedTool(ctrl, "weather", "Get the current weather.")

	registry, err := tools.NewRegistry(search, weather)
	require.NoError(t, err)

	assert.Equal(t, []string{"web_search", "weather"}, registry.Names())
	assert.Len(t, registry.Tools(), 2)

	tool, ok := registry.Lookup("weather")
	require.True(t, ok)
	assert.Equal(t, "weather", tool.Name())

	// lookups are case-insensitive
	tool, ok = registry.Lookup("Web_Search")
	require.True(t, ok)
	assert.Equal(t, "web_search", tool.Name())

	_, ok = registry.Lookup("unknown")
	assert.False(t, ok)

	defs := registry.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "web_search", defs[0].Function.Name)
	assert.Equal(t, "Perform a web search.", defs[0].Function.Description)

	descr := registry.Descriptions()
	assert.Contains(t, descr, `"Name": "web_search"`)
	assert.Contains(t, descr, `"Name": "weather"`)
}

func Test_Registry_DuplicateName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := newNamedTool(ctrl, "weather", "first")
	second := newNamedTool(ctrl, "Weather", "second")

	// duplicate names collide case-insensitively and never overwrite
	_, err := tools.NewRegistry(first, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrDuplicateToolName))

	registry, err := tools.NewRegistry(first)
	require.NoError(t, err)
	err = registry.Register(second)
	assert.True(t, errors.Is(err, tools.ErrDuplicateToolName))

	tool, ok := registry.Lookup("weather")
	require.True(t, ok)
	assert.Equal(t, "first", tool.Description())
}
