package schema_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/saahil/toolcalling/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherInput struct {
	Location     string `json:"location" jsonschema:"title=location,description=The location to get the weather for."`
	SpecificInfo string `json:"specific_info,omitempty" jsonschema:"title=specific_info,description=Specific information to filter."`
}

type nestedInput struct {
	Filters filterSpec `json:"filters"`
	Query   string     `json:"query"`
}

type filterSpec struct {
	Language string `json:"language"`
}

func Test_New(t *testing.T) {
	sc, err := schema.New(reflect.TypeOf(weatherInput{}))
	require.NoError(t, err)
	require.NotNil(t, sc.Parameters)

	bs, err := json.Marshal(sc.Parameters)
	require.NoError(t, err)

	js := string(bs)
	assert.Contains(t, js, `"location"`)
	assert.Contains(t, js, `"specific_info"`)
	assert.Contains(t, js, `"The location to get the weather for."`)
	// only fields without omitempty are required
	assert.Contains(t, js, `"required":["location"]`)
	assert.NotContains(t, js, "$ref")
}

func Test_New_Cached(t *testing.T) {
	first, err := schema.New(reflect.TypeOf(weatherInput{}))
	require.NoError(t, err)
	second, err := schema.New(reflect.TypeOf(weatherInput{}))
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func Test_New_NestedRefsResolved(t *testing.T) {
	sc, err := schema.New(reflect.TypeOf(nestedInput{}))
	require.NoError(t, err)

	bs, err := json.Marshal(sc.Parameters)
	require.NoError(t, err)

	js := string(bs)
	assert.Contains(t, js, `"language"`)
	assert.NotContains(t, js, "$ref")
}

func Test_String(t *testing.T) {
	sc, err := schema.New(reflect.TypeOf(weatherInput{}))
	require.NoError(t, err)
	assert.Contains(t, sc.String(), `"location"`)
}
