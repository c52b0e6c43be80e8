package websearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llmutils"
	"github.com/saahil/toolcalling/tools"
	"github.com/saahil/toolcalling/tools/websearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req tavilyModels.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)
		assert.Equal(t, "capital of France", req.Query)

		resp := websearch.SearchResult{
			Results: []tavilyModels.SearchResult{
				{Title: "Paris", URL: "https://example.com/paris", Content: "Paris is the capital of France.", Score: 0.9},
				{Title: "France", URL: "https://example.com/france", Content: "France is a country in Europe.", Score: 0.8},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	tool, err := websearch.New("testkey")
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, websearch.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "web search")
	assert.NotNil(t, tool.Parameters())

	ctx := context.Background()

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))

	out, err := tool.Call(ctx, llmutils.ToJSON(&websearch.SearchRequest{Query: "capital of France"}))
	require.NoError(t, err)
	exp := "- Paris: Paris is the capital of France.\n" +
		"- France: France is a country in Europe."
	assert.Equal(t, exp, out)
}

func Test_Tool_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(websearch.SearchResult{})
	}))
	defer server.Close()

	tool, err := websearch.New("testkey")
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	// an empty result set is an answer, not a failure
	out, err := tool.Call(context.Background(), `{"query": "no such thing"}`)
	require.NoError(t, err)
	assert.Equal(t, "No results found for 'no such thing'.", out)
}

func Test_Tool_TruncatesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := websearch.SearchResult{
			Results: []tavilyModels.SearchResult{
				{Title: "one", Content: "1"},
				{Title: "two", Content: "2"},
				{Title: "three", Content: "3"},
				{Title: "four", Content: "4"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	tool, err := websearch.New("testkey")
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	out, err := tool.Run(context.Background(), &websearch.SearchRequest{Query: "q"})
	require.NoError(t, err)
	assert.Len(t, out.Results, 3)
}

func Test_Tool_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tool, err := websearch.New("testkey")
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	_, err = tool.Run(context.Background(), &websearch.SearchRequest{Query: "q"})
	assert.True(t, errors.Is(err, tools.ErrExternalService))
}
