package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"reflect"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llmutils"
	"github.com/saahil/toolcalling/pkg/schema"
	"github.com/saahil/toolcalling/tools"
)

const ToolName = "web_search"

// maxResults caps how many results are included in the answer.
const maxResults = 3

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" yaml:"query" jsonschema:"title=query,description=The search query for the web."`
}

// SearchResult represents the structure for a search response
type SearchResult struct {
	Query   string                      `json:"query"`
	Results []tavilyModels.SearchResult `json:"results"`
}

// Tool is a return-direct web search tool.
type Tool struct {
	name        string
	description string
	funcParams  any

	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[SearchRequest, SearchResult] = (*Tool)(nil)

// New returns a search tool. The API key defaults to the
// TAVILY_API_KEY environment variable.
func New(apiKey string) (*Tool, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("websearch: API key is not set")
	}

	sc, err := schema.New(reflect.TypeOf(SearchRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Perform a web search and return the top results.",
		apiKey:      apiKey,
		funcParams:  sc.Parameters,
	}, nil
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

func (t *Tool) Run(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, "empty query")
	}

	client := tavilygo.NewClient(t.apiKey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL
	}
	if t.httpClient != nil {
		client.HTTPClient = t.httpClient
	}

	searchReq := tavilyModels.SearchRequest{
		Query:       req.Query,
		SearchDepth: "basic",
	}

	searchResp, err := tavilygo.Search(client, searchReq)
	if err != nil {
		return nil, errors.WithMessagef(tools.ErrExternalService, "search failed: %s", err.Error())
	}

	results := searchResp.Results
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return &SearchResult{
		Query:   req.Query,
		Results: results,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req SearchRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, err.Error())
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return chatmodel.Stringify(out), nil
}

// String formats the results as the turn's final answer. An empty result
// set is an expected outcome, not an error.
func (r *SearchResult) String() string {
	if len(r.Results) == 0 {
		return fmt.Sprintf("No results found for '%s'.", r.Query)
	}

	var buf bytes.Buffer
	for i, result := range r.Results {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "- %s: %s", result.Title, result.Content)
	}
	return buf.String()
}
