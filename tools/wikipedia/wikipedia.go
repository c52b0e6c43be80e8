package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llmutils"
	"github.com/saahil/toolcalling/pkg/schema"
	"github.com/saahil/toolcalling/tools"
)

const ToolName = "wikipedia_search"

// DefaultBaseURL is the REST endpoint of the English Wikipedia.
const DefaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

// summarySentences is how many sentences of the extract are returned.
const summarySentences = 2

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" yaml:"query" jsonschema:"title=query,description=The search query for Wikipedia."`
}

// Page is the looked-up article.
type Page struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// pageSummary mirrors the REST page/summary response.
type pageSummary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Tool looks up a page by title and returns a short summary.
type Tool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[SearchRequest, Page] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(SearchRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Look up a topic on Wikipedia and return a short summary.",
		baseURL:     DefaultBaseURL,
		httpClient:  http.DefaultClient,
		funcParams:  sc.Parameters,
	}, nil
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = strings.TrimSuffix(baseURL, "/")
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

func (t *Tool) Run(ctx context.Context, req *SearchRequest) (*Page, error) {
	if req.Query == "" {
		return nil, errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, "empty query")
	}

	title := strings.ReplaceAll(strings.TrimSpace(req.Query), " ", "_")
	u := fmt.Sprintf("%s/page/summary/%s", t.baseURL, url.PathEscape(title))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.WithMessagef(tools.ErrExternalService, "wikipedia lookup failed: %s", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.WithMessagef(tools.ErrNotFound, "no page for %q", req.Query)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithMessagef(tools.ErrExternalService, "wikipedia returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithMessagef(tools.ErrExternalService, "failed to read response: %s", err.Error())
	}

	var summary pageSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, errors.WithMessagef(tools.ErrExternalService, "failed to decode response: %s", err.Error())
	}
	if summary.Title == "" && summary.Extract == "" {
		return nil, errors.WithMessagef(tools.ErrNotFound, "no page for %q", req.Query)
	}

	return &Page{
		Title:   summary.Title,
		Summary: firstSentences(summary.Extract, summarySentences),
		URL:     summary.ContentURLs.Desktop.Page,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req SearchRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, err.Error())
	}
	page, err := t.Run(ctx, &req)
	if err != nil {
		// A missing or ambiguous page is an expected outcome and produces
		// a fixed user-facing message rather than a failure.
		if errors.Is(err, tools.ErrNotFound) {
			return fmt.Sprintf("No Wikipedia page found for the query '%s'", req.Query), nil
		}
		return "", err
	}
	return chatmodel.Stringify(page), nil
}

func (p *Page) String() string {
	return fmt.Sprintf("Wikipedia article: %s\nSummary: %s\nURL: %s", p.Title, p.Summary, p.URL)
}

// firstSentences returns up to n sentences of text, keeping the
// terminating periods.
func firstSentences(text string, n int) string {
	if text == "" || n <= 0 {
		return ""
	}
	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '.' {
			continue
		}
		// sentence boundary: period followed by space or end of text
		if i+1 == len(text) {
			return text
		}
		if text[i+1] == ' ' {
			count++
			if count == n {
				return text[:i+1]
			}
		}
	}
	return text
}
