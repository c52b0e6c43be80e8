package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llmutils"
	"github.com/saahil/toolcalling/pkg/schema"
	"github.com/saahil/toolcalling/tools"
)

const ToolName = "translate_text"

// Request represents the tool input.
type Request struct {
	Text     string `json:"text" yaml:"text" jsonschema:"title=text,description=The text to translate."`
	DestLang string `json:"dest_lang" yaml:"dest_lang" jsonschema:"title=dest_lang,description=The target language code such as 'en' or 'fr'."`
}

// Translation is the backend's answer, returned verbatim.
type Translation struct {
	Text string `json:"text"`
}

// GetContent returns the translated text for the chat transcript.
func (t *Translation) GetContent() string {
	return t.Text
}

// translateRequest is the wire request of a LibreTranslate-compatible endpoint.
type translateRequest struct {
	Query  string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// Tool translates text via a LibreTranslate-compatible HTTP endpoint.
type Tool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ tools.Tool[Request, Translation] = (*Tool)(nil)

func New(baseURL string) (*Tool, error) {
	if baseURL == "" {
		return nil, errors.New("translate: base URL is not set")
	}
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Translate text to a specified language.",
		baseURL:     baseURL,
		httpClient:  http.DefaultClient,
		funcParams:  sc.Parameters,
	}, nil
}

func (t *Tool) WithAPIKey(apiKey string) *Tool {
	t.apiKey = apiKey
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

func (t *Tool) Run(ctx context.Context, req *Request) (*Translation, error) {
	if req.Text == "" || req.DestLang == "" {
		return nil, errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, "text and dest_lang are required")
	}

	payload, err := json.Marshal(translateRequest{
		Query:  req.Text,
		Source: "auto",
		Target: req.DestLang,
		APIKey: t.apiKey,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.WithMessagef(tools.ErrExternalService, "translation failed: %s", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithMessagef(tools.ErrExternalService, "translation backend returned status %d", resp.StatusCode)
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.WithMessagef(tools.ErrExternalService, "failed to decode response: %s", err.Error())
	}
	if out.Error != "" {
		return nil, errors.WithMessage(tools.ErrExternalService, out.Error)
	}

	return &Translation{Text: out.TranslatedText}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, err.Error())
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return chatmodel.Stringify(out), nil
}
