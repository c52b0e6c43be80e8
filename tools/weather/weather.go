package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llmutils"
	"github.com/saahil/toolcalling/pkg/schema"
	"github.com/saahil/toolcalling/tools"
)

const ToolName = "weather"

// DefaultBaseURL is the OpenWeatherMap current-weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Request represents the tool input.
type Request struct {
	Location     string `json:"location" yaml:"location" jsonschema:"title=location,description=The location to get the weather for."`
	SpecificInfo string `json:"specific_info,omitempty" yaml:"specific_info,omitempty" jsonschema:"title=specific_info,description=Specific information to filter such as humidity or temperature."`
}

// Report holds the current conditions for a location.
type Report struct {
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Sunrise     int64   `json:"sunrise"`
	Sunset      int64   `json:"sunset"`
}

// currentWeather mirrors the OpenWeatherMap response fields this tool reads.
type currentWeather struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// Tool fetches current conditions from a weather API, optionally
// filtered down to one field.
type Tool struct {
	name        string
	description string
	funcParams  any

	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[Request, Report] = (*Tool)(nil)

func New(apiKey string) (*Tool, error) {
	if apiKey == "" {
		return nil, errors.New("weather: API key is not set")
	}
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name: ToolName,
		description: "Get the current weather for a specific location, with an option to filter " +
			"specific information like humidity, temperature, wind speed, etc.",
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		funcParams: sc.Parameters,
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

func (t *Tool) Run(ctx context.Context, req *Request) (*Report, error) {
	if req.Location == "" {
		return nil, errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, "empty location")
	}

	q := url.Values{}
	q.Set("q", req.Location)
	q.Set("appid", t.apiKey)
	q.Set("units", "metric")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.WithMessagef(tools.ErrExternalService, "could not retrieve weather data for %s: %s", req.Location, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithMessagef(tools.ErrExternalService, "could not retrieve weather data for %s", req.Location)
	}

	var data currentWeather
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.WithMessagef(tools.ErrExternalService, "failed to decode response: %s", err.Error())
	}

	report := &Report{
		Location:    req.Location,
		Temperature: data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
		Sunrise:     data.Sys.Sunrise,
		Sunset:      data.Sys.Sunset,
	}
	if len(data.Weather) > 0 {
		report.Description = capitalize(data.Weather[0].Description)
	}
	return report, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, err.Error())
	}
	report, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}

	if req.SpecificInfo != "" {
		return report.Field(req.SpecificInfo), nil
	}
	return chatmodel.Stringify(report), nil
}

// fieldOrder is the report order of the seven fields.
var fieldOrder = []string{"description", "temperature", "feels like", "humidity", "wind speed", "sunrise", "sunset"}

func (r *Report) fieldValue(name string) (string, bool) {
	switch name {
	case "description":
		return r.Description, true
	case "temperature":
		return strconv.FormatFloat(r.Temperature, 'f', 1, 64) + "°C", true
	case "feels like":
		return strconv.FormatFloat(r.FeelsLike, 'f', 1, 64) + "°C", true
	case "humidity":
		return strconv.Itoa(r.Humidity) + "%", true
	case "wind speed":
		return strconv.FormatFloat(r.WindSpeed, 'f', -1, 64) + " m/s", true
	case "sunrise":
		return FormatTimestamp(r.Sunrise), true
	case "sunset":
		return FormatTimestamp(r.Sunset), true
	}
	return "", false
}

// Field formats a single field as a sentence. An unrecognized field name
// produces an explicit "could not find" message, not a failure.
func (r *Report) Field(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	value, ok := r.fieldValue(key)
	if !ok {
		return fmt.Sprintf("Sorry, I could not find the %s information for %s.", key, r.Location)
	}
	return fmt.Sprintf("The %s in %s is %s.", key, r.Location, value)
}

// String formats the full report, one line per field.
func (r *Report) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Weather in %s:", r.Location)
	for _, name := range fieldOrder {
		value, _ := r.fieldValue(name)
		fmt.Fprintf(&buf, "\n- %s: %s", titleCase(name), value)
	}
	return buf.String()
}

// FormatTimestamp converts a Unix timestamp to a UTC date-time string.
func FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05") + " UTC"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
