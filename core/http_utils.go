package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// validateResponse returns nil for 2xx responses and a classified *ApiError otherwise.
// The body of a failed response is consumed and closed.
func validateResponse(response *http.Response) error {
	requestURL := "<unknown URL>"
	method := "<unknown method>"
	if response == nil {
		return &NetworkError{Method: method, URL: requestURL, Err: fmt.Errorf("no response received")}
	}
	if response.StatusCode >= 200 && response.StatusCode <= 299 {
		return nil
	}
	if response.Request != nil {
		if response.Request.URL != nil {
			requestURL = response.Request.URL.String()
		}
		method = response.Request.Method
	}
	defer response.Body.Close()
	raw, _ := io.ReadAll(response.Body)

	apiErr := &ApiError{
		Method:     method,
		URL:        requestURL,
		StatusCode: response.StatusCode,
		Body:       prettyBody(raw),
		RequestID:  response.Header.Get(HeaderRequestID),
		RetryAfter: parseRetryAfter(response.Header.Get(HeaderRetryAfter), time.Now()),
	}
	parseErrorBody(apiErr, raw)
	apiErr.Classification = Classify(apiErr.StatusCode, apiErr.Code)
	return apiErr
}

// errorBody covers both error formats returned by the API:
// the legacy {requestId, IssueList} shape and the current {status, error, message, code, details} shape.
type errorBody struct {
	RequestID string `json:"requestId"`
	IssueList []struct {
		I18nKey string `json:"i18nKey"`
		Source  string `json:"source"`
		Type    string `json:"type"`
	} `json:"IssueList"`

	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Path      string `json:"path"`
	TraceID   string `json:"traceId"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	Details   []struct {
		Violation string `json:"violation"`
		Field     string `json:"field"`
		Message   string `json:"message"`
	} `json:"details"`
}

func parseErrorBody(apiErr *ApiError, raw []byte) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if len(trimmed) > 0 {
			apiErr.Message = string(trimmed)
		}
		return
	}
	var payload Record
	if err := json.Unmarshal(trimmed, &payload); err == nil {
		apiErr.payload = payload
	}
	var body errorBody
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return
	}
	if apiErr.RequestID == "" {
		apiErr.RequestID = firstNonEmpty(body.RequestID, body.TraceID)
	}
	apiErr.Code = body.Code
	apiErr.Message = firstNonEmpty(body.Message, body.Error)
	for _, issue := range body.IssueList {
		apiErr.Details = append(apiErr.Details, IssueDetail{
			Field:   issue.Source,
			Type:    issue.Type,
			Message: issue.I18nKey,
		})
	}
	for _, d := range body.Details {
		apiErr.Details = append(apiErr.Details, IssueDetail{
			Field:   d.Field,
			Type:    d.Violation,
			Message: d.Message,
		})
	}
	// Legacy bodies carry no code; the first issue type is the closest equivalent.
	if apiErr.Code == "" && len(body.IssueList) > 0 {
		apiErr.Code = strings.ToUpper(body.IssueList[0].Type)
	}
}

// parseRetryAfter accepts both delay-seconds and HTTP-date forms.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// pathToUrl returns a full URI string based on the provided input.
// If the input string is already a full URI it is returned unchanged.
// Otherwise the input path is appended to the configured base URL and API version.
func pathToUrl(s RESTSession, input string) (string, error) {
	parsedURL, parseErr := urlpkg.Parse(input)
	if parseErr == nil && parsedURL.Scheme != "" {
		return input, nil
	}
	if !strings.HasPrefix(input, "/") {
		input = "/" + input
	}
	pathAndQuery, err := urlpkg.ParseRequestURI(input)
	if err != nil {
		return "", fmt.Errorf("invalid relative URL: %w", err)
	}
	return buildUrl(s, pathAndQuery.Path, pathAndQuery.RawQuery, "")
}

// buildUrl joins the configured base URL, API version and resource path.
func buildUrl(s RESTSession, path, query, apiVer string) (string, error) {
	config := s.GetConfig()
	if apiVer == "" {
		apiVer = config.ApiVersion
	}
	base, err := urlpkg.Parse(config.ResourceUrl)
	if err != nil {
		return "", fmt.Errorf("invalid resource url %q: %w", config.ResourceUrl, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("resource url %q must be absolute", config.ResourceUrl)
	}
	full := base.JoinPath(apiVer, strings.Trim(path, "/"))
	full.RawQuery = query
	return full.String(), nil
}

// convertMapToQuery converts Params to a URL query string.
// Slices and arrays are joined with commas, nil values are skipped.
func convertMapToQuery(params Params) string {
	values := urlpkg.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		values.Set(k, queryValue(v))
	}
	return values.Encode()
}

func queryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = queryValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	if rv.Kind() == reflect.Float64 || rv.Kind() == reflect.Float32 {
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// prettyBody returns an indented rendering of JSON bodies and the raw text otherwise.
func prettyBody(body []byte) string {
	var b bytes.Buffer
	if err := json.Indent(&b, body, "", "  "); err == nil {
		return b.String()
	}
	return string(body)
}
