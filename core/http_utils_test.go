package core

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(status int, body string, headers map[string]string) *http.Response {
	u, _ := url.Parse("https://api.lexware.io/v1/invoices")
	resp := &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{Method: http.MethodPost, URL: u},
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		headers      map[string]string
		wantErr      bool
		wantCode     string
		wantCategory ErrorCategory
		wantDetails  int
	}{
		{name: "ok", status: 200, body: `{}`},
		{name: "no content", status: 204},
		{
			name:         "legacy issue list",
			status:       400,
			body:         `{"requestId":"75d4dad6","IssueList":[{"i18nKey":"missing_entity","source":"company.name","type":"validation_failure"}]}`,
			wantErr:      true,
			wantCode:     "VALIDATION_FAILURE",
			wantCategory: CategoryValidation,
			wantDetails:  1,
		},
		{
			name:   "current format",
			status: 409,
			body: `{"timestamp":"2024-01-01T10:00:00Z","status":409,"error":"Conflict","path":"/v1/invoices",` +
				`"traceId":"abc","message":"stale version","code":"OPTIMISTIC_LOCKING_FAILURE","details":[{"violation":"conflict","field":"version","message":"outdated"}]}`,
			wantErr:      true,
			wantCode:     "OPTIMISTIC_LOCKING_FAILURE",
			wantCategory: CategoryOptimisticLocking,
			wantDetails:  1,
		},
		{
			name:         "plain text body",
			status:       502,
			body:         "Bad Gateway",
			wantErr:      true,
			wantCategory: CategoryServer,
		},
		{
			name:         "rate limited with retry after",
			status:       429,
			body:         `{"message":"Rate limit exceeded"}`,
			headers:      map[string]string{HeaderRetryAfter: "3"},
			wantErr:      true,
			wantCategory: CategoryRateLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(newResponse(tt.status, tt.body, tt.headers))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			apiErr, ok := AsApiError(err)
			require.True(t, ok, "expected *ApiError, got %T", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantCategory, apiErr.Classification.Category)
			assert.Len(t, apiErr.Details, tt.wantDetails)
			assert.Equal(t, http.MethodPost, apiErr.Method)
			assert.Contains(t, err.Error(), tt.wantCategory.Label())
		})
	}
}

func TestValidateResponse_RequestIDAndRetryAfter(t *testing.T) {
	err := validateResponse(newResponse(429, `{"message":"slow down"}`, map[string]string{
		HeaderRetryAfter: "2",
		HeaderRequestID:  "req-1",
	}))
	apiErr, ok := AsApiError(err)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, apiErr.RetryAfter)
	assert.Equal(t, "req-1", apiErr.RequestID)
	assert.True(t, apiErr.Classification.Retryable)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"1.5", 1500 * time.Millisecond},
		{now.Add(10 * time.Second).Format(http.TimeFormat), 10 * time.Second},
		{now.Add(-10 * time.Second).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRetryAfter(tt.value, now))
		})
	}
}

func TestBuildUrl(t *testing.T) {
	rest := newTestRest(t, func(http.ResponseWriter, *http.Request) {})
	session := rest.GetSession()
	base := session.GetConfig().ResourceUrl

	got, err := buildUrl(session, "/voucherlist", "voucherType=invoice", "")
	require.NoError(t, err)
	assert.Equal(t, base+"/v1/voucherlist?voucherType=invoice", got)

	got, err = buildUrl(session, "invoices/abc/document/", "", "v1")
	require.NoError(t, err)
	assert.Equal(t, base+"/v1/invoices/abc/document", got)
}

func TestBuildUrl_RequiresAbsoluteBase(t *testing.T) {
	session := &LexwareSession{config: &Config{ResourceUrl: "api.lexware.io", ApiVersion: "v1"}}
	_, err := buildUrl(session, "/contacts", "", "")
	assert.Error(t, err)
}

func TestPathToUrl(t *testing.T) {
	rest := newTestRest(t, func(http.ResponseWriter, *http.Request) {})
	session := rest.GetSession()
	base := session.GetConfig().ResourceUrl

	got, err := pathToUrl(session, "https://example.com/v1/profile")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v1/profile", got)

	got, err = pathToUrl(session, "contacts?page=1")
	require.NoError(t, err)
	assert.Equal(t, base+"/v1/contacts?page=1", got)
}

func TestConvertMapToQuery(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"empty", Params{}, ""},
		{"nil skipped", Params{"a": nil, "b": "x"}, "b=x"},
		{"empty string kept", Params{"voucherStatus": ""}, "voucherStatus="},
		{"string slice", Params{"voucherStatus": []string{"open", "paid"}}, "voucherStatus=open%2Cpaid"},
		{"any slice", Params{"ids": []any{1, 2}}, "ids=1%2C2"},
		{"bool and int", Params{"customer": true, "page": 2}, "customer=true&page=2"},
		{"float", Params{"amount": 12.5}, "amount=12.5"},
		{"time", Params{"from": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, "from=2024-01-02T00%3A00%3A00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertMapToQuery(tt.params))
		})
	}
}

func TestConsolidateHeaders(t *testing.T) {
	rest := newTestRest(t, func(http.ResponseWriter, *http.Request) {})
	session := rest.GetSession()

	defaults := consolidateHeaders(session, nil)
	assert.Equal(t, ContentTypeJSON, defaults.Get(HeaderAccept))
	assert.Equal(t, ContentTypeJSON, defaults.Get(HeaderContentType))
	assert.Contains(t, defaults.Get(HeaderUserAgent), "go-lexware-client-")

	custom := consolidateHeaders(session, []http.Header{
		{HeaderAccept: []string{ContentTypePDF}},
		{HeaderContentType: []string{ContentTypeMultipartForm}},
	})
	assert.Equal(t, ContentTypePDF, custom.Get(HeaderAccept))
	assert.Equal(t, ContentTypeMultipartForm, custom.Get(HeaderContentType))
}

func TestSetupHeaders_Bearer(t *testing.T) {
	rest := newTestRest(t, func(http.ResponseWriter, *http.Request) {})
	req, _ := http.NewRequest(http.MethodGet, "https://api.lexware.io/v1/profile", nil)
	setupHeaders(rest.GetSession(), req, http.Header{"X-Extra": []string{"1"}})
	assert.Equal(t, "Bearer "+testApiKey, req.Header.Get(HeaderAuthorization))
	assert.Equal(t, "1", req.Header.Get("X-Extra"))
}

func TestPrettyBody(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", prettyBody([]byte(`{"a":1}`)))
	assert.Equal(t, "not json", prettyBody([]byte("not json")))
}
