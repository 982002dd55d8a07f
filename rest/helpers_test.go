package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/lexware-office/go-lexware-client/core"
)

const (
	invoiceID = "e9066f04-8cc7-4616-93f8-ac9ecc8479c8"
	contactID = "be9475f4-ef80-442b-8ab9-3ab8b1a2aeb9"
	fileID    = "3c1d4b2a-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
)

type recorded struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Accept      string
	Body        map[string]any
	Raw         []byte
}

// apiStub records every request and answers with the response registered for "METHOD /path".
type apiStub struct {
	mu        sync.Mutex
	requests  []recorded
	responses map[string]stubResponse
}

type stubResponse struct {
	status      int
	contentType string
	body        string
}

func (s *apiStub) on(method, path string, status int, body string) {
	s.responses[method+" "+path] = stubResponse{status: status, contentType: core.ContentTypeJSON, body: body}
}

func (s *apiStub) onFile(path, contentType, body string) {
	s.responses[http.MethodGet+" "+path] = stubResponse{status: http.StatusOK, contentType: contentType, body: body}
}

func (s *apiStub) last(t *testing.T) recorded {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests, "no request recorded")
	return s.requests[len(s.requests)-1]
}

func (s *apiStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	rec := recorded{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		ContentType: r.Header.Get(core.HeaderContentType),
		Accept:      r.Header.Get(core.HeaderAccept),
		Raw:         raw,
	}
	if len(raw) > 0 && rec.ContentType == core.ContentTypeJSON {
		_ = json.Unmarshal(raw, &rec.Body)
	}
	s.mu.Lock()
	s.requests = append(s.requests, rec)
	resp, ok := s.responses[r.Method+" "+r.URL.Path]
	s.mu.Unlock()
	if !ok {
		resp = stubResponse{status: http.StatusOK, contentType: core.ContentTypeJSON, body: `{}`}
	}
	w.Header().Set(core.HeaderContentType, resp.contentType)
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func newTestLexwareRest(t *testing.T) (*LexwareRest, *apiStub) {
	t.Helper()
	stub := &apiStub{responses: map[string]stubResponse{}}
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)
	rest, err := NewLexwareRest(&core.Config{
		ApiKey:      "test-api-key",
		ResourceUrl: server.URL,
		RateLimit:   rate.Inf,
	})
	require.NoError(t, err)
	return rest, stub
}
