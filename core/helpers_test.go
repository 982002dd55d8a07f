package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

const testApiKey = "test-api-key"

// testRest is a minimal LexwareRest used by core tests.
type testRest struct {
	ctx         context.Context
	session     RESTSession
	resourceMap map[string]ResourceAPIWithContext
}

func (r *testRest) GetSession() RESTSession                            { return r.session }
func (r *testRest) GetResourceMap() map[string]ResourceAPIWithContext { return r.resourceMap }
func (r *testRest) GetCtx() context.Context                           { return r.ctx }
func (r *testRest) SetCtx(ctx context.Context)                        { r.ctx = ctx }

// register adds a resource to the map so shadowed hooks are found.
func (r *testRest) register(res ResourceAPIWithContext) {
	r.resourceMap[res.GetResourceType()] = res
}

func newTestConfig(serverURL string) *Config {
	return &Config{
		ApiKey:      testApiKey,
		ResourceUrl: serverURL,
		RateLimit:   rate.Inf,
	}
}

// newTestRest starts an httptest server with handler and returns a rest bound to it.
func newTestRest(t *testing.T, handler http.HandlerFunc, opts ...func(*Config)) *testRest {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	config := newTestConfig(server.URL)
	for _, opt := range opts {
		opt(config)
	}
	session, err := NewSession(config)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return &testRest{
		ctx:         context.Background(),
		session:     session,
		resourceMap: map[string]ResourceAPIWithContext{},
	}
}

// newTestResource creates and registers a resource with all CRUD ops.
func newTestResource(rest *testRest, path, resourceType string) *Resource {
	res := NewResource(path, resourceType, rest, NewResourceOps(C, L, R, U, D), nil)
	rest.register(res)
	return res
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
