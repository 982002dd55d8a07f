package core

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "9a8b1d40-3c2d-4f38-9a3e-7bf0c1f1e001"

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Accept string
}

func capture(into *[]capturedRequest, status int, response string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := capturedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Accept: r.Header.Get(HeaderAccept)}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &c.Body)
		}
		*into = append(*into, c)
		writeJSON(w, status, response)
	}
}

func TestResource_CRUD(t *testing.T) {
	var reqs []capturedRequest
	rest := newTestRest(t, capture(&reqs, http.StatusOK, `{"id":"`+testID+`","version":1}`))
	articles := newTestResource(rest, "/articles", "Article")

	rec, err := articles.Get(testID)
	require.NoError(t, err)
	assert.Equal(t, testID, rec.RecordID())
	assert.Equal(t, "Article", rec[ResourceTypeKey])

	_, err = articles.Create(Params{"title": "Beratung"})
	require.NoError(t, err)

	_, err = articles.Delete(uuid.MustParse(testID))
	require.NoError(t, err)

	require.Len(t, reqs, 3)
	assert.Equal(t, capturedRequest{Method: "GET", Path: "/v1/articles/" + testID, Accept: ContentTypeJSON}, reqs[0])
	assert.Equal(t, "POST", reqs[1].Method)
	assert.Equal(t, "/v1/articles", reqs[1].Path)
	assert.Equal(t, map[string]any{"title": "Beratung"}, reqs[1].Body)
	assert.Equal(t, "DELETE", reqs[2].Method)
}

func TestResource_UpdateSanitizesAndAttachesVersion(t *testing.T) {
	var reqs []capturedRequest
	rest := newTestRest(t, capture(&reqs, http.StatusOK, `{"id":"`+testID+`","version":4}`))
	contacts := newTestResource(rest, "/contacts", "Contact")

	data := Params{
		"id": testID, "version": 1, "organizationId": "o", "createdAt": "x", "updatedAt": "y",
		"company": map[string]any{"name": "Acme"},
	}
	_, err := contacts.Update(testID, data, 3)
	require.NoError(t, err)

	require.Len(t, reqs, 1)
	assert.Equal(t, "PUT", reqs[0].Method)
	assert.Equal(t, map[string]any{
		"company": map[string]any{"name": "Acme"},
		"version": float64(3),
	}, reqs[0].Body)
	assert.Len(t, data, 6, "caller data must not be modified")
}

func TestResource_UpdateAfterGet(t *testing.T) {
	var reqs []capturedRequest
	rest := newTestRest(t, capture(&reqs, http.StatusOK, `{"id":"`+testID+`","version":3,"note":"a"}`))
	contacts := newTestResource(rest, "/contacts", "Contact")

	rec, err := contacts.Get(testID)
	require.NoError(t, err)
	require.Equal(t, "Contact", rec[ResourceTypeKey])
	version, _ := rec.RecordVersion()
	rec["note"] = "b"

	_, err = contacts.Update(testID, Params(rec), version)
	require.NoError(t, err)
	_, err = contacts.Create(Params(rec))
	require.NoError(t, err)

	require.Len(t, reqs, 3)
	assert.Equal(t, map[string]any{"note": "b", "version": float64(3)}, reqs[1].Body)
	assert.NotContains(t, reqs[2].Body, ResourceTypeKey)
}

func TestResource_UpdateRejectsInvalidVersion(t *testing.T) {
	var reqs []capturedRequest
	rest := newTestRest(t, capture(&reqs, http.StatusOK, `{}`))
	contacts := newTestResource(rest, "/contacts", "Contact")

	_, err := contacts.Update(testID, Params{"a": 1}, -1)
	assert.True(t, IsValidationErr(err))
	_, err = contacts.Update(testID, Params{"a": 1}, nil)
	assert.True(t, IsValidationErr(err))
	assert.Empty(t, reqs, "no request may be sent")
}

func TestResource_UpdateConflict(t *testing.T) {
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, `{"message":"stale","currentVersion":7,"requestedVersion":3}`)
	})
	contacts := newTestResource(rest, "/contacts", "Contact")

	_, err := contacts.UpdateWithContext(context.Background(), testID, Params{"a": 1}, 3)
	var conflict *VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(7), *conflict.CurrentVersion)
	assert.True(t, ShouldRetry(err, 1, 3))
}

func TestResource_OpsEnforced(t *testing.T) {
	var reqs []capturedRequest
	rest := newTestRest(t, capture(&reqs, http.StatusOK, `{}`))
	invoices := NewResource("/invoices", "Invoice", rest, NewResourceOps(C, R), nil)
	rest.register(invoices)

	_, err := invoices.Update(testID, Params{}, 1)
	assert.True(t, IsUnsupportedOperationErr(err))
	_, err = invoices.Delete(testID)
	assert.True(t, IsUnsupportedOperationErr(err))
	_, err = invoices.List(nil)
	assert.True(t, IsUnsupportedOperationErr(err))
	assert.Empty(t, reqs)
	assert.Equal(t, "CR", invoices.Ops().String())
}

func TestResource_InvalidID(t *testing.T) {
	rest := newTestRest(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	contacts := newTestResource(rest, "/contacts", "Contact")
	for _, id := range []any{"", "123", nil, 42, "../profile"} {
		_, err := contacts.Get(id)
		assert.True(t, IsValidationErr(err), "id %v", id)
	}
}

func TestResource_GetAll(t *testing.T) {
	rest := newTestRest(t, pagedContacts(7, nil))
	contacts := newTestResource(rest, "/contacts", "Contact")

	all, err := contacts.GetAll(nil, ListOptions{ReturnAll: true})
	require.NoError(t, err)
	assert.Len(t, all, 7)

	limited, err := contacts.GetAll(nil, ListOptions{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	firstPage, err := contacts.GetAll(nil, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, firstPage, 7, "default page size covers all records")
}

func TestResource_GetAllNonPagedLimit(t *testing.T) {
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"1"},{"id":"2"},{"id":"3"}]`)
	})
	layouts := NewResource("/print-layouts", "PrintLayout", rest, NewResourceOps(L), nil)
	rest.register(layouts)

	records, err := layouts.GetAll(nil, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestResource_Download(t *testing.T) {
	var accept string
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get(HeaderAccept)
		assert.Equal(t, "/v1/files/"+testID, r.URL.Path)
		w.Header().Set(HeaderContentType, ContentTypePDF)
		w.Header().Set(HeaderContentDisposition, `attachment; filename="RE-1001.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.7"))
	})
	files := newTestResource(rest, "/files", "File")

	file, err := files.DownloadWithContext(context.Background(), testID, ContentTypePDF)
	require.NoError(t, err)
	assert.Equal(t, ContentTypePDF, accept)
	assert.Equal(t, "RE-1001.pdf", file.FileName)
	assert.Equal(t, []byte("%PDF-1.7"), file.Content)
}

func TestResource_NetworkError(t *testing.T) {
	rest := newTestRest(t, func(http.ResponseWriter, *http.Request) {})
	rest.session.(*LexwareSession).config.ResourceUrl = "http://127.0.0.1:1"
	contacts := newTestResource(rest, "/contacts", "Contact")
	_, err := contacts.Get(testID)
	assert.True(t, IsNetworkErr(err))
	assert.True(t, IsRetryable(err))
}

func TestResource_CanceledContext(t *testing.T) {
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	contacts := newTestResource(rest, "/contacts", "Contact")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := contacts.GetWithContext(ctx, testID)
	var unknown *UnknownError
	assert.ErrorAs(t, err, &unknown)
}

func TestBuildResourcePathWithID(t *testing.T) {
	path, err := BuildResourcePathWithID("/invoices", testID, "document")
	require.NoError(t, err)
	assert.Equal(t, "/invoices/"+testID+"/document", path)

	path, err = BuildResourcePathWithID("/vouchers/", " "+testID+" ", "/files/")
	require.NoError(t, err)
	assert.Equal(t, "/vouchers/"+testID+"/files", path)

	_, err = BuildResourcePathWithID("/invoices", "nope")
	assert.True(t, IsValidationErr(err))
}

func TestResourceOps(t *testing.T) {
	tests := []struct {
		ops  ResourceOps
		want string
	}{
		{NewResourceOps(C, L, R, U, D), "CLRUD"},
		{NewResourceOps(L), "L"},
		{NewResourceOps(R, C), "CR"},
		{ResourceOps(0), "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ops.String())
	}
	assert.True(t, NewResourceOps(C, R).Has(R))
	assert.False(t, NewResourceOps(C, R).Has(U))
}

func TestGetCRUDHintsFromResource(t *testing.T) {
	rest := newTestRest(t, func(http.ResponseWriter, *http.Request) {})
	base := NewResource("/countries", "Country", rest, NewResourceOps(L), nil)
	wrapper := &struct{ *Resource }{base}
	assert.Equal(t, "L", GetCRUDHintsFromResource(base).String())
	assert.Equal(t, "L", GetCRUDHintsFromResource(wrapper).String())
	assert.Equal(t, ResourceOps(0), GetCRUDHintsFromResource(42))
}

func TestResource_String(t *testing.T) {
	RegisterOperation("TestThing", "Document", http.MethodGet, "/things/{id}/document", "Render PDF")
	rest := newTestRest(t, func(http.ResponseWriter, *http.Request) {})
	res := NewResource("things", "TestThing", rest, NewResourceOps(C, R), nil)
	out := res.String()
	assert.Contains(t, out, "TestThing [CR] /things")
	assert.Contains(t, out, "Document GET [/things/{id}/document]")

	meta, ok := GetOperationMetadata("TestThing", "Document")
	assert.True(t, ok)
	assert.Equal(t, "Render PDF", meta.Summary)
	assert.Len(t, SortedOperationsFor("TestThing"), 1)
}
