package core

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedContacts serves total contacts split into pages of the requested size.
func pagedContacts(total int, requests *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			atomic.AddInt32(requests, 1)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		if size == 0 {
			size = DefaultPageSize
		}
		totalPages := (total + size - 1) / size
		var items []string
		for i := page * size; i < min((page+1)*size, total); i++ {
			items = append(items, fmt.Sprintf(`{"id":"c-%d","version":0}`, i))
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(
			`{"content":[%s],"first":%t,"last":%t,"totalPages":%d,"totalElements":%d,"numberOfElements":%d,"size":%d,"number":%d}`,
			strings.Join(items, ","), page == 0, page >= totalPages-1, totalPages, total, len(items), size, page,
		))
	}
}

func TestIterator_WalksPages(t *testing.T) {
	var requests int32
	rest := newTestRest(t, pagedContacts(5, &requests))
	contacts := newTestResource(rest, "/contacts", "Contact")

	iter := contacts.GetIteratorWithContext(context.Background(), Params{"customer": true}, 2)
	assert.True(t, iter.HasNext())
	assert.False(t, iter.HasPrevious())
	assert.Equal(t, -1, iter.Count())

	first, err := iter.Next()
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 5, iter.Count())
	assert.Equal(t, "Contact", first[0][ResourceTypeKey])
	assert.True(t, iter.HasNext())

	second, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, "c-2", second[0]["id"])
	assert.True(t, iter.HasPrevious())

	back, err := iter.Previous()
	require.NoError(t, err)
	assert.Equal(t, "c-0", back[0]["id"])

	all, err := iter.All()
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.False(t, iter.HasNext())

	extra, err := iter.Next()
	require.NoError(t, err)
	assert.Empty(t, extra)
}

func TestIterator_EnvelopeWithoutNumber(t *testing.T) {
	var requests int32
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"content":[{"id":"c-%d"}],"last":%t}`, page, page >= 2))
	})
	contacts := newTestResource(rest, "/contacts", "Contact")

	all, err := contacts.GetIterator(nil, 1).All()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c-2", all[2]["id"])
	assert.EqualValues(t, 3, atomic.LoadInt32(&requests))
}

func TestIterator_QueryParameters(t *testing.T) {
	var seen []string
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, `{"content":[],"first":true,"last":true,"totalPages":0,"totalElements":0,"size":250,"number":3}`)
	})
	contacts := newTestResource(rest, "/contacts", "Contact")

	iter := contacts.GetIterator(Params{"page": 3, "email": "a@b.de"}, 1000)
	assert.Equal(t, MaxPageSize, iter.PageSize())
	_, err := iter.Next()
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "email=a%40b.de&page=3&size=250", seen[0])
}

func TestIterator_NonPagedResource(t *testing.T) {
	var requests int32
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Empty(t, r.URL.Query().Get("size"))
		writeJSON(w, http.StatusOK, `[{"countryCode":"DE"},{"countryCode":"AT"}]`)
	})
	countries := NewResource("/countries", "Country", rest, NewResourceOps(L), nil)
	rest.register(countries)

	iter := countries.GetIterator(nil, 0)
	records, err := iter.Next()
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.False(t, iter.HasNext())
	assert.Equal(t, 2, iter.Count())

	all, err := iter.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&requests))
}

func TestIterator_ContentWrapper(t *testing.T) {
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"content":[{"subscriptionId":"s1"}]}`)
	})
	subs := NewResource("/event-subscriptions", "EventSubscription", rest, NewResourceOps(L), nil)
	rest.register(subs)

	records, err := subs.GetIterator(nil, 0).All()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "s1", records[0]["subscriptionId"])
}

func TestIterator_Reset(t *testing.T) {
	var requests int32
	rest := newTestRest(t, pagedContacts(3, &requests))
	contacts := newTestResource(rest, "/contacts", "Contact")

	iter := contacts.GetIterator(nil, 1)
	_, err := iter.Next()
	require.NoError(t, err)
	_, err = iter.Next()
	require.NoError(t, err)

	records, err := iter.Reset()
	require.NoError(t, err)
	assert.Equal(t, "c-0", records[0]["id"])
	assert.EqualValues(t, 3, atomic.LoadInt32(&requests))
}

func TestIterator_PreviousBeforeNext(t *testing.T) {
	rest := newTestRest(t, pagedContacts(1, nil))
	contacts := newTestResource(rest, "/contacts", "Contact")
	_, err := contacts.GetIterator(nil, 1).Previous()
	assert.Error(t, err)
}

func TestIterator_ErrorStopsIteration(t *testing.T) {
	rest := newTestRest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"message":"maintenance"}`)
	})
	contacts := newTestResource(rest, "/contacts", "Contact")
	iter := contacts.GetIterator(nil, 10)
	_, err := iter.Next()
	assert.True(t, IsApiError(err))
	assert.False(t, iter.HasNext())
	assert.Contains(t, fmt.Sprint(iter), "Error:")
}

func TestPaginationLimits(t *testing.T) {
	limits, paged := PaginationLimitsFor("VoucherList")
	assert.True(t, paged)
	assert.Equal(t, PaginationLimits{Default: 50, Max: 250, Min: 1}, limits)

	_, paged = PaginationLimitsFor("Country")
	assert.False(t, paged)

	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 0, 50},
		{-2, 10, 0, 10},
		{4, 1000, 4, 250},
		{1, -5, 1, 50},
	}
	for _, tt := range tests {
		page, size := NormalizePagination("Contact", tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantSize, size)
	}
}
