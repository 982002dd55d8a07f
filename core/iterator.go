package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ######################################################
//              ITERATOR INTERFACES
// ######################################################

// Iterator provides an interface for iterating over paginated or non-paginated API results.
// Paged Lexware endpoints answer with a page envelope; non-paged endpoints with a flat list.
type Iterator interface {
	// Next advances to the next page and returns the records and any error.
	// Returns empty RecordSet when there are no more pages.
	Next() (RecordSet, error)

	// Previous moves to the previous page and returns the records and any error.
	// Returns empty RecordSet when there is no previous page.
	Previous() (RecordSet, error)

	// HasNext returns true if there is a next page available.
	HasNext() bool

	// HasPrevious returns true if there is a previous page available.
	HasPrevious() bool

	// Count returns the total count of items reported by the page envelope.
	// Returns -1 if count information is not available.
	Count() int

	// PageSize returns the current page size.
	PageSize() int

	// Reset resets the iterator to the first page and returns the first page records.
	Reset() (RecordSet, error)

	// All fetches all remaining pages and returns all records as a single RecordSet.
	// This should be used with caution for large datasets.
	All() (RecordSet, error)
}

// ######################################################
//              RESOURCE ITERATOR IMPLEMENTATION
// ######################################################

// Page is the Lexware page envelope returned by paged list endpoints.
type Page struct {
	Content          RecordSet
	First            bool
	Last             bool
	TotalPages       int
	TotalElements    int
	NumberOfElements int
	Size             int
	Number           int
}

// isPageEnvelope reports whether record looks like a Lexware page envelope.
func isPageEnvelope(record Record) bool {
	_, hasContent := record["content"]
	_, hasLast := record["last"]
	_, hasNumber := record["number"]
	return hasContent && (hasLast || hasNumber)
}

func parsePage(record Record) Page {
	page := Page{TotalPages: -1, TotalElements: -1, Number: -1}
	if content, ok := record["content"].([]any); ok {
		page.Content = anyToRecordSet(content)
	} else {
		page.Content = RecordSet{}
	}
	page.First, _ = record["first"].(bool)
	page.Last, _ = record["last"].(bool)
	intField := func(key string, dst *int) {
		if raw, ok := record[key]; ok {
			if n, err := toInt(raw); err == nil {
				*dst = int(n)
			}
		}
	}
	intField("totalPages", &page.TotalPages)
	intField("totalElements", &page.TotalElements)
	intField("numberOfElements", &page.NumberOfElements)
	intField("size", &page.Size)
	intField("number", &page.Number)
	return page
}

// ResourceIterator implements the Iterator interface for Lexware resources.
// Pages are addressed by number starting at 0.
type ResourceIterator struct {
	resource     InterceptableResourceAPI
	ctx          context.Context
	initialQuery Params
	pageSize     int
	paged        bool

	current     RecordSet
	currentPage int
	last        bool
	totalCount  int
	err         error
	initialized bool
}

// NewResourceIterator creates an iterator over the list endpoint of resource.
// pageSize is clamped to the pagination limits of the resource type; zero or
// negative values fall back to the session PageSize.
func NewResourceIterator(ctx context.Context, resource InterceptableResourceAPI, params Params, pageSize int) Iterator {
	if ctx == nil {
		ctx = context.Background()
	}
	if pageSize <= 0 {
		pageSize = resource.Session().GetConfig().PageSize
	}
	limits, paged := PaginationLimitsFor(resource.GetResourceType())
	if paged {
		pageSize = limits.clamp(pageSize)
	}
	query := params.Clone()
	if query == nil {
		query = Params{}
	}
	startPage := 0
	if paged {
		if raw, ok := query[QueryPage]; ok {
			if n, err := toInt(raw); err == nil && n > 0 {
				startPage = int(n)
			}
			delete(query, QueryPage)
		}
		query[QuerySize] = pageSize
	}
	return &ResourceIterator{
		resource:     resource,
		ctx:          ctx,
		initialQuery: query,
		pageSize:     pageSize,
		paged:        paged,
		currentPage:  startPage,
		totalCount:   -1,
	}
}

// fetchPage requests one page. The resource travels in ctx so interceptors apply.
func (it *ResourceIterator) fetchPage(number int) error {
	query := it.initialQuery.Clone()
	if it.paged {
		query[QueryPage] = number
	}
	response, _, err := dispatch(it.ctx, it.resource, http.MethodGet, it.resource.GetResourcePath(), query, nil, nil)
	if err != nil {
		return err
	}
	resourceType := it.resource.GetResourceType()
	switch typed := response.(type) {
	case Record:
		if isPageEnvelope(typed) {
			page := parsePage(typed)
			if page.Number < 0 {
				page.Number = number
			}
			it.current = page.Content
			it.currentPage = page.Number
			it.last = page.Last || len(page.Content) == 0
			if page.TotalPages >= 0 && page.Number+1 >= page.TotalPages {
				it.last = true
			}
			it.totalCount = page.TotalElements
		} else {
			it.current = recordToRecordSet(typed)
			it.currentPage = 0
			it.last = true
			it.totalCount = len(it.current)
		}
	case RecordSet:
		it.current = typed
		it.currentPage = 0
		it.last = true
		it.totalCount = len(typed)
	default:
		return fmt.Errorf("unexpected response type: %T", response)
	}
	if resourceType != rawResourceType {
		return setResourceKey(it.current, resourceType)
	}
	return nil
}

// Next advances to the next page and returns the records and any error.
func (it *ResourceIterator) Next() (RecordSet, error) {
	if !it.initialized {
		it.err = it.fetchPage(it.currentPage)
		it.initialized = true
		if it.err != nil {
			return RecordSet{}, it.err
		}
		return it.current, nil
	}
	if !it.HasNext() {
		return RecordSet{}, nil
	}
	if it.err = it.fetchPage(it.currentPage + 1); it.err != nil {
		return RecordSet{}, it.err
	}
	return it.current, nil
}

// Previous moves to the previous page and returns the records and any error.
func (it *ResourceIterator) Previous() (RecordSet, error) {
	if !it.initialized {
		it.err = fmt.Errorf("iterator not initialized, call Next() first")
		return RecordSet{}, it.err
	}
	if !it.HasPrevious() {
		return RecordSet{}, nil
	}
	if it.err = it.fetchPage(it.currentPage - 1); it.err != nil {
		return RecordSet{}, it.err
	}
	return it.current, nil
}

// HasNext returns true if there is a next page.
func (it *ResourceIterator) HasNext() bool {
	if !it.initialized {
		return true
	}
	return it.err == nil && !it.last
}

// HasPrevious returns true if there is a previous page.
func (it *ResourceIterator) HasPrevious() bool {
	return it.initialized && it.paged && it.currentPage > 0
}

// Count returns the total count of items.
func (it *ResourceIterator) Count() int {
	return it.totalCount
}

// PageSize returns the page size.
func (it *ResourceIterator) PageSize() int {
	return it.pageSize
}

// String returns a formatted string representation of the iterator state.
func (it *ResourceIterator) String() string {
	var sb strings.Builder

	sb.WriteString("ResourceIterator {\n")
	fmt.Fprintf(&sb, "  Resource:      %s\n", it.resource.GetResourceType())
	fmt.Fprintf(&sb, "  Initialized:   %v\n", it.initialized)
	fmt.Fprintf(&sb, "  Current Page:  %d\n", it.currentPage)
	fmt.Fprintf(&sb, "  Page Size:     %d\n", it.pageSize)
	fmt.Fprintf(&sb, "  Total Count:   %d\n", it.totalCount)
	if len(it.current) > 0 {
		fmt.Fprintf(&sb, "  Current:       [... (%d items)]\n", len(it.current))
	} else {
		sb.WriteString("  Current:       []\n")
	}
	fmt.Fprintf(&sb, "  Last Page:     %v\n", it.last)
	if it.err != nil {
		fmt.Fprintf(&sb, "  Error:         %v\n", it.err)
	}
	sb.WriteString("}")
	return sb.String()
}

// Reset resets the iterator to the first page and returns the first page records.
func (it *ResourceIterator) Reset() (RecordSet, error) {
	it.initialized = false
	it.current = nil
	it.currentPage = 0
	it.last = false
	it.err = nil
	it.totalCount = -1
	return it.Next()
}

// All fetches all pages and returns all records.
func (it *ResourceIterator) All() (RecordSet, error) {
	allRecords := RecordSet{}
	if !it.initialized {
		records, err := it.Next()
		if err != nil {
			return nil, err
		}
		allRecords = append(allRecords, records...)
	} else {
		allRecords = append(allRecords, it.current...)
	}
	for it.HasNext() {
		records, err := it.Next()
		if err != nil {
			return nil, err
		}
		allRecords = append(allRecords, records...)
	}
	return allRecords, nil
}
