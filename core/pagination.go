package core

// PaginationLimits bounds the page size accepted by a paged list endpoint.
type PaginationLimits struct {
	Default int
	Max     int
	Min     int
}

func (l PaginationLimits) clamp(size int) int {
	switch {
	case size <= 0:
		return l.Default
	case size < l.Min:
		return l.Min
	case size > l.Max:
		return l.Max
	}
	return size
}

var standardLimits = PaginationLimits{Default: DefaultPageSize, Max: MaxPageSize, Min: MinPageSize}

// paginationLimits is keyed by resource type. Resources missing here answer with a single list.
var paginationLimits = map[string]PaginationLimits{
	"Article":           standardLimits,
	"Contact":           standardLimits,
	"VoucherList":       standardLimits,
	"RecurringTemplate": standardLimits,
}

// PaginationLimitsFor returns the limits of resourceType and whether its list endpoint is paged.
func PaginationLimitsFor(resourceType string) (PaginationLimits, bool) {
	limits, ok := paginationLimits[resourceType]
	return limits, ok
}

// NormalizePagination clamps size into the limits of resourceType and floors page at 0.
// Non-paged resources use the standard limits.
func NormalizePagination(resourceType string, page, size int) (int, int) {
	limits, ok := PaginationLimitsFor(resourceType)
	if !ok {
		limits = standardLimits
	}
	if page < 0 {
		page = 0
	}
	return page, limits.clamp(size)
}
