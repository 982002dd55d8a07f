package core

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const rawResourceType = "Raw"

// RawResource is used to support Request interceptors for "low level" session methods like GET, POST etc.
type RawResource struct {
	*Resource
}

type rawRest struct {
	ctx         context.Context
	session     RESTSession
	resourceMap map[string]ResourceAPIWithContext
}

func (rest *rawRest) GetSession() RESTSession {
	return rest.session
}

func (rest *rawRest) GetResourceMap() map[string]ResourceAPIWithContext {
	return rest.resourceMap
}

func (rest *rawRest) GetCtx() context.Context {
	return rest.ctx
}

func (rest *rawRest) SetCtx(ctx context.Context) {
	rest.ctx = ctx
}

func NewRawResource(ctx context.Context, session RESTSession) *RawResource {
	raw := &RawResource{
		Resource: &Resource{
			resourceType: rawResourceType,
			mu:           NewKeyLocker(),
		},
	}
	rest := &rawRest{
		ctx:         ctx,
		session:     session,
		resourceMap: map[string]ResourceAPIWithContext{rawResourceType: raw},
	}
	raw.Rest = rest
	return raw
}

//  ######################################################
//              RESOURCE BASE CRUD OPS
//  ######################################################

// ListOptions control how many records a list call returns.
type ListOptions struct {
	// ReturnAll walks every page.
	ReturnAll bool
	// Limit caps the number of records when ReturnAll is false. Zero means one default sized page.
	Limit int
}

// Resource implements ResourceAPIWithContext and provides common behavior for Lexware resources.
type Resource struct {
	resourcePath string
	resourceType string
	Rest         LexwareRest
	mu           *KeyLocker
	resourceOps  ResourceOps
	parent       any // Reference to the wrapper that embeds this Resource
}

func NewResource(resourcePath string, resourceType string, rest LexwareRest, resourceOps ResourceOps, parent any) *Resource {
	return &Resource{
		resourcePath: resourcePath,
		resourceType: resourceType,
		Rest:         rest,
		mu:           NewKeyLocker(),
		resourceOps:  resourceOps,
		parent:       parent,
	}
}

// Session returns the session associated with the resource.
func (e *Resource) Session() RESTSession {
	return e.Rest.GetSession()
}

func (e *Resource) GetResourceType() string {
	return e.resourceType
}

// GetResourcePath returns the path relative to the API version root, e.g. "/invoices".
func (e *Resource) GetResourcePath() string {
	return "/" + strings.Trim(e.resourcePath, "/")
}

func (e *Resource) Ops() ResourceOps {
	return e.resourceOps
}

// self returns the interceptable value requests are issued on behalf of.
func (e *Resource) self() InterceptableResourceAPI {
	if r, ok := e.caller().(InterceptableResourceAPI); ok {
		return r
	}
	return e
}

func (e *Resource) require(flag ResourceOps, operation string) error {
	if e.resourceOps.has(flag) {
		return nil
	}
	return &UnsupportedOperationError{Resource: e.resourceType, Operation: operation}
}

// GetWithContext fetches a single resource by its UUID.
func (e *Resource) GetWithContext(ctx context.Context, id any) (Record, error) {
	if err := e.require(R, "get"); err != nil {
		return nil, err
	}
	path, err := BuildResourcePathWithID(e.GetResourcePath(), id)
	if err != nil {
		return nil, err
	}
	return Request[Record](ctx, e.self(), http.MethodGet, path, nil, nil)
}

// ListWithContext walks all pages matching the query.
func (e *Resource) ListWithContext(ctx context.Context, params Params) (RecordSet, error) {
	return e.GetAllWithContext(ctx, params, ListOptions{ReturnAll: true})
}

// GetAllWithContext returns either every page (opts.ReturnAll) or the first opts.Limit records.
func (e *Resource) GetAllWithContext(ctx context.Context, params Params, opts ListOptions) (RecordSet, error) {
	if err := e.require(L, "getAll"); err != nil {
		return nil, err
	}
	limits, paged := PaginationLimitsFor(e.resourceType)
	if !paged {
		result, err := Request[RecordSet](ctx, e.self(), http.MethodGet, e.GetResourcePath(), params, nil)
		if err != nil {
			return nil, err
		}
		if !opts.ReturnAll && opts.Limit > 0 && len(result) > opts.Limit {
			result = result[:opts.Limit]
		}
		return result, nil
	}
	if opts.ReturnAll {
		return e.GetIteratorWithContext(ctx, params, limits.Max).All()
	}
	pageSize := limits.clamp(opts.Limit)
	if opts.Limit <= 0 {
		pageSize = e.defaultPageSize(limits)
	}
	records, err := e.GetIteratorWithContext(ctx, params, pageSize).Next()
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records, nil
}

func (e *Resource) defaultPageSize(limits PaginationLimits) int {
	if size := e.Session().GetConfig().PageSize; size > 0 {
		return limits.clamp(size)
	}
	return limits.Default
}

// CreateWithContext creates a new resource from body.
func (e *Resource) CreateWithContext(ctx context.Context, body Params) (Record, error) {
	return e.CreateWithQueryContext(ctx, body, nil)
}

// CreateWithQueryContext creates a new resource passing extra query parameters such as finalize.
func (e *Resource) CreateWithQueryContext(ctx context.Context, body, query Params) (Record, error) {
	if err := e.require(C, "create"); err != nil {
		return nil, err
	}
	if body != nil {
		body = body.Clone(metaFields...)
	}
	return Request[Record](ctx, e.self(), http.MethodPost, e.GetResourcePath(), query, body)
}

// UpdateWithContext replaces the resource identified by id.
// Server owned fields and client side meta keys are stripped from data and the
// validated version is attached.
// Version conflicts are returned as *VersionConflictError.
func (e *Resource) UpdateWithContext(ctx context.Context, id any, data Params, version any) (Record, error) {
	if err := e.require(U, "update"); err != nil {
		return nil, err
	}
	path, err := BuildResourcePathWithID(e.GetResourcePath(), id)
	if err != nil {
		return nil, err
	}
	update, err := PrepareUpdate(data.Clone(slices.Concat(ServerOwnedFields, metaFields)...), version)
	if err != nil {
		return nil, err
	}
	result, err := Request[Record](ctx, e.self(), http.MethodPut, path, nil, update.Body())
	if err != nil {
		return nil, HandleErrorResponse(err)
	}
	return result, nil
}

// DeleteWithContext removes the resource identified by id.
func (e *Resource) DeleteWithContext(ctx context.Context, id any) (Record, error) {
	if err := e.require(D, "delete"); err != nil {
		return nil, err
	}
	path, err := BuildResourcePathWithID(e.GetResourcePath(), id)
	if err != nil {
		return nil, err
	}
	return Request[Record](ctx, e.self(), http.MethodDelete, path, nil, nil)
}

// GetSubResourceWithContext issues a GET on /<resource>/<id>/<segments...>.
func (e *Resource) GetSubResourceWithContext(ctx context.Context, id any, segments ...string) (Record, error) {
	path, err := BuildResourcePathWithID(e.GetResourcePath(), id, segments...)
	if err != nil {
		return nil, err
	}
	return Request[Record](ctx, e.self(), http.MethodGet, path, nil, nil)
}

// DownloadWithContext fetches a binary sub resource such as /<resource>/<id>/file.
func (e *Resource) DownloadWithContext(ctx context.Context, id any, accept string, segments ...string) (*BinaryData, error) {
	path, err := BuildResourcePathWithID(e.GetResourcePath(), id, segments...)
	if err != nil {
		return nil, err
	}
	return RequestBinary(ctx, e.self(), path, nil, accept)
}

// RequestWithContext issues verb on path on behalf of the wrapper embedding e.
// Resource wrappers use it for endpoints outside plain CRUD.
func (e *Resource) RequestWithContext(ctx context.Context, verb, path string, query, body Params, headers ...http.Header) (Record, error) {
	return RequestWithHeaders[Record](ctx, e.self(), verb, path, query, body, headers)
}

func (e *Resource) Get(id any) (Record, error) {
	return e.GetWithContext(e.Rest.GetCtx(), id)
}

func (e *Resource) List(params Params) (RecordSet, error) {
	return e.ListWithContext(e.Rest.GetCtx(), params)
}

func (e *Resource) GetAll(params Params, opts ListOptions) (RecordSet, error) {
	return e.GetAllWithContext(e.Rest.GetCtx(), params, opts)
}

func (e *Resource) Create(body Params) (Record, error) {
	return e.CreateWithContext(e.Rest.GetCtx(), body)
}

func (e *Resource) Update(id any, data Params, version any) (Record, error) {
	return e.UpdateWithContext(e.Rest.GetCtx(), id, data, version)
}

func (e *Resource) Delete(id any) (Record, error) {
	return e.DeleteWithContext(e.Rest.GetCtx(), id)
}

// GetIteratorWithContext creates a new iterator for paginated results using the provided context.
//
// Example usage:
//
//	iter := rest.Contacts.GetIteratorWithContext(ctx, core.Params{"customer": true}, 100)
//	for iter.HasNext() {
//	    records, err := iter.Next()
//	    if err != nil {
//	        break
//	    }
//	    // Process records
//	}
func (e *Resource) GetIteratorWithContext(ctx context.Context, params Params, pageSize int) Iterator {
	return NewResourceIterator(ctx, e.self(), params, pageSize)
}

// GetIterator creates a new iterator for paginated results using the bound REST context.
func (e *Resource) GetIterator(params Params, pageSize int) Iterator {
	return e.GetIteratorWithContext(e.Rest.GetCtx(), params, pageSize)
}

// Lock acquires the resource-level mutex and returns a function to release it.
// This allows for convenient deferring of unlock operations:
//
//	defer resource.Lock(id)()
func (e *Resource) Lock(keys ...any) func() {
	return e.mu.Lock(keys...)
}

func (e *Resource) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "| %s [%s] %s\n", e.resourceType, e.resourceOps, e.GetResourcePath())
	ops := OperationsFor(e.resourceType)
	if len(ops) == 0 {
		return sb.String()
	}
	sb.WriteString("| operations:\n")
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		meta := ops[name]
		if meta.URLPath != "" {
			fmt.Fprintf(&sb, "|    - %s %s [%s]\n", name, meta.HTTPVerb, meta.URLPath)
		} else {
			fmt.Fprintf(&sb, "|    - %s\n", name)
		}
	}
	return sb.String()
}

// BuildResourcePathWithID appends a validated UUID and optional segments to resourcePath.
func BuildResourcePathWithID(resourcePath string, id any, additionalSegments ...string) (string, error) {
	parsed, err := ParseID(id)
	if err != nil {
		return "", err
	}
	path := strings.TrimRight(resourcePath, "/") + "/" + parsed.String()
	for _, segment := range additionalSegments {
		path += "/" + strings.Trim(segment, "/")
	}
	return path, nil
}

// ParseID validates that id is a UUID. Lexware identifies every resource that way.
func ParseID(id any) (uuid.UUID, error) {
	var raw string
	switch v := id.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		raw = strings.TrimSpace(v)
	case fmt.Stringer:
		raw = strings.TrimSpace(v.String())
	case nil:
		return uuid.Nil, &ValidationError{Field: "id", Reason: "id is required"}
	default:
		return uuid.Nil, &ValidationError{Field: "id", Reason: fmt.Sprintf("unsupported id type %T", id)}
	}
	if raw == "" {
		return uuid.Nil, &ValidationError{Field: "id", Reason: "id is required"}
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ValidationError{Field: "id", Reason: fmt.Sprintf("%q is not a valid UUID", raw)}
	}
	return parsed, nil
}

//  ######################################################
//              CRUD FLAGS
//  ######################################################

// ResourceOps is a bitmask representing which CRUD operations are supported
// by a given resource (Create, List, Read, Update, Delete).
type ResourceOps int

const (
	C ResourceOps = 1 << iota // Create permission
	L                         // Read (List) permissions
	R                         // Read (<entry>/<id>) permission
	U                         // Update permission
	D                         // Delete permission
)

// NewResourceOps creates a new bitmask from the provided flags.
// Example: NewResourceOps(R, U) -> Read+Update.
func NewResourceOps(flags ...ResourceOps) ResourceOps {
	var f ResourceOps
	for _, fl := range flags {
		f |= fl
	}
	return f
}

// Has reports whether all given flags are present in the bitmask.
func (ops ResourceOps) Has(flag ResourceOps) bool {
	return ops.has(flag)
}

func (ops ResourceOps) has(flag ResourceOps) bool {
	return ops&flag == flag
}

// String returns a compact string representation of the active flags.
// Example: "CLRU", "LR", "CD", or "-" if no flags are set.
func (ops ResourceOps) String() string {
	if ops == ResourceOps(0) {
		return "-"
	}
	var b strings.Builder
	if ops&C != 0 {
		b.WriteByte('C')
	}
	if ops&L != 0 {
		b.WriteByte('L')
	}
	if ops&R != 0 {
		b.WriteByte('R')
	}
	if ops&U != 0 {
		b.WriteByte('U')
	}
	if ops&D != 0 {
		b.WriteByte('D')
	}
	return b.String()
}

// GetCRUDHintsFromResource extracts CRUD operation hints from a resource wrapper.
//
// Example:
//
//	hints := core.GetCRUDHintsFromResource(rest.Invoices)
//	canCreate := hints.Has(core.C)
func GetCRUDHintsFromResource(resource any) ResourceOps {
	if r, ok := resource.(*Resource); ok {
		return r.resourceOps
	}
	if api, ok := resource.(ResourceAPI); ok {
		return api.Ops()
	}
	val := reflect.ValueOf(resource)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return ResourceOps(0)
	}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if field.Type() == reflect.TypeOf((*Resource)(nil)) && !field.IsNil() {
			return field.Interface().(*Resource).resourceOps
		}
	}
	return ResourceOps(0)
}
