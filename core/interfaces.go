package core

import (
	"context"
	"io"
	"net/http"
)

// ResourceAPI defines the standard operations on a Lexware resource.
type ResourceAPI interface {
	Session() RESTSession
	GetResourceType() string
	GetResourcePath() string
	Ops() ResourceOps

	Get(id any) (Record, error)
	List(Params) (RecordSet, error)
	GetAll(Params, ListOptions) (RecordSet, error)
	Create(Params) (Record, error)
	Update(id any, data Params, version any) (Record, error)
	Delete(id any) (Record, error)
	// Resource-level mutex lock for concurrent access control
	Lock(...any) func()
}

type ResourceAPIWithContext interface {
	ResourceAPI
	GetWithContext(context.Context, any) (Record, error)
	ListWithContext(context.Context, Params) (RecordSet, error)
	GetAllWithContext(context.Context, Params, ListOptions) (RecordSet, error)
	CreateWithContext(context.Context, Params) (Record, error)
	UpdateWithContext(context.Context, any, Params, any) (Record, error)
	DeleteWithContext(context.Context, any) (Record, error)
	GetIteratorWithContext(context.Context, Params, int) Iterator
}

// InterceptableResourceAPI combines request interception with resource behavior.
type InterceptableResourceAPI interface {
	RequestInterceptor
	ResourceAPIWithContext
}

// RequestInterceptor defines a middleware-style interface for intercepting API requests
// and responses. Resources shadow BeforeRequest/AfterRequest to inspect or mutate traffic.
type RequestInterceptor interface {
	// BeforeRequest is invoked prior to sending the API request.
	//
	// Parameters:
	//   - ctx: The request context, useful for deadlines, tracing, or cancellation.
	//   - req: Request object
	//   - verb: The HTTP method (e.g., GET, POST, PUT).
	//   - url: The URL being accessed (including query params)
	//   - body: The request body as an io.Reader, typically containing JSON data.
	BeforeRequest(context.Context, *http.Request, string, string, io.Reader) error

	// AfterRequest is invoked after the API response is received.
	//
	// The input and output are of type Renderable: Record, RecordSet or *BinaryData.
	AfterRequest(context.Context, Renderable) (Renderable, error)

	// doBeforeRequest No need to implement on resources. For internal usage only
	doBeforeRequest(context.Context, *http.Request, string, string, io.Reader) error

	// doAfterRequest No need to implement on resources. For internal usage only
	doAfterRequest(context.Context, Renderable) (Renderable, error)
}

// LexwareRest is the container every resource points back to.
type LexwareRest interface {
	GetSession() RESTSession
	GetResourceMap() map[string]ResourceAPIWithContext
	GetCtx() context.Context
	SetCtx(context.Context)
}
