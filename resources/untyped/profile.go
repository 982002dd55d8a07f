package untyped

import (
	"context"
	"net/http"

	"github.com/lexware-office/go-lexware-client/core"
)

// Profile describes the organization the API key belongs to. It has no id.
type Profile struct {
	*core.Resource
}

func (p *Profile) FetchWithContext(ctx context.Context) (core.Record, error) {
	return p.RequestWithContext(ctx, http.MethodGet, p.GetResourcePath(), nil, nil)
}

func (p *Profile) Fetch() (core.Record, error) {
	return p.FetchWithContext(p.Rest.GetCtx())
}
