package untyped

import (
	"context"

	"github.com/lexware-office/go-lexware-client/core"
)

type PrintLayout struct {
	*core.Resource
}

// GetDefaultWithContext returns the layout marked as default.
func (p *PrintLayout) GetDefaultWithContext(ctx context.Context) (core.Record, error) {
	layouts, err := p.ListWithContext(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, layout := range layouts {
		if isDefault, _ := core.ToBool(layout["default"]); isDefault {
			return layout, nil
		}
	}
	return nil, &core.NotFoundError{Resource: p.GetResourceType(), Query: "default=true"}
}

func (p *PrintLayout) GetDefault() (core.Record, error) {
	return p.GetDefaultWithContext(p.Rest.GetCtx())
}
