package untyped

import (
	"context"

	"github.com/lexware-office/go-lexware-client/core"
)

// Dunning can only be created as a follow-up of an invoice.
type Dunning struct {
	SalesVoucher
}

func init() {
	registerSalesVoucherOperations("Dunning", "/dunnings", "pursue")
}

// CreateWithContext is not available for dunnings without a preceding invoice.
func (d *Dunning) CreateWithContext(ctx context.Context, body core.Params) (core.Record, error) {
	return nil, &core.UnsupportedOperationError{Resource: d.GetResourceType(), Operation: "create without precedingSalesVoucherId"}
}

func (d *Dunning) Create(body core.Params) (core.Record, error) {
	return d.CreateWithContext(d.Rest.GetCtx(), body)
}
