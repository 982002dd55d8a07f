package untyped

import (
	"context"
	"net/http"

	"github.com/lexware-office/go-lexware-client/core"
)

type Quotation struct {
	SalesVoucher
}

func init() {
	registerSalesVoucherOperations("Quotation", "/quotations", "finalize", "pursue", "getByStatus")
	core.RegisterOperation("Quotation", "confirm", http.MethodPut, "/quotations/{id}", "Set the status to accepted")
	core.RegisterOperation("Quotation", "cancel", http.MethodPut, "/quotations/{id}", "Set the status to rejected")
}

// ConfirmWithContext marks the quotation as accepted by the customer.
func (q *Quotation) ConfirmWithContext(ctx context.Context, id, version any) (core.Record, error) {
	return q.setStatusWithContext(ctx, id, StatusAccepted, version)
}

func (q *Quotation) Confirm(id, version any) (core.Record, error) {
	return q.ConfirmWithContext(q.Rest.GetCtx(), id, version)
}

func (q *Quotation) CancelWithContext(ctx context.Context, id, version any) (core.Record, error) {
	return q.setStatusWithContext(ctx, id, StatusRejected, version)
}

func (q *Quotation) Cancel(id, version any) (core.Record, error) {
	return q.CancelWithContext(q.Rest.GetCtx(), id, version)
}
