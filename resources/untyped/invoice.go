package untyped

import (
	"context"
	"net/http"

	"github.com/lexware-office/go-lexware-client/core"
)

type Invoice struct {
	SalesVoucher
}

func init() {
	registerSalesVoucherOperations("Invoice", "/invoices", "finalize", "pursue", "getByStatus")
	core.RegisterOperation("Invoice", "getOverdue", http.MethodGet, "/voucherlist?voucherType=invoice&voucherStatus=overdue", "List overdue invoices")
	core.RegisterOperation("Invoice", "markAsPaid", http.MethodPut, "/invoices/{id}", "Set the status to paid")
	core.RegisterOperation("Invoice", "void", http.MethodPut, "/invoices/{id}", "Set the status to voided")
}

func (i *Invoice) GetOverdueWithContext(ctx context.Context, opts core.ListOptions) (core.RecordSet, error) {
	return i.GetByStatusWithContext(ctx, StatusOverdue, opts)
}

func (i *Invoice) GetOverdue(opts core.ListOptions) (core.RecordSet, error) {
	return i.GetOverdueWithContext(i.Rest.GetCtx(), opts)
}

// MarkAsPaidWithContext sets the invoice status to paid. A nil version reads the current one.
func (i *Invoice) MarkAsPaidWithContext(ctx context.Context, id, version any) (core.Record, error) {
	return i.setStatusWithContext(ctx, id, StatusPaid, version)
}

func (i *Invoice) MarkAsPaid(id, version any) (core.Record, error) {
	return i.MarkAsPaidWithContext(i.Rest.GetCtx(), id, version)
}

func (i *Invoice) VoidWithContext(ctx context.Context, id, version any) (core.Record, error) {
	return i.setStatusWithContext(ctx, id, StatusVoided, version)
}

func (i *Invoice) Void(id, version any) (core.Record, error) {
	return i.VoidWithContext(i.Rest.GetCtx(), id, version)
}
