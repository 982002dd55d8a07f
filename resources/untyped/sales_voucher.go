package untyped

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lexware-office/go-lexware-client/core"
)

// Voucher statuses understood by the voucherlist endpoint and the status helpers.
const (
	StatusDraft    = "draft"
	StatusOpen     = "open"
	StatusOverdue  = "overdue"
	StatusPaid     = "paid"
	StatusPaidOff  = "paidoff"
	StatusVoided   = "voided"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

const voucherListType = "VoucherList"

// SalesVoucher holds the operations shared by invoices, quotations, credit notes,
// delivery notes, order confirmations, down payment invoices and dunnings.
// Wrappers embed it by value.
type SalesVoucher struct {
	*core.Resource
}

// VoucherType is the voucherlist type of the wrapper, e.g. "creditnote".
func (v *SalesVoucher) VoucherType() string {
	return strings.ToLower(v.GetResourceType())
}

// CreateVoucherWithContext creates a draft, or an open voucher when finalize is set.
func (v *SalesVoucher) CreateVoucherWithContext(ctx context.Context, body core.Params, finalize bool) (core.Record, error) {
	var query core.Params
	if finalize {
		query = core.Params{core.QueryFinalize: true}
	}
	return v.CreateWithQueryContext(ctx, body, query)
}

func (v *SalesVoucher) CreateVoucher(body core.Params, finalize bool) (core.Record, error) {
	return v.CreateVoucherWithContext(v.Rest.GetCtx(), body, finalize)
}

// FinalizeWithContext creates the voucher in open state. Lexware has no separate
// finalize call for an existing draft.
func (v *SalesVoucher) FinalizeWithContext(ctx context.Context, body core.Params) (core.Record, error) {
	return v.CreateVoucherWithContext(ctx, body, true)
}

func (v *SalesVoucher) Finalize(body core.Params) (core.Record, error) {
	return v.FinalizeWithContext(v.Rest.GetCtx(), body)
}

// PursueWithContext creates a voucher that follows up precedingID, e.g. an invoice
// from a quotation or a dunning from an invoice.
func (v *SalesVoucher) PursueWithContext(ctx context.Context, precedingID any, body core.Params, finalize bool) (core.Record, error) {
	id, err := core.ParseID(precedingID)
	if err != nil {
		return nil, err
	}
	query := core.Params{core.QueryPrecedingSalesVoucherId: id.String()}
	if finalize {
		query[core.QueryFinalize] = true
	}
	return v.CreateWithQueryContext(ctx, body, query)
}

func (v *SalesVoucher) Pursue(precedingID any, body core.Params, finalize bool) (core.Record, error) {
	return v.PursueWithContext(v.Rest.GetCtx(), precedingID, body, finalize)
}

// DocumentWithContext renders the voucher PDF and returns {documentFileId}.
func (v *SalesVoucher) DocumentWithContext(ctx context.Context, id any) (core.Record, error) {
	return v.GetSubResourceWithContext(ctx, id, core.SegmentDocument)
}

func (v *SalesVoucher) Document(id any) (core.Record, error) {
	return v.DocumentWithContext(v.Rest.GetCtx(), id)
}

// DownloadFileWithContext downloads the rendered voucher. accept selects PDF
// (default) or XML for e-invoices.
func (v *SalesVoucher) DownloadFileWithContext(ctx context.Context, id any, accept string) (*core.BinaryData, error) {
	if accept == "" {
		accept = core.ContentTypePDF
	}
	return v.DownloadWithContext(ctx, id, accept, core.SegmentFile)
}

func (v *SalesVoucher) DownloadFile(id any, accept string) (*core.BinaryData, error) {
	return v.DownloadFileWithContext(v.Rest.GetCtx(), id, accept)
}

// Deeplink returns the web application link to the voucher. No request is made.
func (v *SalesVoucher) Deeplink(id any, edit bool) (string, error) {
	return permalink(v.Resource, id, edit)
}

// ListVouchersWithContext lists vouchers of this type through the voucherlist endpoint.
func (v *SalesVoucher) ListVouchersWithContext(ctx context.Context, params core.Params, opts core.ListOptions) (core.RecordSet, error) {
	list, ok := v.Rest.GetResourceMap()[voucherListType]
	if !ok {
		return nil, &core.UnsupportedOperationError{Resource: v.GetResourceType(), Operation: "getAll"}
	}
	query := params.Clone()
	query[core.QueryVoucherType] = v.VoucherType()
	return list.GetAllWithContext(ctx, query, opts)
}

func (v *SalesVoucher) ListVouchers(params core.Params, opts core.ListOptions) (core.RecordSet, error) {
	return v.ListVouchersWithContext(v.Rest.GetCtx(), params, opts)
}

func (v *SalesVoucher) GetByStatusWithContext(ctx context.Context, status string, opts core.ListOptions) (core.RecordSet, error) {
	return v.ListVouchersWithContext(ctx, core.Params{core.QueryVoucherStatus: status}, opts)
}

func (v *SalesVoucher) GetByStatus(status string, opts core.ListOptions) (core.RecordSet, error) {
	return v.GetByStatusWithContext(v.Rest.GetCtx(), status, opts)
}

// GetByDateRangeWithContext lists vouchers dated within [from, to]. A zero bound is left open.
func (v *SalesVoucher) GetByDateRangeWithContext(ctx context.Context, from, to time.Time, opts core.ListOptions) (core.RecordSet, error) {
	query := core.Params{}
	if !from.IsZero() {
		query["voucherDateFrom"] = from.Format(time.DateOnly)
	}
	if !to.IsZero() {
		query["voucherDateTo"] = to.Format(time.DateOnly)
	}
	return v.ListVouchersWithContext(ctx, query, opts)
}

func (v *SalesVoucher) GetByDateRange(from, to time.Time, opts core.ListOptions) (core.RecordSet, error) {
	return v.GetByDateRangeWithContext(v.Rest.GetCtx(), from, to, opts)
}

func (v *SalesVoucher) GetByContactWithContext(ctx context.Context, contactID any, opts core.ListOptions) (core.RecordSet, error) {
	id, err := core.ParseID(contactID)
	if err != nil {
		return nil, err
	}
	return v.ListVouchersWithContext(ctx, core.Params{"contactId": id.String()}, opts)
}

func (v *SalesVoucher) GetByContact(contactID any, opts core.ListOptions) (core.RecordSet, error) {
	return v.GetByContactWithContext(v.Rest.GetCtx(), contactID, opts)
}

// setStatusWithContext PUTs a new voucherStatus. When version is nil the current
// version is read first. Transitions are not checked.
// Status changes on one voucher are serialized within this client.
func (v *SalesVoucher) setStatusWithContext(ctx context.Context, id any, status string, version any) (core.Record, error) {
	path, err := core.BuildResourcePathWithID(v.GetResourcePath(), id)
	if err != nil {
		return nil, err
	}
	defer v.Lock(path)()
	if version == nil {
		current, err := v.GetWithContext(ctx, id)
		if err != nil {
			return nil, err
		}
		currentVersion, ok := current.RecordVersion()
		if !ok {
			return nil, &core.ValidationError{Field: core.VersionKey, Reason: fmt.Sprintf("%s %v carries no version", v.GetResourceType(), id)}
		}
		version = currentVersion
	}
	update, err := core.PrepareUpdate(core.Params{"voucherStatus": status}, version)
	if err != nil {
		return nil, err
	}
	result, err := v.RequestWithContext(ctx, http.MethodPut, path, nil, update.Body())
	if err != nil {
		return nil, core.HandleErrorResponse(err)
	}
	return result, nil
}

func permalink(r *core.Resource, id any, edit bool) (string, error) {
	parsed, err := core.ParseID(id)
	if err != nil {
		return "", err
	}
	mode := "view"
	if edit {
		mode = "edit"
	}
	appURL := r.Session().GetConfig().AppUrl
	if appURL == "" {
		appURL = core.DefaultAppUrl
	}
	return fmt.Sprintf("%s/permalink/%s/%s/%s", strings.TrimRight(appURL, "/"), strings.Trim(r.GetResourcePath(), "/"), mode, parsed), nil
}

// registerSalesVoucherOperations records the operations every sales voucher offers.
func registerSalesVoucherOperations(resourceType, path string, extra ...string) {
	core.RegisterOperation(resourceType, "document", http.MethodGet, path+"/{id}/document", "Render the voucher document and return its file id")
	core.RegisterOperation(resourceType, "downloadFile", http.MethodGet, path+"/{id}/file", "Download the rendered voucher")
	core.RegisterOperation(resourceType, "deeplink", "", "", "Build the web application link")
	for _, name := range extra {
		switch name {
		case "finalize":
			core.RegisterOperation(resourceType, name, http.MethodPost, path+"?finalize=true", "Create the voucher in open state")
		case "pursue":
			core.RegisterOperation(resourceType, name, http.MethodPost, path+"?precedingSalesVoucherId={id}", "Create a follow-up voucher")
		case "getByStatus":
			core.RegisterOperation(resourceType, name, http.MethodGet, "/voucherlist?voucherType="+strings.ToLower(resourceType), "List vouchers by status")
		}
	}
}
