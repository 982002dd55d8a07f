package untyped

import (
	"context"
	"io"
	"net/http"

	"github.com/lexware-office/go-lexware-client/core"
)

// VoucherList is the read only index over all vouchers. The endpoint rejects
// requests without voucherType or voucherStatus, so both are always sent,
// as empty strings when the caller set neither.
type VoucherList struct {
	*core.Resource
}

// BeforeRequest adds the mandatory filters to every voucherlist request,
// including the page requests of iterators.
func (v *VoucherList) BeforeRequest(_ context.Context, r *http.Request, _, _ string, _ io.Reader) error {
	query := r.URL.Query()
	changed := false
	for _, key := range []string{core.QueryVoucherType, core.QueryVoucherStatus} {
		if _, ok := query[key]; !ok {
			query.Set(key, "")
			changed = true
		}
	}
	if changed {
		r.URL.RawQuery = query.Encode()
	}
	return nil
}

// FilterWithContext lists vouchers by type and status. Extra filters such as
// contactId or voucherDateFrom are passed through.
func (v *VoucherList) FilterWithContext(ctx context.Context, voucherType, voucherStatus string, extra core.Params, opts core.ListOptions) (core.RecordSet, error) {
	query := extra.Clone()
	query[core.QueryVoucherType] = voucherType
	query[core.QueryVoucherStatus] = voucherStatus
	return v.GetAllWithContext(ctx, query, opts)
}

func (v *VoucherList) Filter(voucherType, voucherStatus string, extra core.Params, opts core.ListOptions) (core.RecordSet, error) {
	return v.FilterWithContext(v.Rest.GetCtx(), voucherType, voucherStatus, extra, opts)
}
