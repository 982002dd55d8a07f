package rest

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexware-office/go-lexware-client/core"
)

func TestNewLexwareRest_WiresEveryResource(t *testing.T) {
	rest, _ := newTestLexwareRest(t)

	assert.Len(t, rest.GetResourceMap(), 20)
	tests := []struct {
		resource core.ResourceAPIWithContext
		typ      string
		path     string
		ops      string
	}{
		{rest.Articles, "Article", "/articles", "CLRUD"},
		{rest.Contacts, "Contact", "/contacts", "CLRU"},
		{rest.Invoices, "Invoice", "/invoices", "CR"},
		{rest.CreditNotes, "CreditNote", "/credit-notes", "CR"},
		{rest.DownPaymentInvoices, "DownPaymentInvoice", "/down-payment-invoices", "R"},
		{rest.EventSubscriptions, "EventSubscription", "/event-subscriptions", "CLRD"},
		{rest.Vouchers, "Voucher", "/vouchers", "CRU"},
		{rest.VoucherList, "VoucherList", "/voucherlist", "L"},
		{rest.Profile, "Profile", "/profile", "R"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			require.NotNil(t, tt.resource)
			assert.Equal(t, tt.typ, tt.resource.GetResourceType())
			assert.Equal(t, tt.path, tt.resource.GetResourcePath())
			assert.Equal(t, tt.ops, tt.resource.Ops().String())
			assert.Same(t, tt.resource, rest.GetResourceMap()[tt.typ])
		})
	}
}

func TestNewLexwareRest_InvalidConfig(t *testing.T) {
	_, err := NewLexwareRest(&core.Config{ResourceUrl: "https://api.lexware.io"})
	assert.Error(t, err)
}

func TestLexwareRest_Context(t *testing.T) {
	rest, _ := newTestLexwareRest(t)
	assert.Equal(t, context.Background(), rest.GetCtx())

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	rest.SetCtx(ctx)
	assert.Equal(t, ctx, rest.GetCtx())
}

func TestVoucherList_AlwaysSendsMandatoryFilters(t *testing.T) {
	rest, stub := newTestLexwareRest(t)
	stub.on(http.MethodGet, "/v1/voucherlist", http.StatusOK, `{"content":[],"last":true,"number":0}`)

	_, err := rest.VoucherList.GetAll(nil, core.ListOptions{})
	require.NoError(t, err)
	req := stub.last(t)
	assert.Equal(t, []string{""}, req.Query["voucherType"])
	assert.Equal(t, []string{""}, req.Query["voucherStatus"])

	_, err = rest.VoucherList.Filter("invoice", "open", core.Params{"contactId": contactID}, core.ListOptions{})
	require.NoError(t, err)
	req = stub.last(t)
	assert.Equal(t, "invoice", req.Query.Get("voucherType"))
	assert.Equal(t, "open", req.Query.Get("voucherStatus"))
	assert.Equal(t, contactID, req.Query.Get("contactId"))
}

func TestSalesVoucher_Operations(t *testing.T) {
	rest, stub := newTestLexwareRest(t)

	_, err := rest.Invoices.Finalize(core.Params{"voucherDate": "x"})
	require.NoError(t, err)
	req := stub.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1/invoices", req.Path)
	assert.Equal(t, "true", req.Query.Get("finalize"))

	_, err = rest.Invoices.Pursue(contactID, core.Params{}, false)
	require.NoError(t, err)
	req = stub.last(t)
	assert.Equal(t, contactID, req.Query.Get("precedingSalesVoucherId"))
	assert.Empty(t, req.Query.Get("finalize"))

	stub.on(http.MethodGet, "/v1/quotations/"+invoiceID+"/document", http.StatusOK, `{"documentFileId":"`+fileID+`"}`)
	doc, err := rest.Quotations.Document(invoiceID)
	require.NoError(t, err)
	assert.Equal(t, fileID, doc["documentFileId"])

	stub.onFile("/v1/credit-notes/"+invoiceID+"/file", core.ContentTypePDF, "%PDF-1.4")
	file, err := rest.CreditNotes.DownloadFile(invoiceID, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), file.Content)
	assert.Equal(t, core.ContentTypePDF, stub.last(t).Accept)

	link, err := rest.Invoices.Deeplink(invoiceID, false)
	require.NoError(t, err)
	assert.Equal(t, "https://app.lexware.de/permalink/invoices/view/"+invoiceID, link)
	link, err = rest.DeliveryNotes.Deeplink(invoiceID, true)
	require.NoError(t, err)
	assert.Equal(t, "https://app.lexware.de/permalink/delivery-notes/edit/"+invoiceID, link)

	_, err = rest.DownPaymentInvoices.Finalize(core.Params{})
	assert.True(t, core.IsUnsupportedOperationErr(err))
	_, err = rest.Dunnings.Create(core.Params{})
	assert.True(t, core.IsUnsupportedOperationErr(err))
}

func TestSalesVoucher_StatusHelpers(t *testing.T) {
	rest, stub := newTestLexwareRest(t)
	stub.on(http.MethodGet, "/v1/invoices/"+invoiceID, http.StatusOK, `{"id":"`+invoiceID+`","version":4}`)

	_, err := rest.Invoices.MarkAsPaid(invoiceID, nil)
	require.NoError(t, err)
	req := stub.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, map[string]any{"voucherStatus": "paid", "version": float64(4)}, req.Body)

	_, err = rest.Quotations.Cancel(invoiceID, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"voucherStatus": "rejected", "version": float64(2)}, stub.last(t).Body)

	_, err = rest.Invoices.Void(invoiceID, -1)
	assert.True(t, core.IsValidationErr(err))
}

func TestSalesVoucher_Listing(t *testing.T) {
	rest, stub := newTestLexwareRest(t)
	stub.on(http.MethodGet, "/v1/voucherlist", http.StatusOK, `{"content":[{"id":"`+invoiceID+`"}],"last":true,"number":0}`)

	result, err := rest.Invoices.GetOverdue(core.ListOptions{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	req := stub.last(t)
	assert.Equal(t, "invoice", req.Query.Get("voucherType"))
	assert.Equal(t, "overdue", req.Query.Get("voucherStatus"))

	_, err = rest.CreditNotes.GetByContact(contactID, core.ListOptions{})
	require.NoError(t, err)
	req = stub.last(t)
	assert.Equal(t, "creditnote", req.Query.Get("voucherType"))
	assert.Equal(t, contactID, req.Query.Get("contactId"))
	assert.Equal(t, []string{""}, req.Query["voucherStatus"])
}

func TestVoucher_Files(t *testing.T) {
	rest, stub := newTestLexwareRest(t)

	_, err := rest.Vouchers.UploadFile(invoiceID, core.FileData{Filename: "beleg.pdf", ContentType: core.ContentTypePDF, Content: []byte("%PDF")})
	require.NoError(t, err)
	req := stub.last(t)
	assert.Equal(t, "/v1/vouchers/"+invoiceID+"/files", req.Path)
	assert.Contains(t, req.ContentType, "multipart/form-data; boundary=")
	assert.Contains(t, string(req.Raw), `filename="beleg.pdf"`)

	stub.on(http.MethodGet, "/v1/vouchers/"+invoiceID, http.StatusOK, `{"id":"`+invoiceID+`","files":["`+fileID+`"]}`)
	files, err := rest.Vouchers.GetFiles(invoiceID)
	require.NoError(t, err)
	assert.Equal(t, core.RecordSet{{"fileId": fileID}}, stripKeys(files))

	_, err = rest.Vouchers.DeleteFile(invoiceID, fileID)
	require.NoError(t, err)
	req = stub.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/v1/vouchers/"+invoiceID+"/files/"+fileID, req.Path)

	_, err = rest.Vouchers.UploadFile(invoiceID, core.FileData{})
	assert.True(t, core.IsValidationErr(err))
}

func TestLookups(t *testing.T) {
	rest, stub := newTestLexwareRest(t)
	stub.on(http.MethodGet, "/v1/posting-categories", http.StatusOK,
		`[{"id":"a","type":"income"},{"id":"b","type":"outgo"},{"id":"c","type":"income"}]`)
	stub.on(http.MethodGet, "/v1/print-layouts", http.StatusOK,
		`[{"id":"l1","default":false},{"id":"l2","default":true}]`)
	stub.on(http.MethodGet, "/v1/countries", http.StatusOK,
		`[{"countryCode":"DE","taxClassification":"de"},{"countryCode":"AT","taxClassification":"intraCommunity"}]`)
	stub.on(http.MethodGet, "/v1/profile", http.StatusOK, `{"organizationId":"o","companyName":"Acme"}`)

	ids, err := rest.PostingCategories.GetCategoryIds("income")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)

	layout, err := rest.PrintLayouts.GetDefault()
	require.NoError(t, err)
	assert.Equal(t, "l2", layout.RecordID())

	countries, err := rest.Countries.GetByTaxClassification("intraCommunity")
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "AT", countries[0]["countryCode"])

	profile, err := rest.Profile.Fetch()
	require.NoError(t, err)
	assert.Equal(t, "Acme", profile["companyName"])
}

func stripKeys(rs core.RecordSet) core.RecordSet {
	out := make(core.RecordSet, len(rs))
	for i, r := range rs {
		out[i] = core.StripMeta(r)
	}
	return out
}
