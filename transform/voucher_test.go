package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexware-office/go-lexware-client/core"
)

func TestNormalizeVoucherType(t *testing.T) {
	for _, in := range []string{"creditNote", "credit-note", "credit_note", "CreditNote", " credit note "} {
		vt, ok := NormalizeVoucherType(in)
		assert.True(t, ok, in)
		assert.Equal(t, VoucherCreditNote, vt, in)
	}
	_, ok := NormalizeVoucherType("receipt")
	assert.False(t, ok)
}

func TestTransformVoucherData_InvoiceDefaults(t *testing.T) {
	at := fixedNow(t)
	body, err := TransformVoucherData("invoice", core.Params{
		"contactId": "e9066f04-8cc7-4616-93f8-ac9ecc8479c8",
		"lineItems": []any{
			map[string]any{"name": "Beratung", "netAmount": "100,005"},
		},
		"paymentTermDuration": "14",
		"buyerReference":      "04011000-12345-34",
	})
	require.NoError(t, err)

	assert.Equal(t, FormatDate(at), body["voucherDate"])
	assert.Equal(t, map[string]any{"contactId": "e9066f04-8cc7-4616-93f8-ac9ecc8479c8"}, body["address"])
	assert.Equal(t, map[string]any{"currency": "EUR"}, body["totalPrice"])
	assert.Equal(t, map[string]any{"taxType": "net"}, body["taxConditions"])
	assert.Equal(t, map[string]any{"shippingType": "delivery", "shippingDate": FormatDate(at)}, body["shippingConditions"])
	assert.Equal(t, map[string]any{"paymentTermDuration": 14}, body["paymentConditions"])
	assert.Equal(t, map[string]any{"buyerReference": "04011000-12345-34"}, body["xRechnung"])

	items := body["lineItems"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{
		"type":     "custom",
		"name":     "Beratung",
		"quantity": 1.0,
		"unitName": "piece",
		"unitPrice": map[string]any{
			"currency":          "EUR",
			"taxRatePercentage": 19.0,
			"netAmount":         100.01,
		},
	}, items[0])
}

func TestTransformVoucherData_LineItemVariants(t *testing.T) {
	fixedNow(t)
	body, err := TransformVoucherData("invoice", core.Params{
		"taxType": "gross",
		"lineItems": `[
			{"id":"97b98491-e953-4dc9-97a9-ae437a8052b4","quantity":2,"grossAmount":11.9,"taxRatePercentage":7},
			{"type":"text","name":"Hinweis","description":"Danke"},
			{"name":"Rabattiert","unitPrice":{"netAmount":50},"discountPercentage":10}
		]`,
	})
	require.NoError(t, err)
	items := body["lineItems"].([]any)
	require.Len(t, items, 3)

	material := items[0].(map[string]any)
	assert.Equal(t, "material", material["type"])
	assert.Equal(t, 2.0, material["quantity"])
	assert.Equal(t, map[string]any{"currency": "EUR", "taxRatePercentage": 7.0, "grossAmount": 11.9}, material["unitPrice"])

	assert.Equal(t, map[string]any{"type": "text", "name": "Hinweis", "description": "Danke"}, items[1])

	discounted := items[2].(map[string]any)
	assert.Equal(t, 10.0, discounted["discountPercentage"])
	assert.Equal(t, 50.0, discounted["unitPrice"].(map[string]any)["netAmount"])
}

func TestTransformVoucherData_PerType(t *testing.T) {
	fixedNow(t)
	fields := core.Params{
		"name":             "Acme GmbH",
		"city":             "Hamburg",
		"expirationDate":   "2026-04-30",
		"deliveryTerms":    "frei Haus",
		"paymentTermLabel": "10 Tage",
		"buyerReference":   "ref",
	}
	tests := []struct {
		voucherType string
		present     []string
		absent      []string
	}{
		{"invoice", []string{"shippingConditions", "paymentConditions", "xRechnung"}, []string{"expirationDate", "deliveryTerms"}},
		{"quotation", []string{"expirationDate", "paymentConditions"}, []string{"shippingConditions", "xRechnung"}},
		{"credit-note", []string{"shippingConditions"}, []string{"paymentConditions", "xRechnung"}},
		{"deliveryNote", []string{"shippingConditions"}, []string{"paymentConditions"}},
		{"orderConfirmation", []string{"deliveryTerms", "paymentConditions"}, []string{"xRechnung"}},
		{"downPaymentInvoice", []string{"xRechnung"}, []string{"deliveryTerms"}},
	}
	for _, tt := range tests {
		t.Run(tt.voucherType, func(t *testing.T) {
			body, err := TransformVoucherData(tt.voucherType, fields)
			require.NoError(t, err)
			for _, key := range tt.present {
				assert.Contains(t, body, key)
			}
			for _, key := range tt.absent {
				assert.NotContains(t, body, key)
			}
			assert.Equal(t, map[string]any{"name": "Acme GmbH", "city": "Hamburg", "countryCode": "DE"}, body["address"])
		})
	}
}

func TestTransformVoucherData_Errors(t *testing.T) {
	_, err := TransformVoucherData("receipt", core.Params{})
	assert.True(t, core.IsValidationErr(err))

	_, err = TransformVoucherData("invoice", core.Params{"voucherDate": "yesterday"})
	assert.True(t, core.IsValidationErr(err))

	_, err = TransformVoucherData("invoice", core.Params{"lineItems": []any{map[string]any{"quantity": -1}}})
	assert.True(t, core.IsValidationErr(err))
	assert.Contains(t, err.Error(), "line item 0")
}

func TestTransformDunningData(t *testing.T) {
	fixedNow(t)
	body, err := TransformDunningData(core.Params{"title": "Mahnung", "lineItems": []any{map[string]any{"name": "Gebühr", "netAmount": 5}}})
	require.NoError(t, err)
	assert.NotContains(t, body, "address")
	assert.NotContains(t, body, "shippingConditions")
	assert.NotContains(t, body, "paymentConditions")
	assert.Equal(t, "Mahnung", body["title"])

	body, err = TransformDunningData(core.Params{"contactId": "e9066f04-8cc7-4616-93f8-ac9ecc8479c8"})
	require.NoError(t, err)
	assert.Contains(t, body, "address")
}
