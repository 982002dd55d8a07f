package transform

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lexware-office/go-lexware-client/core"
)

// Bookkeeping voucher types of /v1/vouchers.
var bookkeepingVoucherTypes = []string{"salesinvoice", "salescreditnote", "purchaseinvoice", "purchasecreditnote"}

type voucherItemInput struct {
	Amount         *decimal.Decimal `json:"amount"`
	TaxAmount      *decimal.Decimal `json:"taxAmount"`
	TaxRatePercent *decimal.Decimal `json:"taxRatePercent"`
	CategoryID     string           `json:"categoryId"`
}

type bookkeepingInput struct {
	Type                 string             `json:"type"`
	VoucherNumber        string             `json:"voucherNumber"`
	VoucherDate          string             `json:"voucherDate"`
	ShippingDate         string             `json:"shippingDate"`
	DueDate              string             `json:"dueDate"`
	TotalGrossAmount     *decimal.Decimal   `json:"totalGrossAmount"`
	TotalTaxAmount       *decimal.Decimal   `json:"totalTaxAmount"`
	TaxType              string             `json:"taxType"`
	UseCollectiveContact *bool              `json:"useCollectiveContact"`
	ContactID            string             `json:"contactId"`
	Remark               string             `json:"remark"`
	VoucherItems         []voucherItemInput `json:"voucherItems"`
}

// TransformBookkeepingVoucherData builds a body for /v1/vouchers.
// Without a contactId the collective contact is used. Missing totals are
// derived from the voucher items.
func TransformBookkeepingVoucherData(fields core.Params) (core.Params, error) {
	fields, err := listField(fields, "voucherItems")
	if err != nil {
		return nil, err
	}
	var in bookkeepingInput
	if err := decode(fields, &in); err != nil {
		return nil, err
	}
	voucherType := strings.ToLower(strings.TrimSpace(in.Type))
	if voucherType == "" {
		voucherType = "salesinvoice"
	}
	if !containsString(bookkeepingVoucherTypes, voucherType) {
		return nil, &core.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown voucher type %q", in.Type)}
	}
	taxType := strings.TrimSpace(in.TaxType)
	if taxType == "" {
		taxType = "gross"
	}

	voucherDate, err := normalizeDate(in.VoucherDate, true)
	if err != nil {
		return nil, err
	}
	body := core.Params{
		"type":        voucherType,
		"voucherDate": voucherDate,
		"taxType":     taxType,
	}
	setIf(body, "voucherNumber", in.VoucherNumber)
	setIf(body, "remark", in.Remark)
	for key, value := range map[string]string{"shippingDate": in.ShippingDate, "dueDate": in.DueDate} {
		date, err := normalizeDate(value, false)
		if err != nil {
			return nil, err
		}
		setIf(body, key, date)
	}

	if id := strings.TrimSpace(in.ContactID); id != "" {
		body["contactId"] = id
		body["useCollectiveContact"] = false
	} else {
		body["useCollectiveContact"] = in.UseCollectiveContact == nil || *in.UseCollectiveContact
	}

	totalGross, totalTax := decimal.Zero, decimal.Zero
	items := make([]any, 0, len(in.VoucherItems))
	for _, vi := range in.VoucherItems {
		amount := decimal.Zero
		if vi.Amount != nil {
			amount = *vi.Amount
		}
		rate := decimal.NewFromInt(DefaultTaxRate)
		if vi.TaxRatePercent != nil {
			rate = *vi.TaxRatePercent
		}
		var tax decimal.Decimal
		if vi.TaxAmount != nil {
			tax = *vi.TaxAmount
		} else {
			tax = includedTax(amount, rate, taxType)
		}
		item := map[string]any{
			"amount":         money(amount),
			"taxAmount":      money(tax),
			"taxRatePercent": money(rate),
		}
		setIf(item, "categoryId", vi.CategoryID)
		items = append(items, item)
		if taxType == "net" {
			totalGross = totalGross.Add(amount).Add(tax)
		} else {
			totalGross = totalGross.Add(amount)
		}
		totalTax = totalTax.Add(tax)
	}
	body["voucherItems"] = items
	if in.TotalGrossAmount != nil {
		totalGross = *in.TotalGrossAmount
	}
	if in.TotalTaxAmount != nil {
		totalTax = *in.TotalTaxAmount
	}
	body["totalGrossAmount"] = money(totalGross)
	body["totalTaxAmount"] = money(totalTax)
	return body, nil
}

// includedTax returns the tax portion of amount at rate percent.
// Gross amounts contain the tax, net amounts do not.
func includedTax(amount, rate decimal.Decimal, taxType string) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	if taxType == "net" {
		return amount.Mul(rate).Div(hundred).Round(2)
	}
	return amount.Mul(rate).Div(hundred.Add(rate)).Round(2)
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
