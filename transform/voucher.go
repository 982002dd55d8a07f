package transform

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lexware-office/go-lexware-client/core"
)

// Sales voucher types accepted by TransformVoucherData.
const (
	VoucherInvoice            = "invoice"
	VoucherQuotation          = "quotation"
	VoucherCreditNote         = "creditNote"
	VoucherDeliveryNote       = "deliveryNote"
	VoucherOrderConfirmation  = "orderConfirmation"
	VoucherDownPaymentInvoice = "downPaymentInvoice"
	VoucherDunning            = "dunning"
)

var salesVoucherTypes = map[string]string{
	"invoice":            VoucherInvoice,
	"quotation":          VoucherQuotation,
	"creditnote":         VoucherCreditNote,
	"deliverynote":       VoucherDeliveryNote,
	"orderconfirmation":  VoucherOrderConfirmation,
	"downpaymentinvoice": VoucherDownPaymentInvoice,
	"dunning":            VoucherDunning,
}

// NormalizeVoucherType maps "credit-note", "credit_note" or "CreditNote" to "creditNote".
func NormalizeVoucherType(voucherType string) (string, bool) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(voucherType)))
	vt, ok := salesVoucherTypes[key]
	return vt, ok
}

type unitPriceInput struct {
	Currency          string           `json:"currency"`
	NetAmount         *decimal.Decimal `json:"netAmount"`
	GrossAmount       *decimal.Decimal `json:"grossAmount"`
	TaxRatePercentage *decimal.Decimal `json:"taxRatePercentage"`
}

type lineItemInput struct {
	ID                 string           `json:"id"`
	Type               string           `json:"type"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Quantity           *decimal.Decimal `json:"quantity"`
	UnitName           string           `json:"unitName"`
	UnitPrice          *unitPriceInput  `json:"unitPrice"`
	NetAmount          *decimal.Decimal `json:"netAmount"`
	GrossAmount        *decimal.Decimal `json:"grossAmount"`
	TaxRatePercentage  *decimal.Decimal `json:"taxRatePercentage"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
}

type voucherInput struct {
	VoucherDate  string `json:"voucherDate"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	Remark       string `json:"remark"`

	ContactID   string `json:"contactId"`
	Name        string `json:"name"`
	Supplement  string `json:"supplement"`
	Street      string `json:"street"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`

	LineItems []lineItemInput `json:"lineItems"`
	Currency  string          `json:"currency"`
	TaxType   string          `json:"taxType"`

	ShippingDate    string `json:"shippingDate"`
	ShippingEndDate string `json:"shippingEndDate"`
	ShippingType    string `json:"shippingType"`

	PaymentTermLabel    string           `json:"paymentTermLabel"`
	PaymentTermDuration *int             `json:"paymentTermDuration"`
	DiscountPercentage  *decimal.Decimal `json:"discountPercentage"`
	DiscountRange       *int             `json:"discountRange"`

	ExpirationDate string `json:"expirationDate"`
	DeliveryTerms  string `json:"deliveryTerms"`

	BuyerReference         string `json:"buyerReference"`
	VendorNumberAtCustomer string `json:"vendorNumberAtCustomer"`
}

// TransformVoucherData builds the body of a sales voucher: invoice, quotation,
// credit note, delivery note, order confirmation, down payment invoice or dunning.
// Line items default to type "custom", quantity 1, unit "piece", currency EUR
// and a tax rate of 19 percent. The tax type defaults to "net".
func TransformVoucherData(voucherType string, fields core.Params) (core.Params, error) {
	vt, ok := NormalizeVoucherType(voucherType)
	if !ok {
		return nil, &core.ValidationError{Field: "voucherType", Reason: fmt.Sprintf("unknown voucher type %q", voucherType)}
	}
	fields, err := listField(fields, "lineItems")
	if err != nil {
		return nil, err
	}
	var in voucherInput
	if err := decode(fields, &in); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	taxType := strings.TrimSpace(in.TaxType)
	if taxType == "" {
		taxType = DefaultTaxType
	}

	voucherDate, err := normalizeDate(in.VoucherDate, true)
	if err != nil {
		return nil, err
	}
	body := core.Params{
		"voucherDate":   voucherDate,
		"address":       voucherAddress(in),
		"totalPrice":    map[string]any{"currency": currency},
		"taxConditions": map[string]any{"taxType": taxType},
	}
	lineItems := make([]any, 0, len(in.LineItems))
	for i, item := range in.LineItems {
		li, err := lineItem(item, currency, taxType)
		if err != nil {
			return nil, fmt.Errorf("line item %d: %w", i, err)
		}
		lineItems = append(lineItems, li)
	}
	body["lineItems"] = lineItems

	setIf(body, "title", in.Title)
	setIf(body, "introduction", in.Introduction)
	setIf(body, "remark", in.Remark)

	if vt != VoucherQuotation && vt != VoucherDunning {
		shipping, err := shippingConditions(in)
		if err != nil {
			return nil, err
		}
		body["shippingConditions"] = shipping
	}
	if vt != VoucherDeliveryNote && vt != VoucherCreditNote && vt != VoucherDunning {
		if payment := paymentConditions(in); payment != nil {
			body["paymentConditions"] = payment
		}
	}
	switch vt {
	case VoucherQuotation:
		expiration, err := normalizeDate(in.ExpirationDate, false)
		if err != nil {
			return nil, err
		}
		setIf(body, "expirationDate", expiration)
	case VoucherOrderConfirmation:
		setIf(body, "deliveryTerms", in.DeliveryTerms)
	case VoucherInvoice, VoucherDownPaymentInvoice:
		if in.BuyerReference != "" || in.VendorNumberAtCustomer != "" {
			xr := map[string]any{}
			setIf(xr, "buyerReference", in.BuyerReference)
			setIf(xr, "vendorNumberAtCustomer", in.VendorNumberAtCustomer)
			body["xRechnung"] = xr
		}
	}
	return body, nil
}

func voucherAddress(in voucherInput) map[string]any {
	if id := strings.TrimSpace(in.ContactID); id != "" {
		addr := map[string]any{"contactId": id}
		setIf(addr, "name", in.Name)
		return addr
	}
	addr := address(in.Supplement, in.Street, in.Zip, in.City, in.CountryCode)
	setIf(addr, "name", in.Name)
	return addr
}

func lineItem(in lineItemInput, currency, taxType string) (map[string]any, error) {
	itemType := strings.TrimSpace(in.Type)
	if itemType == "" {
		itemType = DefaultLineItemType
		if in.ID != "" {
			itemType = "material"
		}
	}
	item := map[string]any{"type": itemType}
	setIf(item, "id", in.ID)
	setIf(item, "name", in.Name)
	setIf(item, "description", in.Description)
	if itemType == "text" {
		return item, nil
	}

	quantity := decimal.NewFromInt(1)
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if quantity.IsNegative() {
		return nil, &core.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	item["quantity"] = quantity.Round(4).InexactFloat64()
	unitName := strings.TrimSpace(in.UnitName)
	if unitName == "" {
		unitName = DefaultUnitName
	}
	item["unitName"] = unitName

	// Prices may be given flat on the item or nested under unitPrice.
	price := in.UnitPrice
	if price == nil {
		price = &unitPriceInput{}
	}
	if price.NetAmount == nil {
		price.NetAmount = in.NetAmount
	}
	if price.GrossAmount == nil {
		price.GrossAmount = in.GrossAmount
	}
	if price.TaxRatePercentage == nil {
		price.TaxRatePercentage = in.TaxRatePercentage
	}
	unitCurrency := strings.ToUpper(strings.TrimSpace(price.Currency))
	if unitCurrency == "" {
		unitCurrency = currency
	}
	taxRate := decimal.NewFromInt(DefaultTaxRate)
	if price.TaxRatePercentage != nil {
		taxRate = *price.TaxRatePercentage
	}
	unitPrice := map[string]any{
		"currency":          unitCurrency,
		"taxRatePercentage": money(taxRate),
	}
	net, hasNet := moneyPtr(price.NetAmount)
	gross, hasGross := moneyPtr(price.GrossAmount)
	switch {
	case taxType == "gross" && hasGross:
		unitPrice["grossAmount"] = gross
	case hasNet:
		unitPrice["netAmount"] = net
	case hasGross:
		unitPrice["grossAmount"] = gross
	default:
		unitPrice["netAmount"] = 0.0
	}
	item["unitPrice"] = unitPrice
	if discount, ok := moneyPtr(in.DiscountPercentage); ok {
		item["discountPercentage"] = discount
	}
	return item, nil
}

func shippingConditions(in voucherInput) (map[string]any, error) {
	shippingType := strings.TrimSpace(in.ShippingType)
	if shippingType == "" {
		shippingType = DefaultShippingType
	}
	shipping := map[string]any{"shippingType": shippingType}
	if shippingType == "none" {
		return shipping, nil
	}
	date, err := normalizeDate(in.ShippingDate, in.ShippingDate == "")
	if err != nil {
		return nil, err
	}
	shipping["shippingDate"] = date
	if in.ShippingEndDate != "" {
		end, err := normalizeDate(in.ShippingEndDate, false)
		if err != nil {
			return nil, err
		}
		shipping["shippingEndDate"] = end
	}
	return shipping, nil
}

func paymentConditions(in voucherInput) map[string]any {
	if in.PaymentTermLabel == "" && in.PaymentTermDuration == nil && in.DiscountPercentage == nil {
		return nil
	}
	payment := map[string]any{}
	setIf(payment, "paymentTermLabel", in.PaymentTermLabel)
	if in.PaymentTermDuration != nil {
		payment["paymentTermDuration"] = *in.PaymentTermDuration
	}
	if discount, ok := moneyPtr(in.DiscountPercentage); ok {
		rangeDays := 0
		if in.DiscountRange != nil {
			rangeDays = *in.DiscountRange
		}
		payment["paymentDiscountConditions"] = map[string]any{
			"discountPercentage": discount,
			"discountRange":      rangeDays,
		}
	}
	return payment
}
