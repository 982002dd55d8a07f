package untyped

// DownPaymentInvoice is read only; down payment invoices are created in the web application.
type DownPaymentInvoice struct {
	SalesVoucher
}

func init() {
	registerSalesVoucherOperations("DownPaymentInvoice", "/down-payment-invoices", "getByStatus")
}
