package untyped

type CreditNote struct {
	SalesVoucher
}

func init() {
	registerSalesVoucherOperations("CreditNote", "/credit-notes", "finalize", "pursue", "getByStatus")
}
