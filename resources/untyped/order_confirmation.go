package untyped

type OrderConfirmation struct {
	SalesVoucher
}

func init() {
	registerSalesVoucherOperations("OrderConfirmation", "/order-confirmations", "pursue", "getByStatus")
}
