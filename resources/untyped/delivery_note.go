package untyped

type DeliveryNote struct {
	SalesVoucher
}

func init() {
	registerSalesVoucherOperations("DeliveryNote", "/delivery-notes", "pursue", "getByStatus")
}
