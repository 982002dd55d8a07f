package untyped

import "github.com/lexware-office/go-lexware-client/core"

// Payment is read by the id of the voucher it belongs to.
type Payment struct {
	*core.Resource
}
