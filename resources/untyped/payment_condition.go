package untyped

import "github.com/lexware-office/go-lexware-client/core"

type PaymentCondition struct {
	*core.Resource
}
