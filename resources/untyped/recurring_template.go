package untyped

import "github.com/lexware-office/go-lexware-client/core"

type RecurringTemplate struct {
	*core.Resource
}
