package transform

import "github.com/lexware-office/go-lexware-client/core"

// TransformDunningData builds a dunning body. The dunning inherits the address of
// the invoice it pursues, so an address is only sent when one is given explicitly.
func TransformDunningData(fields core.Params) (core.Params, error) {
	body, err := TransformVoucherData(VoucherDunning, fields)
	if err != nil {
		return nil, err
	}
	if fields.GetString("contactId") == "" && fields.GetString("name") == "" && fields.GetString("street") == "" {
		delete(body, "address")
	}
	return body, nil
}
