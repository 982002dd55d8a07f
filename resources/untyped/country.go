package untyped

import (
	"context"
	"strings"

	"github.com/lexware-office/go-lexware-client/core"
)

// Tax classifications of countries.
const (
	TaxClassificationDe             = "de"
	TaxClassificationIntraCommunity = "intraCommunity"
	TaxClassificationThirdParty     = "thirdPartyCountry"
)

type Country struct {
	*core.Resource
}

// GetByTaxClassificationWithContext filters the country list locally; the endpoint takes no filters.
func (c *Country) GetByTaxClassificationWithContext(ctx context.Context, classification string) (core.RecordSet, error) {
	all, err := c.ListWithContext(ctx, nil)
	if err != nil {
		return nil, err
	}
	result := core.RecordSet{}
	for _, country := range all {
		if value, _ := country["taxClassification"].(string); strings.EqualFold(value, classification) {
			result = append(result, country)
		}
	}
	return result, nil
}

func (c *Country) GetByTaxClassification(classification string) (core.RecordSet, error) {
	return c.GetByTaxClassificationWithContext(c.Rest.GetCtx(), classification)
}
