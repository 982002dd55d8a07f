package transform

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lexware-office/go-lexware-client/core"
)

// Article types.
const (
	ArticleProduct = "PRODUCT"
	ArticleService = "SERVICE"
)

type articleInput struct {
	Title         string           `json:"title"`
	Type          string           `json:"type"`
	Description   string           `json:"description"`
	ArticleNumber string           `json:"articleNumber"`
	Gtin          string           `json:"gtin"`
	Note          string           `json:"note"`
	UnitName      string           `json:"unitName"`
	NetPrice      *decimal.Decimal `json:"netPrice"`
	GrossPrice    *decimal.Decimal `json:"grossPrice"`
	LeadingPrice  string           `json:"leadingPrice"`
	TaxRate       *decimal.Decimal `json:"taxRate"`
}

// TransformArticleData builds an article body. Type defaults to PRODUCT,
// unitName to "piece" and taxRate to 19. The leading price follows whichever
// of netPrice and grossPrice is given, net winning when both are.
func TransformArticleData(fields core.Params) (core.Params, error) {
	var in articleInput
	if err := decode(fields, &in); err != nil {
		return nil, err
	}
	articleType := strings.ToUpper(strings.TrimSpace(in.Type))
	if articleType == "" {
		articleType = ArticleProduct
	}
	if articleType != ArticleProduct && articleType != ArticleService {
		return nil, &core.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown article type %q", in.Type)}
	}
	unitName := strings.TrimSpace(in.UnitName)
	if unitName == "" {
		unitName = DefaultUnitName
	}

	price := map[string]any{}
	taxRate := decimal.NewFromInt(DefaultTaxRate)
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	price["taxRate"] = money(taxRate)

	leading := strings.ToUpper(strings.TrimSpace(in.LeadingPrice))
	net, hasNet := moneyPtr(in.NetPrice)
	gross, hasGross := moneyPtr(in.GrossPrice)
	if hasNet {
		price["netPrice"] = net
	}
	if hasGross {
		price["grossPrice"] = gross
	}
	if leading == "" {
		leading = "NET"
		if !hasNet && hasGross {
			leading = "GROSS"
		}
	}
	price["leadingPrice"] = leading

	body := core.Params{
		"type":     articleType,
		"unitName": unitName,
		"price":    price,
	}
	setIf(body, "title", in.Title)
	setIf(body, "description", in.Description)
	setIf(body, "articleNumber", in.ArticleNumber)
	setIf(body, "gtin", in.Gtin)
	setIf(body, "note", in.Note)
	return body, nil
}
