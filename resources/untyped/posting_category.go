package untyped

import (
	"context"
	"net/http"

	"github.com/lexware-office/go-lexware-client/core"
)

// Posting category types.
const (
	PostingCategoryIncome = "income"
	PostingCategoryOutgo  = "outgo"
)

type PostingCategory struct {
	*core.Resource
}

func init() {
	core.RegisterOperation("PostingCategory", "getCategoryIds", http.MethodGet, "/posting-categories", "List the ids of posting categories")
}

// GetByTypeWithContext filters posting categories by type. An empty type returns all of them.
func (p *PostingCategory) GetByTypeWithContext(ctx context.Context, categoryType string) (core.RecordSet, error) {
	all, err := p.ListWithContext(ctx, nil)
	if err != nil {
		return nil, err
	}
	if categoryType == "" {
		return all, nil
	}
	result := core.RecordSet{}
	for _, category := range all {
		if value, _ := category["type"].(string); value == categoryType {
			result = append(result, category)
		}
	}
	return result, nil
}

func (p *PostingCategory) GetByType(categoryType string) (core.RecordSet, error) {
	return p.GetByTypeWithContext(p.Rest.GetCtx(), categoryType)
}

func (p *PostingCategory) GetCategoryIdsWithContext(ctx context.Context, categoryType string) ([]string, error) {
	categories, err := p.GetByTypeWithContext(ctx, categoryType)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(categories))
	for _, category := range categories {
		if id := category.RecordID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (p *PostingCategory) GetCategoryIds(categoryType string) ([]string, error) {
	return p.GetCategoryIdsWithContext(p.Rest.GetCtx(), categoryType)
}
