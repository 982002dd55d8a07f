package untyped

import (
	"context"
	"net/http"
	"strings"

	"github.com/lexware-office/go-lexware-client/core"
)

type Article struct {
	*core.Resource
}

func init() {
	core.RegisterOperation("Article", "getByType", http.MethodGet, "/articles?type={type}", "List articles of type PRODUCT or SERVICE")
}

func (a *Article) GetByTypeWithContext(ctx context.Context, articleType string, opts core.ListOptions) (core.RecordSet, error) {
	return a.GetAllWithContext(ctx, core.Params{"type": strings.ToUpper(strings.TrimSpace(articleType))}, opts)
}

func (a *Article) GetByType(articleType string, opts core.ListOptions) (core.RecordSet, error) {
	return a.GetByTypeWithContext(a.Rest.GetCtx(), articleType, opts)
}

func (a *Article) GetByArticleNumberWithContext(ctx context.Context, articleNumber string) (core.Record, error) {
	return a.findOne(ctx, core.Params{"articleNumber": strings.TrimSpace(articleNumber)})
}

func (a *Article) GetByArticleNumber(articleNumber string) (core.Record, error) {
	return a.GetByArticleNumberWithContext(a.Rest.GetCtx(), articleNumber)
}

func (a *Article) GetByGtinWithContext(ctx context.Context, gtin string) (core.Record, error) {
	return a.findOne(ctx, core.Params{"gtin": strings.TrimSpace(gtin)})
}

func (a *Article) GetByGtin(gtin string) (core.Record, error) {
	return a.GetByGtinWithContext(a.Rest.GetCtx(), gtin)
}

func (a *Article) findOne(ctx context.Context, query core.Params) (core.Record, error) {
	result, err := a.GetAllWithContext(ctx, query, core.ListOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, &core.NotFoundError{Resource: a.GetResourceType(), Query: query.ToQuery()}
	}
	return result[0], nil
}
