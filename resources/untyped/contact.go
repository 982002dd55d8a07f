package untyped

import (
	"context"
	"net/http"
	"strings"

	"github.com/lexware-office/go-lexware-client/core"
)

type Contact struct {
	*core.Resource
}

func init() {
	core.RegisterOperation("Contact", "getCustomers", http.MethodGet, "/contacts?customer=true", "List contacts with the customer role")
	core.RegisterOperation("Contact", "getVendors", http.MethodGet, "/contacts?vendor=true", "List contacts with the vendor role")
	core.RegisterOperation("Contact", "deeplink", "", "", "Build the web application link")
}

func (c *Contact) GetCustomersWithContext(ctx context.Context, opts core.ListOptions) (core.RecordSet, error) {
	return c.GetAllWithContext(ctx, core.Params{"customer": true}, opts)
}

func (c *Contact) GetCustomers(opts core.ListOptions) (core.RecordSet, error) {
	return c.GetCustomersWithContext(c.Rest.GetCtx(), opts)
}

func (c *Contact) GetVendorsWithContext(ctx context.Context, opts core.ListOptions) (core.RecordSet, error) {
	return c.GetAllWithContext(ctx, core.Params{"vendor": true}, opts)
}

func (c *Contact) GetVendors(opts core.ListOptions) (core.RecordSet, error) {
	return c.GetVendorsWithContext(c.Rest.GetCtx(), opts)
}

// GetByEmailWithContext filters by email. The API matches substrings of at least three characters.
func (c *Contact) GetByEmailWithContext(ctx context.Context, email string, opts core.ListOptions) (core.RecordSet, error) {
	return c.GetAllWithContext(ctx, core.Params{"email": strings.TrimSpace(email)}, opts)
}

func (c *Contact) GetByEmail(email string, opts core.ListOptions) (core.RecordSet, error) {
	return c.GetByEmailWithContext(c.Rest.GetCtx(), email, opts)
}

func (c *Contact) GetByNameWithContext(ctx context.Context, name string, opts core.ListOptions) (core.RecordSet, error) {
	return c.GetAllWithContext(ctx, core.Params{"name": strings.TrimSpace(name)}, opts)
}

func (c *Contact) GetByName(name string, opts core.ListOptions) (core.RecordSet, error) {
	return c.GetByNameWithContext(c.Rest.GetCtx(), name, opts)
}

// GetByNumberWithContext returns the contact with the given customer or vendor number.
func (c *Contact) GetByNumberWithContext(ctx context.Context, number int) (core.Record, error) {
	query := core.Params{"number": number}
	result, err := c.GetAllWithContext(ctx, query, core.ListOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, &core.NotFoundError{Resource: c.GetResourceType(), Query: query.ToQuery()}
	}
	return result[0], nil
}

func (c *Contact) GetByNumber(number int) (core.Record, error) {
	return c.GetByNumberWithContext(c.Rest.GetCtx(), number)
}

func (c *Contact) Deeplink(id any, edit bool) (string, error) {
	return permalink(c.Resource, id, edit)
}
