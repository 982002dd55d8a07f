package rest

import (
	"context"
	"fmt"
	"reflect"

	"github.com/lexware-office/go-lexware-client/core"
	"github.com/lexware-office/go-lexware-client/resources/untyped"
)

// ResourceWrapper is the constraint satisfied by every wrapper in resources/untyped.
type ResourceWrapper interface {
	core.ResourceAPIWithContext
}

// Bit flags representing which CRUD operations are supported
const (
	C = core.C
	L = core.L
	R = core.R
	U = core.U
	D = core.D
)

// LexwareRest holds one wrapper per Lexware Office resource, all sharing one session.
type LexwareRest struct {
	ctx         context.Context
	Session     core.RESTSession
	resourceMap map[string]core.ResourceAPIWithContext

	Articles            *untyped.Article
	Contacts            *untyped.Contact
	Countries           *untyped.Country
	CreditNotes         *untyped.CreditNote
	DeliveryNotes       *untyped.DeliveryNote
	DownPaymentInvoices *untyped.DownPaymentInvoice
	Dunnings            *untyped.Dunning
	EventSubscriptions  *untyped.EventSubscription
	Files               *untyped.File
	Invoices            *untyped.Invoice
	OrderConfirmations  *untyped.OrderConfirmation
	Payments            *untyped.Payment
	PaymentConditions   *untyped.PaymentCondition
	PostingCategories   *untyped.PostingCategory
	PrintLayouts        *untyped.PrintLayout
	Profile             *untyped.Profile
	Quotations          *untyped.Quotation
	RecurringTemplates  *untyped.RecurringTemplate
	Vouchers            *untyped.Voucher
	VoucherList         *untyped.VoucherList
}

// NewLexwareRest applies config defaults, opens a session and wires every resource.
func NewLexwareRest(config *core.Config) (*LexwareRest, error) {
	session, err := core.NewSession(config)
	if err != nil {
		return nil, err
	}
	return NewLexwareRestWithSession(session), nil
}

// NewLexwareRestWithSession wires the resources on top of an existing session.
func NewLexwareRestWithSession(session core.RESTSession) *LexwareRest {
	rest := &LexwareRest{
		Session:     session,
		resourceMap: make(map[string]core.ResourceAPIWithContext),
	}
	if ctx := session.GetConfig().Context; ctx != nil {
		rest.SetCtx(ctx)
	} else {
		rest.SetCtx(context.Background())
	}

	rest.Articles = newResource[untyped.Article](rest, core.PathArticles, C, L, R, U, D)
	rest.Contacts = newResource[untyped.Contact](rest, core.PathContacts, C, L, R, U)
	rest.Countries = newResource[untyped.Country](rest, core.PathCountries, L)
	rest.CreditNotes = newResource[untyped.CreditNote](rest, core.PathCreditNotes, C, R)
	rest.DeliveryNotes = newResource[untyped.DeliveryNote](rest, core.PathDeliveryNotes, C, R)
	rest.DownPaymentInvoices = newResource[untyped.DownPaymentInvoice](rest, core.PathDownPaymentInvoices, R)
	rest.Dunnings = newResource[untyped.Dunning](rest, core.PathDunnings, C, R)
	rest.EventSubscriptions = newResource[untyped.EventSubscription](rest, core.PathEventSubscriptions, C, L, R, D)
	rest.Files = newResource[untyped.File](rest, core.PathFiles, R)
	rest.Invoices = newResource[untyped.Invoice](rest, core.PathInvoices, C, R)
	rest.OrderConfirmations = newResource[untyped.OrderConfirmation](rest, core.PathOrderConfirmations, C, R)
	rest.Payments = newResource[untyped.Payment](rest, core.PathPayments, R)
	rest.PaymentConditions = newResource[untyped.PaymentCondition](rest, core.PathPaymentConditions, L)
	rest.PostingCategories = newResource[untyped.PostingCategory](rest, core.PathPostingCategories, L)
	rest.PrintLayouts = newResource[untyped.PrintLayout](rest, core.PathPrintLayouts, L)
	rest.Profile = newResource[untyped.Profile](rest, core.PathProfile, R)
	rest.Quotations = newResource[untyped.Quotation](rest, core.PathQuotations, C, R)
	rest.RecurringTemplates = newResource[untyped.RecurringTemplate](rest, core.PathRecurringTemplates, L, R)
	rest.Vouchers = newResource[untyped.Voucher](rest, core.PathVouchers, C, R, U)
	rest.VoucherList = newResource[untyped.VoucherList](rest, core.PathVoucherList, L)
	return rest
}

func (rest *LexwareRest) GetSession() core.RESTSession {
	return rest.Session
}

func (rest *LexwareRest) GetResourceMap() map[string]core.ResourceAPIWithContext {
	return rest.resourceMap
}

func (rest *LexwareRest) GetCtx() context.Context {
	return rest.ctx
}

func (rest *LexwareRest) SetCtx(ctx context.Context) {
	rest.ctx = ctx
}

var resourcePtrType = reflect.TypeOf((*core.Resource)(nil))

func newResource[T any, PT interface {
	*T
	ResourceWrapper
}](rest *LexwareRest, resourcePath string, resourceOps ...core.ResourceOps) *T {
	var zero T
	resourceType := reflect.TypeOf(zero).Name()
	instance := new(T)
	resource := core.NewResource(resourcePath, resourceType, rest, core.NewResourceOps(resourceOps...), instance)

	if !setEmbeddedResource(reflect.ValueOf(instance).Elem(), resource) {
		panic(fmt.Sprintf("resource %s does not embed *core.Resource", resourceType))
	}
	rest.resourceMap[resourceType] = PT(instance)
	return instance
}

// setEmbeddedResource assigns resource to the first *core.Resource field of val,
// descending into structs embedded by value such as untyped.SalesVoucher.
func setEmbeddedResource(val reflect.Value, resource *core.Resource) bool {
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		switch {
		case field.Type() == resourcePtrType && field.CanSet():
			field.Set(reflect.ValueOf(resource))
			return true
		case field.Kind() == reflect.Struct && val.Type().Field(i).Anonymous:
			if setEmbeddedResource(field, resource) {
				return true
			}
		}
	}
	return false
}
