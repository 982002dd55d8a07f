package rest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/lexware-office/go-lexware-client/core"
	"github.com/lexware-office/go-lexware-client/resources/untyped"
	"github.com/lexware-office/go-lexware-client/transform"
)

// ResourceType names a Lexware Office resource in lower camel case.
type ResourceType string

const (
	ResourceArticle            ResourceType = "article"
	ResourceContact            ResourceType = "contact"
	ResourceCountry            ResourceType = "country"
	ResourceCreditNote         ResourceType = "creditNote"
	ResourceDeliveryNote       ResourceType = "deliveryNote"
	ResourceDownPaymentInvoice ResourceType = "downPaymentInvoice"
	ResourceDunning            ResourceType = "dunning"
	ResourceEventSubscription  ResourceType = "eventSubscription"
	ResourceFile               ResourceType = "file"
	ResourceInvoice            ResourceType = "invoice"
	ResourceOrderConfirmation  ResourceType = "orderConfirmation"
	ResourcePayment            ResourceType = "payment"
	ResourcePaymentCondition   ResourceType = "paymentCondition"
	ResourcePostingCategory    ResourceType = "postingCategory"
	ResourcePrintLayout        ResourceType = "printLayout"
	ResourceProfile            ResourceType = "profile"
	ResourceQuotation          ResourceType = "quotation"
	ResourceRecurringTemplate  ResourceType = "recurringTemplate"
	ResourceVoucher            ResourceType = "voucher"
	ResourceVoucherList        ResourceType = "voucherList"
)

// ResourceTypes lists every resource type in alphabetical order.
var ResourceTypes = []ResourceType{
	ResourceArticle, ResourceContact, ResourceCountry, ResourceCreditNote, ResourceDeliveryNote,
	ResourceDownPaymentInvoice, ResourceDunning, ResourceEventSubscription, ResourceFile, ResourceInvoice,
	ResourceOrderConfirmation, ResourcePayment, ResourcePaymentCondition, ResourcePostingCategory,
	ResourcePrintLayout, ResourceProfile, ResourceQuotation, ResourceRecurringTemplate, ResourceVoucher,
	ResourceVoucherList,
}

// Operation names an action of the factory.
type Operation string

const (
	OpGet            Operation = "get"
	OpGetAll         Operation = "getAll"
	OpCreate         Operation = "create"
	OpUpdate         Operation = "update"
	OpDelete         Operation = "delete"
	OpFinalize       Operation = "finalize"
	OpPursue         Operation = "pursue"
	OpDocument       Operation = "document"
	OpDownloadFile   Operation = "downloadFile"
	OpDeeplink       Operation = "deeplink"
	OpUploadFile     Operation = "uploadFile"
	OpGetFiles       Operation = "getFiles"
	OpDeleteFile     Operation = "deleteFile"
	OpGetCategoryIds Operation = "getCategoryIds"
)

var operations = []Operation{
	OpGet, OpGetAll, OpCreate, OpUpdate, OpDelete, OpFinalize, OpPursue, OpDocument,
	OpDownloadFile, OpDeeplink, OpUploadFile, OpGetFiles, OpDeleteFile, OpGetCategoryIds,
}

// Result is what an operation returns: Record, RecordSet or *core.BinaryData.
type Result = core.Renderable

// Handler executes one operation of one resource type.
type Handler func(ctx context.Context, params core.Params) (Result, error)

func flatKey(s string) string {
	return strings.ToLower(strcase.ToLowerCamel(strings.TrimSpace(s)))
}

var (
	resourceTypeIndex = map[string]ResourceType{}
	operationIndex    = map[string]Operation{}
)

func init() {
	for _, rt := range ResourceTypes {
		resourceTypeIndex[flatKey(string(rt))] = rt
	}
	for _, op := range operations {
		operationIndex[flatKey(string(op))] = op
	}
}

// ParseResourceType accepts "creditNote", "credit-note", "credit_note" and "CreditNote" alike.
func ParseResourceType(s string) (ResourceType, error) {
	if rt, ok := resourceTypeIndex[flatKey(s)]; ok {
		return rt, nil
	}
	return "", &core.ValidationError{Field: "resource", Reason: fmt.Sprintf("unknown resource type %q", s)}
}

// ParseOperation accepts "getAll", "get-all" and "get_all" alike.
func ParseOperation(s string) (Operation, error) {
	if op, ok := operationIndex[flatKey(s)]; ok {
		return op, nil
	}
	return "", &core.ValidationError{Field: "operation", Reason: fmt.Sprintf("unknown operation %q", s)}
}

// ResourceFactory dispatches (resource type, operation, params) triples to the
// wrappers of one LexwareRest. The handler table is built once at construction.
type ResourceFactory struct {
	rest     *LexwareRest
	handlers map[ResourceType]map[Operation]Handler
}

func NewResourceFactory(rest *LexwareRest) *ResourceFactory {
	f := &ResourceFactory{rest: rest, handlers: make(map[ResourceType]map[Operation]Handler)}

	f.register(ResourceArticle, OpGet, getHandler(rest.Articles))
	f.register(ResourceArticle, OpGetAll, getAllHandler(rest.Articles))
	f.register(ResourceArticle, OpCreate, createHandler(ResourceArticle, plainCreate(rest.Articles.CreateWithContext)))
	f.register(ResourceArticle, OpUpdate, updateHandler(rest.Articles))
	f.register(ResourceArticle, OpDelete, deleteHandler(rest.Articles))

	f.register(ResourceContact, OpGet, getHandler(rest.Contacts))
	f.register(ResourceContact, OpGetAll, getAllHandler(rest.Contacts))
	f.register(ResourceContact, OpCreate, createHandler(ResourceContact, plainCreate(rest.Contacts.CreateWithContext)))
	f.register(ResourceContact, OpUpdate, updateHandler(rest.Contacts))
	f.register(ResourceContact, OpDeeplink, deeplinkHandler(rest.Contacts.Deeplink))

	f.register(ResourceCountry, OpGetAll, getAllHandler(rest.Countries))
	f.register(ResourcePaymentCondition, OpGetAll, getAllHandler(rest.PaymentConditions))
	f.register(ResourcePrintLayout, OpGetAll, getAllHandler(rest.PrintLayouts))
	f.register(ResourceRecurringTemplate, OpGet, getHandler(rest.RecurringTemplates))
	f.register(ResourceRecurringTemplate, OpGetAll, getAllHandler(rest.RecurringTemplates))
	f.register(ResourcePayment, OpGet, getHandler(rest.Payments))
	f.register(ResourceVoucherList, OpGetAll, getAllHandler(rest.VoucherList))

	f.register(ResourceEventSubscription, OpGet, getHandler(rest.EventSubscriptions))
	f.register(ResourceEventSubscription, OpGetAll, getAllHandler(rest.EventSubscriptions))
	f.register(ResourceEventSubscription, OpCreate, createHandler(ResourceEventSubscription, plainCreate(rest.EventSubscriptions.CreateWithContext)))
	f.register(ResourceEventSubscription, OpDelete, deleteHandler(rest.EventSubscriptions))

	f.register(ResourceProfile, OpGet, func(ctx context.Context, _ core.Params) (Result, error) {
		return record(rest.Profile.FetchWithContext(ctx))
	})

	f.register(ResourcePostingCategory, OpGetAll, getAllHandler(rest.PostingCategories))
	f.register(ResourcePostingCategory, OpGetCategoryIds, func(ctx context.Context, params core.Params) (Result, error) {
		var p CategoryParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		ids, err := rest.PostingCategories.GetCategoryIdsWithContext(ctx, p.Type)
		if err != nil {
			return nil, err
		}
		return core.Record{"categoryIds": ids}, nil
	})

	f.register(ResourceFile, OpGet, func(ctx context.Context, params core.Params) (Result, error) {
		var p GetParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return record(rest.Files.GetMetadataWithContext(ctx, p.ID))
	})
	f.register(ResourceFile, OpDownloadFile, downloadHandler(rest.Files.DownloadFileWithContext))
	f.register(ResourceFile, OpUploadFile, func(ctx context.Context, params core.Params) (Result, error) {
		var p FileParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		file, err := p.fileData()
		if err != nil {
			return nil, err
		}
		return record(rest.Files.UploadWithContext(ctx, file, p.Type))
	})

	f.registerVoucher()

	f.registerSalesVoucher(ResourceInvoice, &rest.Invoices.SalesVoucher, OpCreate, OpFinalize, OpPursue)
	f.registerSalesVoucher(ResourceQuotation, &rest.Quotations.SalesVoucher, OpCreate, OpFinalize, OpPursue)
	f.registerSalesVoucher(ResourceCreditNote, &rest.CreditNotes.SalesVoucher, OpCreate, OpFinalize, OpPursue)
	f.registerSalesVoucher(ResourceDeliveryNote, &rest.DeliveryNotes.SalesVoucher, OpCreate, OpPursue)
	f.registerSalesVoucher(ResourceOrderConfirmation, &rest.OrderConfirmations.SalesVoucher, OpCreate, OpPursue)
	f.registerSalesVoucher(ResourceDownPaymentInvoice, &rest.DownPaymentInvoices.SalesVoucher)
	f.registerSalesVoucher(ResourceDunning, &rest.Dunnings.SalesVoucher, OpPursue)
	// A dunning is always created as a follow-up of an invoice.
	f.register(ResourceDunning, OpCreate, f.handlers[ResourceDunning][OpPursue])
	return f
}

func (f *ResourceFactory) register(rt ResourceType, op Operation, h Handler) {
	if f.handlers[rt] == nil {
		f.handlers[rt] = make(map[Operation]Handler)
	}
	f.handlers[rt][op] = h
}

// ExecuteOperation runs op on resource type rt.
func (f *ResourceFactory) ExecuteOperation(ctx context.Context, rt ResourceType, op Operation, params core.Params) (Result, error) {
	h, ok := f.handlers[rt][op]
	if !ok {
		return nil, &core.UnsupportedOperationError{Resource: string(rt), Operation: string(op)}
	}
	if ctx == nil {
		ctx = f.rest.GetCtx()
	}
	return h(ctx, params)
}

// Execute parses resourceType and operation before running them.
func (f *ResourceFactory) Execute(ctx context.Context, resourceType, operation string, params core.Params) (Result, error) {
	rt, err := ParseResourceType(resourceType)
	if err != nil {
		return nil, err
	}
	op, err := ParseOperation(operation)
	if err != nil {
		return nil, err
	}
	return f.ExecuteOperation(ctx, rt, op, params)
}

func (f *ResourceFactory) Supports(rt ResourceType, op Operation) bool {
	_, ok := f.handlers[rt][op]
	return ok
}

// Operations returns the supported operations of rt in declaration order.
func (f *ResourceFactory) Operations(rt ResourceType) []Operation {
	var result []Operation
	for _, op := range operations {
		if f.Supports(rt, op) {
			result = append(result, op)
		}
	}
	return result
}

// SupportedResources returns the resource types with at least one operation, sorted.
func (f *ResourceFactory) SupportedResources() []ResourceType {
	result := make([]ResourceType, 0, len(f.handlers))
	for rt := range f.handlers {
		result = append(result, rt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func (f *ResourceFactory) registerVoucher() {
	vouchers := f.rest.Vouchers
	f.register(ResourceVoucher, OpGet, getHandler(vouchers))
	f.register(ResourceVoucher, OpCreate, createHandler(ResourceVoucher, plainCreate(vouchers.CreateWithContext)))
	f.register(ResourceVoucher, OpUpdate, updateHandler(vouchers))
	f.register(ResourceVoucher, OpGetAll, func(ctx context.Context, params core.Params) (Result, error) {
		var p GetAllParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		query := p.query()
		if _, ok := query[core.QueryVoucherType]; !ok {
			query[core.QueryVoucherType] = untyped.BookkeepingVoucherTypes
		}
		return records(f.rest.VoucherList.GetAllWithContext(ctx, query, p.options()))
	})
	f.register(ResourceVoucher, OpUploadFile, func(ctx context.Context, params core.Params) (Result, error) {
		var p FileParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		file, err := p.fileData()
		if err != nil {
			return nil, err
		}
		return record(vouchers.UploadFileWithContext(ctx, p.ID, file))
	})
	f.register(ResourceVoucher, OpGetFiles, func(ctx context.Context, params core.Params) (Result, error) {
		var p GetParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return records(vouchers.GetFilesWithContext(ctx, p.ID))
	})
	f.register(ResourceVoucher, OpDeleteFile, func(ctx context.Context, params core.Params) (Result, error) {
		var p FileParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return record(vouchers.DeleteFileWithContext(ctx, p.ID, p.FileID))
	})
}

// registerSalesVoucher adds get, getAll, document, downloadFile and deeplink plus
// the given creating operations for one sales voucher type.
func (f *ResourceFactory) registerSalesVoucher(rt ResourceType, sv *untyped.SalesVoucher, creating ...Operation) {
	f.register(rt, OpGet, getHandler(sv))
	f.register(rt, OpGetAll, func(ctx context.Context, params core.Params) (Result, error) {
		var p GetAllParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		query := p.query()
		if _, ok := query[core.QueryVoucherStatus]; !ok {
			query[core.QueryVoucherStatus] = ""
		}
		return records(sv.ListVouchersWithContext(ctx, query, p.options()))
	})
	f.register(rt, OpDocument, func(ctx context.Context, params core.Params) (Result, error) {
		var p GetParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return record(sv.DocumentWithContext(ctx, p.ID))
	})
	f.register(rt, OpDownloadFile, downloadHandler(sv.DownloadFileWithContext))
	f.register(rt, OpDeeplink, deeplinkHandler(sv.Deeplink))

	for _, op := range creating {
		switch op {
		case OpCreate:
			f.register(rt, op, createHandler(rt, sv.CreateVoucherWithContext))
		case OpFinalize:
			f.register(rt, op, createHandler(rt, plainCreate(sv.FinalizeWithContext)))
		case OpPursue:
			f.register(rt, op, func(ctx context.Context, params core.Params) (Result, error) {
				var p PursueParams
				if err := decodeParams(params, &p); err != nil {
					return nil, err
				}
				body, err := buildBody(rt, CreateParams{Body: p.Body, Fields: p.Fields})
				if err != nil {
					return nil, err
				}
				return record(sv.PursueWithContext(ctx, p.PrecedingID, body, p.Finalize))
			})
		}
	}
}

func getHandler(r core.ResourceAPIWithContext) Handler {
	return func(ctx context.Context, params core.Params) (Result, error) {
		var p GetParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return record(r.GetWithContext(ctx, p.ID))
	}
}

func getAllHandler(r core.ResourceAPIWithContext) Handler {
	return func(ctx context.Context, params core.Params) (Result, error) {
		var p GetAllParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return records(r.GetAllWithContext(ctx, p.query(), p.options()))
	}
}

// createFunc creates a resource from a request body. finalize is only honored by sales vouchers.
type createFunc func(ctx context.Context, body core.Params, finalize bool) (core.Record, error)

func plainCreate(create func(context.Context, core.Params) (core.Record, error)) createFunc {
	return func(ctx context.Context, body core.Params, _ bool) (core.Record, error) {
		return create(ctx, body)
	}
}

// createHandler transforms and validates the body before calling create.
func createHandler(rt ResourceType, create createFunc) Handler {
	return func(ctx context.Context, params core.Params) (Result, error) {
		var p CreateParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		body, err := buildBody(rt, p)
		if err != nil {
			return nil, err
		}
		return record(create(ctx, body, p.Finalize))
	}
}

func updateHandler(r core.ResourceAPIWithContext) Handler {
	return func(ctx context.Context, params core.Params) (Result, error) {
		var p UpdateParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Version == nil {
			return nil, &core.ValidationError{Field: core.VersionKey, Reason: "version is required for updates", Missing: []string{core.VersionKey}}
		}
		return record(r.UpdateWithContext(ctx, p.ID, p.data(), p.version()))
	}
}

func deleteHandler(r core.ResourceAPIWithContext) Handler {
	return func(ctx context.Context, params core.Params) (Result, error) {
		var p GetParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return record(r.DeleteWithContext(ctx, p.ID))
	}
}

func downloadHandler(download func(context.Context, any, string) (*core.BinaryData, error)) Handler {
	return func(ctx context.Context, params core.Params) (Result, error) {
		var p DownloadParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		data, err := download(ctx, p.ID, p.Accept)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}

func deeplinkHandler(link func(any, bool) (string, error)) Handler {
	return func(_ context.Context, params core.Params) (Result, error) {
		var p DeeplinkParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		url, err := link(p.ID, p.Edit)
		if err != nil {
			return nil, err
		}
		return core.Record{"id": p.ID, "deeplink": url}, nil
	}
}

// buildBody returns the explicit body or transforms the flat fields, then validates the result.
func buildBody(rt ResourceType, p CreateParams) (core.Params, error) {
	var (
		body core.Params
		err  error
	)
	if len(p.Body) > 0 {
		body = core.Params(p.Body)
	} else {
		fields := core.Params(p.Fields)
		switch rt {
		case ResourceContact:
			kind := p.Kind
			if kind == "" {
				kind = transform.ContactPerson
				if fields.GetString("name") != "" {
					kind = transform.ContactCompany
				}
			}
			body, err = transform.TransformContactData(kind, fields)
		case ResourceArticle:
			body, err = transform.TransformArticleData(fields)
		case ResourceDunning:
			body, err = transform.TransformDunningData(fields)
		case ResourceVoucher:
			body, err = transform.TransformBookkeepingVoucherData(fields)
		case ResourceEventSubscription:
			body, err = transform.TransformEventSubscriptionData(fields)
		default:
			body, err = transform.TransformVoucherData(string(rt), fields)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := transform.ValidateCreateData(string(rt), body); err != nil {
		return nil, err
	}
	return body, nil
}

func record(r core.Record, err error) (Result, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

func records(rs core.RecordSet, err error) (Result, error) {
	if err != nil {
		return nil, err
	}
	return rs, nil
}
