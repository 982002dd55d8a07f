package core

import "time"

// HTTP-related constants for REST operations
// These constants provide type-safe header names, content types, and auth types

// HTTP Header Names
const (
	HeaderAccept             = "Accept"
	HeaderAuthorization      = "Authorization"
	HeaderContentType        = "Content-Type"
	HeaderContentLength      = "Content-Length"
	HeaderContentDisposition = "Content-Disposition"
	HeaderUserAgent          = "User-Agent"
	HeaderRetryAfter         = "Retry-After"
	HeaderRequestID          = "X-Request-Id"
)

// HTTP Content Types
const (
	ContentTypeJSON          = "application/json"
	ContentTypeMultipartForm = "multipart/form-data"
	ContentTypePDF           = "application/pdf"
	ContentTypeXML           = "application/xml"
	ContentTypeOctetStream   = "application/octet-stream"
	ContentTypeAny           = "*/*"
)

// HTTP Authentication Types
const (
	AuthTypeBearer = "Bearer"
)

// API defaults
const (
	DefaultResourceUrl    = "https://api.lexware.io"
	DefaultApiVersion     = "v1"
	DefaultAppUrl         = "https://app.lexware.de"
	DefaultCurrency       = "EUR"
	DefaultCountryCode    = "DE"
	DefaultTaxRate        = 19
	DefaultUnitName       = "piece"
	DefaultPageSize       = 50
	MaxPageSize           = 250
	MinPageSize           = 1
	DefaultRateLimit      = 2 // requests per second allowed by the public API
	DefaultRateBurst      = 2
	DefaultMaxConnections = 10
	DefaultTimeout        = 30 * time.Second
)

// Endpoint paths relative to the API version root.
const (
	PathArticles            = "articles"
	PathContacts            = "contacts"
	PathCountries           = "countries"
	PathCreditNotes         = "credit-notes"
	PathDeliveryNotes       = "delivery-notes"
	PathDownPaymentInvoices = "down-payment-invoices"
	PathDunnings            = "dunnings"
	PathEventSubscriptions  = "event-subscriptions"
	PathFiles               = "files"
	PathInvoices            = "invoices"
	PathOrderConfirmations  = "order-confirmations"
	PathPayments            = "payments"
	PathPaymentConditions   = "payment-conditions"
	PathPostingCategories   = "posting-categories"
	PathPrintLayouts        = "print-layouts"
	PathProfile             = "profile"
	PathQuotations          = "quotations"
	PathRecurringTemplates  = "recurring-templates"
	PathVouchers            = "vouchers"
	PathVoucherList         = "voucherlist"
)

// Path suffixes for voucher sub resources.
const (
	SegmentDocument = "document"
	SegmentFile     = "file"
	SegmentFiles    = "files"
)

// Query parameter names used by several endpoints.
const (
	QueryPage                    = "page"
	QuerySize                    = "size"
	QueryFinalize                = "finalize"
	QueryPrecedingSalesVoucherId = "precedingSalesVoucherId"
	QueryVoucherType             = "voucherType"
	QueryVoucherStatus           = "voucherStatus"
)
