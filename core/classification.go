package core

import (
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/iancoleman/strcase"
)

// ErrorCategory groups HTTP statuses and API error codes by what went wrong.
type ErrorCategory string

const (
	CategorySuccess           ErrorCategory = "success"
	CategoryAuthentication    ErrorCategory = "authentication"
	CategoryConnection        ErrorCategory = "connection"
	CategoryNotFound          ErrorCategory = "not_found"
	CategoryConflict          ErrorCategory = "conflict"
	CategoryOptimisticLocking ErrorCategory = "optimistic_locking"
	CategoryValidation        ErrorCategory = "validation"
	CategoryBusinessRule      ErrorCategory = "business_rule"
	CategoryRateLimit         ErrorCategory = "rate_limit"
	CategoryServer            ErrorCategory = "server"
	CategoryFile              ErrorCategory = "file"
	CategoryEInvoice          ErrorCategory = "e_invoice"
	CategoryClient            ErrorCategory = "client"
	CategoryUnknown           ErrorCategory = "unknown"
)

var categoryLabels = map[ErrorCategory]string{
	CategorySuccess:           "Success",
	CategoryAuthentication:    "Authentication error",
	CategoryConnection:        "Connection error",
	CategoryNotFound:          "Resource not found",
	CategoryConflict:          "Resource conflict",
	CategoryOptimisticLocking: "Version conflict",
	CategoryValidation:        "Validation error",
	CategoryBusinessRule:      "Business rule violation",
	CategoryRateLimit:         "Rate limit exceeded",
	CategoryServer:            "Server error",
	CategoryFile:              "File error",
	CategoryEInvoice:          "E-invoice validation error",
	CategoryClient:            "Client error",
	CategoryUnknown:           "Unknown error",
}

// Label returns the human readable name of the category.
func (c ErrorCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryUnknown]
}

// Severity tiers, ordered from least to most severe.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Classification is the result of looking up a status code or an API error code.
type Classification struct {
	Category           ErrorCategory
	Severity           Severity
	Retryable          bool
	RequiresUserAction bool
	SuggestedAction    string
	// DocLink is a fragment pointing into the API error documentation. Only set for error codes.
	DocLink string
}

// StatusClassification describes a documented HTTP status code.
type StatusClassification struct {
	Classification
	Status int
	Name   string
}

// ######################################################
//              STATUS CODES
// ######################################################

var statusTable = map[int]StatusClassification{
	http.StatusOK:        status(200, "OK", CategorySuccess, SeverityInfo, false, false, "No action required."),
	http.StatusCreated:   status(201, "Created", CategorySuccess, SeverityInfo, false, false, "No action required."),
	http.StatusAccepted:  status(202, "Accepted", CategorySuccess, SeverityInfo, false, false, "The request is processed asynchronously."),
	http.StatusNoContent: status(204, "No Content", CategorySuccess, SeverityInfo, false, false, "No action required."),

	http.StatusBadRequest: status(400, "Bad Request", CategoryValidation, SeverityMedium, false, true,
		"Check the request parameters and the payload format."),
	http.StatusUnauthorized: status(401, "Unauthorized", CategoryAuthentication, SeverityHigh, false, true,
		"Check that the API key is valid and has not been revoked."),
	http.StatusPaymentRequired: status(402, "Payment Required", CategoryBusinessRule, SeverityHigh, false, true,
		"The Lexware Office subscription does not include this feature. Check the contract."),
	http.StatusForbidden: status(403, "Forbidden", CategoryAuthentication, SeverityHigh, false, true,
		"The API key lacks the permissions for this resource. Check the granted scopes."),
	http.StatusNotFound: status(404, "Not Found", CategoryNotFound, SeverityMedium, false, true,
		"Check that the resource id exists and belongs to this organization."),
	http.StatusMethodNotAllowed: status(405, "Method Not Allowed", CategoryClient, SeverityMedium, false, true,
		"The endpoint does not support this operation."),
	http.StatusNotAcceptable: status(406, "Not Acceptable", CategoryValidation, SeverityMedium, false, true,
		"The payload was rejected. Check required fields and their formats."),
	http.StatusRequestTimeout: status(408, "Request Timeout", CategoryServer, SeverityMedium, true, false,
		"The request timed out. Retry after a short delay."),
	http.StatusConflict: status(409, "Conflict", CategoryOptimisticLocking, SeverityMedium, false, true,
		"The resource was modified concurrently. Fetch the latest version and retry the update."),
	http.StatusGone: status(410, "Gone", CategoryNotFound, SeverityMedium, false, true,
		"The resource has been removed permanently."),
	http.StatusUnsupportedMediaType: status(415, "Unsupported Media Type", CategoryFile, SeverityMedium, false, true,
		"Send the body as application/json or the file as multipart/form-data."),
	http.StatusUnprocessableEntity: status(422, "Unprocessable Entity", CategoryOptimisticLocking, SeverityMedium, false, true,
		"The request conflicts with the current state or version of the resource. Reload it and retry."),
	http.StatusTooManyRequests: status(429, "Too Many Requests", CategoryRateLimit, SeverityLow, true, false,
		"The API rate limit was exceeded. Wait before sending further requests."),
	http.StatusInternalServerError: status(500, "Internal Server Error", CategoryServer, SeverityCritical, true, false,
		"The API failed to process the request. Retry later."),
	http.StatusNotImplemented: status(501, "Not Implemented", CategoryServer, SeverityHigh, false, false,
		"The endpoint is not implemented by the API."),
	http.StatusBadGateway: status(502, "Bad Gateway", CategoryServer, SeverityHigh, true, false,
		"The API gateway received an invalid response. Retry later."),
	http.StatusServiceUnavailable: status(503, "Service Unavailable", CategoryServer, SeverityHigh, true, false,
		"The API is temporarily unavailable, possibly for maintenance. Retry later."),
	http.StatusGatewayTimeout: status(504, "Gateway Timeout", CategoryServer, SeverityHigh, true, false,
		"The API gateway timed out. Retry later."),
}

func status(code int, name string, category ErrorCategory, severity Severity, retryable, userAction bool, action string) StatusClassification {
	return StatusClassification{
		Status: code,
		Name:   name,
		Classification: Classification{
			Category:           category,
			Severity:           severity,
			Retryable:          retryable,
			RequiresUserAction: userAction,
			SuggestedAction:    action,
		},
	}
}

// DocumentedStatusCodes returns the status codes covered by the classification table.
func DocumentedStatusCodes() []int {
	codes := make([]int, 0, len(statusTable))
	for code := range statusTable {
		codes = append(codes, code)
	}
	return sortedInts(codes)
}

// StatusInfo classifies an HTTP status code. Undocumented codes fall back to their class (4xx/5xx).
func StatusInfo(code int) StatusClassification {
	if info, ok := statusTable[code]; ok {
		return info
	}
	switch {
	case code >= 200 && code < 300:
		return status(code, http.StatusText(code), CategorySuccess, SeverityInfo, false, false, "No action required.")
	case code >= 400 && code < 500:
		return status(code, http.StatusText(code), CategoryClient, SeverityMedium, false, true,
			"The request was rejected by the API. Check the request parameters.")
	case code >= 500:
		return status(code, http.StatusText(code), CategoryServer, SeverityHigh, false, false,
			"The API reported a server side failure. Retry later.")
	default:
		return status(code, http.StatusText(code), CategoryUnknown, SeverityMedium, false, false, unknownAdvice+".")
	}
}

// IsRetryableStatus reports whether a request failing with this status may succeed when repeated.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ######################################################
//              API ERROR CODES
// ######################################################

// Documented API error codes.
const (
	CodeAuthenticationFailed           = "AUTHENTICATION_FAILED"
	CodeInvalidApiKey                  = "INVALID_API_KEY"
	CodeApiKeyExpired                  = "API_KEY_EXPIRED"
	CodeInsufficientPermissions        = "INSUFFICIENT_PERMISSIONS"
	CodeResourceNotFound               = "RESOURCE_NOT_FOUND"
	CodeResourceConflict               = "RESOURCE_CONFLICT"
	CodeDuplicateResource              = "DUPLICATE_RESOURCE"
	CodeOptimisticLockingViolation     = "OPTIMISTIC_LOCKING_VIOLATION"
	CodeVersionConflict                = "VERSION_CONFLICT"
	CodeValidationError                = "VALIDATION_ERROR"
	CodeMissingRequiredField           = "MISSING_REQUIRED_FIELD"
	CodeInvalidFieldValue              = "INVALID_FIELD_VALUE"
	CodeInvalidDateFormat              = "INVALID_DATE_FORMAT"
	CodeInvalidTaxRate                 = "INVALID_TAX_RATE"
	CodeInvalidCurrency                = "INVALID_CURRENCY"
	CodeBusinessRuleViolation          = "BUSINESS_RULE_VIOLATION"
	CodeVoucherAlreadyFinalized        = "VOUCHER_ALREADY_FINALIZED"
	CodeVoucherNotEditable             = "VOUCHER_NOT_EDITABLE"
	CodeRateLimitExceeded              = "RATE_LIMIT_EXCEEDED"
	CodeThrottled                      = "THROTTLED"
	CodeInternalServerError            = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable             = "SERVICE_UNAVAILABLE"
	CodeGatewayTimeout                 = "GATEWAY_TIMEOUT"
	CodeRequestTimeout                 = "REQUEST_TIMEOUT"
	CodeMaintenanceMode                = "MAINTENANCE_MODE"
	CodeConnectionError                = "CONNECTION_ERROR"
	CodeNetworkError                   = "NETWORK_ERROR"
	CodeFileTooLarge                   = "FILE_TOO_LARGE"
	CodeUnsupportedFileType            = "UNSUPPORTED_FILE_TYPE"
	CodeFileUploadFailed               = "FILE_UPLOAD_FAILED"
	CodeFileProcessingFailed           = "FILE_PROCESSING_FAILED"
	CodeXRechnungValidationFailed      = "XRECHNUNG_VALIDATION_FAILED"
	CodeXRechnungMissingBuyerReference = "XRECHNUNG_MISSING_BUYER_REFERENCE"
	CodeEInvoiceFormatInvalid          = "EINVOICE_FORMAT_INVALID"
)

// DocsBaseUrl is the location of the public API documentation.
const DocsBaseUrl = "https://developers.lexware.io/docs/"

// categoryRules is evaluated in order; the first rule with a matching substring wins.
var categoryRules = []struct {
	category ErrorCategory
	needles  []string
}{
	{CategoryAuthentication, []string{"AUTHENTICATION", "API_KEY", "PERMISSIONS", "UNAUTHORIZED", "FORBIDDEN"}},
	{CategoryEInvoice, []string{"XRECHNUNG", "EINVOICE", "E_INVOICE", "ZUGFERD"}},
	{CategoryRateLimit, []string{"RATE_LIMIT", "THROTTL", "TOO_MANY"}},
	{CategoryOptimisticLocking, []string{"OPTIMISTIC", "VERSION"}},
	{CategoryConflict, []string{"CONFLICT", "DUPLICATE", "ALREADY_EXISTS"}},
	{CategoryNotFound, []string{"NOT_FOUND", "GONE"}},
	{CategoryFile, []string{"FILE", "UPLOAD"}},
	{CategoryConnection, []string{"CONNECTION", "NETWORK"}},
	{CategoryServer, []string{"TIMEOUT", "SERVER", "UNAVAILABLE", "INTERNAL", "GATEWAY", "MAINTENANCE"}},
	{CategoryValidation, []string{"VALIDATION", "INVALID", "MISSING", "REQUIRED", "MALFORMED"}},
	{CategoryBusinessRule, []string{"BUSINESS", "ALREADY_FINALIZED", "NOT_EDITABLE", "NOT_ALLOWED", "LOCKED"}},
}

var categorySeverity = map[ErrorCategory]Severity{
	CategorySuccess:           SeverityInfo,
	CategoryAuthentication:    SeverityHigh,
	CategoryConnection:        SeverityHigh,
	CategoryNotFound:          SeverityMedium,
	CategoryConflict:          SeverityMedium,
	CategoryOptimisticLocking: SeverityMedium,
	CategoryValidation:        SeverityMedium,
	CategoryBusinessRule:      SeverityMedium,
	CategoryRateLimit:         SeverityLow,
	CategoryServer:            SeverityCritical,
	CategoryFile:              SeverityMedium,
	CategoryEInvoice:          SeverityHigh,
	CategoryClient:            SeverityMedium,
	CategoryUnknown:           SeverityMedium,
}

var categoryActions = map[ErrorCategory]string{
	CategoryAuthentication:    "Check the API key and the permissions granted to it.",
	CategoryConnection:        networkAdvice + ".",
	CategoryNotFound:          "Check that the referenced resource exists.",
	CategoryConflict:          "The resource already exists or conflicts with another one.",
	CategoryOptimisticLocking: "Fetch the latest version of the resource and retry the update.",
	CategoryValidation:        "Correct the invalid or missing fields and resend the request.",
	CategoryBusinessRule:      "The operation is not allowed in the current state of the resource.",
	CategoryRateLimit:         "Slow down and retry after the indicated delay.",
	CategoryServer:            "The API failed temporarily. Retry later.",
	CategoryFile:              "Check the file size and type.",
	CategoryEInvoice:          "Complete the XRechnung specific fields (e.g. buyer reference) and validate the e-invoice.",
	CategoryUnknown:           unknownAdvice + ".",
}

var codeActions = map[string]string{
	CodeInvalidApiKey:                  "The API key is invalid. Generate a new key in the Lexware Office settings.",
	CodeApiKeyExpired:                  "The API key has expired. Generate a new key in the Lexware Office settings.",
	CodeInsufficientPermissions:        "The API key lacks the permission for this operation.",
	CodeMissingRequiredField:           "Provide all required fields.",
	CodeInvalidDateFormat:              "Dates must use the format yyyy-MM-ddTHH:mm:ss.SSSXXX.",
	CodeInvalidTaxRate:                 "Use one of the supported tax rates (0, 7 or 19 percent).",
	CodeInvalidCurrency:                "Only EUR is supported as currency.",
	CodeVoucherAlreadyFinalized:        "Finalized vouchers cannot be changed. Create a credit note instead.",
	CodeVoucherNotEditable:             "The voucher cannot be edited in its current status.",
	CodeFileTooLarge:                   "Files must not exceed 5 MB.",
	CodeUnsupportedFileType:            "Upload PDF, JPG, PNG or XML (e-invoice) files only.",
	CodeXRechnungMissingBuyerReference: "XRechnung invoices require a buyer reference (Leitweg-ID).",
	CodeMaintenanceMode:                "The API is in maintenance. Retry later.",
}

var retryableCodes = map[string]struct{}{
	CodeRequestTimeout:      {},
	CodeRateLimitExceeded:   {},
	CodeThrottled:           {},
	CodeInternalServerError: {},
	CodeServiceUnavailable:  {},
	CodeGatewayTimeout:      {},
	CodeMaintenanceMode:     {},
	CodeConnectionError:     {},
	CodeNetworkError:        {},
}

var userActionCategories = map[ErrorCategory]struct{}{
	CategoryAuthentication:    {},
	CategoryNotFound:          {},
	CategoryConflict:          {},
	CategoryOptimisticLocking: {},
	CategoryValidation:        {},
	CategoryBusinessRule:      {},
	CategoryFile:              {},
	CategoryEInvoice:          {},
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetErrorCategory derives the category of an API error code by substring matching on its name.
func GetErrorCategory(code string) ErrorCategory {
	code = normalizeCode(code)
	if code == "" {
		return CategoryUnknown
	}
	for _, rule := range categoryRules {
		for _, needle := range rule.needles {
			if strings.Contains(code, needle) {
				return rule.category
			}
		}
	}
	return CategoryUnknown
}

// GetErrorSeverity returns the severity tier of an API error code.
func GetErrorSeverity(code string) Severity {
	return categorySeverity[GetErrorCategory(code)]
}

// IsRetryableErrorCode reports whether an API error code is in the retry allow-list.
func IsRetryableErrorCode(code string) bool {
	_, ok := retryableCodes[normalizeCode(code)]
	return ok
}

// RequiresUserAction reports whether the user has to change something before retrying.
func RequiresUserAction(code string) bool {
	_, ok := userActionCategories[GetErrorCategory(code)]
	return ok
}

// SuggestedAction returns the advice shown for an API error code.
func SuggestedAction(code string) string {
	if action, ok := codeActions[normalizeCode(code)]; ok {
		return action
	}
	if action, ok := categoryActions[GetErrorCategory(code)]; ok {
		return action
	}
	return categoryActions[CategoryUnknown]
}

// DocLink returns the documentation fragment for an API error code, e.g. "#error-invalid-api-key".
func DocLink(code string) string {
	code = normalizeCode(code)
	if code == "" {
		return ""
	}
	return "#error-" + strcase.ToKebab(strings.ToLower(code))
}

// ErrorCodeInfo classifies an API error code.
func ErrorCodeInfo(code string) Classification {
	category := GetErrorCategory(code)
	return Classification{
		Category:           category,
		Severity:           categorySeverity[category],
		Retryable:          IsRetryableErrorCode(code),
		RequiresUserAction: RequiresUserAction(code),
		SuggestedAction:    SuggestedAction(code),
		DocLink:            DocLink(code),
	}
}

// Classify combines the status table and the error code table.
// The error code refines the category when it is known, retryability is the union of both.
func Classify(statusCode int, code string) Classification {
	result := StatusInfo(statusCode).Classification
	if code == "" {
		return result
	}
	codeInfo := ErrorCodeInfo(code)
	if codeInfo.Category != CategoryUnknown {
		result.Category = codeInfo.Category
		result.Severity = codeInfo.Severity
		result.RequiresUserAction = codeInfo.RequiresUserAction
		result.SuggestedAction = codeInfo.SuggestedAction
	}
	result.Retryable = result.Retryable || codeInfo.Retryable
	result.DocLink = codeInfo.DocLink
	return result
}

// ######################################################
//              HTTP LEVEL RETRY DELAY
// ######################################################

const (
	// MaxRetryDelay caps delays computed at the HTTP layer.
	MaxRetryDelay     = 30 * time.Second
	DefaultRetryDelay = time.Second
	retryJitter       = 0.1
)

// IsRetryable reports whether err is worth retrying at all.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsNetworkErr(err) {
		return true
	}
	if apiErr, ok := AsApiError(err); ok {
		return apiErr.Classification.Retryable
	}
	return false
}

// SuggestedRetryDelay computes how long a caller should wait before retrying a failed request.
// attempt starts at 1. The server hint wins when present. Nothing is scheduled here.
// Returns zero for errors that should not be retried.
func SuggestedRetryDelay(err error, attempt int) time.Duration {
	if !IsRetryable(err) {
		return 0
	}
	if apiErr, ok := AsApiError(err); ok && apiErr.RetryAfter > 0 {
		return min(apiErr.RetryAfter, MaxRetryDelay)
	}
	return exponentialDelay(attempt, DefaultRetryDelay, MaxRetryDelay)
}

// exponentialDelay returns base * 2^(attempt-1) with jitter, capped at maxDelay.
// The sequence is produced by an ExponentialBackOff so jitter and capping follow one implementation.
func exponentialDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     base,
		RandomizationFactor: retryJitter,
		Multiplier:          2,
		MaxInterval:         maxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	var delay time.Duration
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return min(delay, maxDelay)
}
