package transform

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/iancoleman/strcase"
	"github.com/shopspring/decimal"

	"github.com/lexware-office/go-lexware-client/core"
)

var (
	emailPattern       = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	callbackURLPattern = regexp.MustCompile(`^https?://\S+$`)
)

// AllowedTaxRates are the German VAT rates accepted on create.
var AllowedTaxRates = []int64{0, 7, 19}

type fieldRule struct {
	path  string
	rules []validation.Rule
}

type createSchema struct {
	required []string
	formats  []fieldRule
}

var (
	emailRule       = []validation.Rule{validation.Match(emailPattern).Error("must be a valid email address")}
	countryRule     = []validation.Rule{validation.Match(countryCodePattern).Error("must be a two letter ISO country code")}
	currencyRule    = []validation.Rule{validation.In(DefaultCurrency).Error("must be " + DefaultCurrency)}
	taxRateRule     = []validation.Rule{validation.By(checkTaxRate)}
	salesVoucherFmt = []fieldRule{
		{"address.countryCode", countryRule},
		{"totalPrice.currency", currencyRule},
		{"lineItems.unitPrice.currency", currencyRule},
		{"lineItems.unitPrice.taxRatePercentage", taxRateRule},
	}
	salesVoucherRequired = []string{"voucherDate", "address", "lineItems", "totalPrice.currency", "taxConditions.taxType"}
)

var createSchemas = map[string]createSchema{
	"contact": {
		required: []string{"version", "roles"},
		formats: []fieldRule{
			{"emailAddresses.business", emailRule},
			{"emailAddresses.office", emailRule},
			{"emailAddresses.private", emailRule},
			{"emailAddresses.other", emailRule},
			{"company.contactPersons.emailAddress", emailRule},
			{"addresses.billing.countryCode", countryRule},
			{"addresses.shipping.countryCode", countryRule},
		},
	},
	"article": {
		required: []string{"title", "type", "unitName", "price.taxRate"},
		formats:  []fieldRule{{"price.taxRate", taxRateRule}},
	},
	"invoice":            {required: salesVoucherRequired, formats: salesVoucherFmt},
	"quotation":          {required: append([]string{"expirationDate"}, salesVoucherRequired...), formats: salesVoucherFmt},
	"creditNote":         {required: salesVoucherRequired, formats: salesVoucherFmt},
	"orderConfirmation":  {required: salesVoucherRequired, formats: salesVoucherFmt},
	"downPaymentInvoice": {required: salesVoucherRequired, formats: salesVoucherFmt},
	"deliveryNote":       {required: []string{"voucherDate", "address", "lineItems"}, formats: salesVoucherFmt},
	"dunning":            {required: []string{"voucherDate"}, formats: salesVoucherFmt},
	"voucher": {
		required: []string{"type", "voucherDate", "totalGrossAmount", "totalTaxAmount", "taxType", "voucherItems"},
		formats:  []fieldRule{{"voucherItems.taxRatePercent", taxRateRule}},
	},
	"eventSubscription": {
		required: []string{"eventType", "callbackUrl"},
		formats: []fieldRule{
			{"eventType", []validation.Rule{validation.In(eventTypeValues()...).Error("is not a known event type")}},
			{"callbackUrl", []validation.Rule{validation.Match(callbackURLPattern).Error("must be an http(s) URL")}},
		},
	},
}

// ValidateCreateData checks a create body for resourceType ("invoice",
// "credit-note", "EventSubscription", ...). Missing required fields are reported
// together in ValidationError.Missing; otherwise the first format violation in
// path order is returned. Unknown resource types are not checked.
func ValidateCreateData(resourceType string, data core.Params) error {
	schema, ok := createSchemas[strcase.ToLowerCamel(resourceType)]
	if !ok {
		return nil
	}
	required := schema.required
	if strcase.ToLowerCamel(resourceType) == "contact" {
		if _, isCompany := data["company"]; isCompany {
			required = append(append([]string{}, required...), "company.name")
		} else {
			required = append(append([]string{}, required...), "person.lastName")
		}
	}
	if missing := ValidateRequiredFields(data, required); len(missing) > 0 {
		return &core.ValidationError{Field: missing[0], Reason: "required", Missing: missing}
	}

	errs := validation.Errors{}
	for _, f := range schema.formats {
		for _, value := range collect(data, f.path) {
			if err := validation.Validate(value, f.rules...); err != nil {
				errs[f.path] = err
				break
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	paths := make([]string, 0, len(errs))
	for path := range errs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return &core.ValidationError{Field: paths[0], Reason: errs[paths[0]].Error()}
}

// collect returns every value found at path, descending into lists.
func collect(value any, path string) []any {
	if path == "" {
		if list, ok := value.([]any); ok {
			return list
		}
		if value == nil {
			return nil
		}
		return []any{value}
	}
	head, rest, _ := strings.Cut(path, ".")
	switch v := value.(type) {
	case core.Params:
		return collect(v[head], rest)
	case core.Record:
		return collect(v[head], rest)
	case map[string]any:
		return collect(v[head], rest)
	case []any:
		var out []any
		for _, item := range v {
			out = append(out, collect(item, path)...)
		}
		return out
	}
	return nil
}

func checkTaxRate(value any) error {
	if value == nil {
		return nil
	}
	rate, err := ParseAmount(value)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	for _, allowed := range AllowedTaxRates {
		if rate.Equal(decimal.NewFromInt(allowed)) {
			return nil
		}
	}
	return fmt.Errorf("must be one of 0, 7 or 19")
}

func eventTypeValues() []any {
	values := make([]any, len(EventTypes))
	for i, t := range EventTypes {
		values[i] = t
	}
	return values
}
