// Package transform maps flat form-style input onto the nested request bodies
// of the Lexware Office API and checks create payloads before they are sent.
//
// All functions are pure: input Params are never modified.
package transform

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lexware-office/go-lexware-client/core"
)

// Defaults applied when a field is absent.
const (
	DefaultCurrency     = core.DefaultCurrency
	DefaultCountryCode  = core.DefaultCountryCode
	DefaultTaxRate      = core.DefaultTaxRate
	DefaultUnitName     = core.DefaultUnitName
	DefaultTaxType      = "net"
	DefaultShippingType = "delivery"
	DefaultLineItemType = "custom"

	// DateLayout is the timestamp format expected by the API.
	DateLayout = "2006-01-02T15:04:05.000-07:00"
)

// now is replaced in tests.
var now = time.Now

// decode fills target from fields using json tags with weak typing.
func decode(fields core.Params, target any) error {
	if fields == nil {
		fields = core.Params{}
	}
	if err := core.Record(fields).Fill(target); err != nil {
		return &core.ValidationError{Reason: err.Error()}
	}
	return nil
}

// money rounds an amount to cents and returns it in the JSON number form used by the API.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func moneyPtr(d *decimal.Decimal) (float64, bool) {
	if d == nil {
		return 0, false
	}
	return money(*d), true
}

// ParseAmount accepts numbers and numeric strings, including a decimal comma ("12,50").
func ParseAmount(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case json.Number:
		return decimal.NewFromString(val.String())
	case string:
		return core.ParseDecimal(val)
	}
	return decimal.Zero, fmt.Errorf("unsupported amount %v (%T)", v, v)
}

// FormatDate renders t in the API timestamp format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// normalizeDate accepts RFC 3339 timestamps, plain dates and the API format.
// Empty input yields the current time when fallbackNow is set.
func normalizeDate(value string, fallbackNow bool) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if fallbackNow {
			return FormatDate(now()), nil
		}
		return "", nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return FormatDate(t), nil
		}
	}
	return "", &core.ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a valid date", value)}
}

// setIf stores value under key unless it is the zero string.
func setIf(target map[string]any, key, value string) {
	if strings.TrimSpace(value) != "" {
		target[key] = strings.TrimSpace(value)
	}
}

// listField normalizes list input that may arrive as a slice or as a JSON encoded string.
func listField(fields core.Params, key string) (core.Params, error) {
	raw, ok := fields[key]
	if !ok {
		return fields, nil
	}
	s, isString := raw.(string)
	if !isString {
		return fields, nil
	}
	out := fields.Clone()
	if strings.TrimSpace(s) == "" {
		delete(out, key)
		return out, nil
	}
	var decoded []any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, &core.ValidationError{Field: key, Reason: "must be a JSON array: " + err.Error()}
	}
	out[key] = decoded
	return out, nil
}

// SanitizeUpdateData strips the fields maintained by the API (id, version,
// organizationId, createdAt, updatedAt). The result is a copy; applying it twice
// yields the same result.
func SanitizeUpdateData(data core.Params) core.Params {
	return data.Clone(core.ServerOwnedFields...)
}

// ValidateRequiredFields returns the fields that are absent, nil or blank strings,
// in the order given. Dotted paths ("company.name") address nested objects.
func ValidateRequiredFields(data core.Params, fields []string) []string {
	missing := []string{}
	for _, field := range fields {
		if isBlank(lookup(data, field)) {
			missing = append(missing, field)
		}
	}
	return missing
}

func lookup(data map[string]any, path string) any {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		switch m := current.(type) {
		case core.Params:
			current = m[part]
		case map[string]any:
			current = m[part]
		case core.Record:
			current = m[part]
		default:
			return nil
		}
	}
	return current
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []map[string]any:
		return len(val) == 0
	}
	return false
}
