package transform

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexware-office/go-lexware-client/core"
)

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
	return at
}

func TestSanitizeUpdateData(t *testing.T) {
	data := core.Params{
		"id":             "x",
		"version":        3,
		"organizationId": "o",
		"createdAt":      "c",
		"updatedAt":      "u",
		"foo":            1,
	}
	once := SanitizeUpdateData(data)
	assert.Equal(t, core.Params{"foo": 1}, once)
	assert.Equal(t, once, SanitizeUpdateData(once))
	assert.Len(t, data, 6, "input must not be modified")
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		data   core.Params
		fields []string
		want   []string
	}{
		{"all missing", core.Params{}, []string{"a", "b"}, []string{"a", "b"}},
		{"blank string", core.Params{"a": "x", "b": ""}, []string{"a", "b"}, []string{"b"}},
		{"whitespace", core.Params{"a": "  "}, []string{"a"}, []string{"a"}},
		{"nil value", core.Params{"a": nil}, []string{"a"}, []string{"a"}},
		{"zero number present", core.Params{"a": 0}, []string{"a"}, []string{}},
		{"empty list", core.Params{"a": []any{}}, []string{"a"}, []string{"a"}},
		{"nested", core.Params{"company": map[string]any{"name": "Acme"}}, []string{"company.name", "person.lastName"}, []string{"person.lastName"}},
		{"no fields", core.Params{"a": 1}, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRequiredFields(tt.data, tt.fields))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"12,50", "12.5"},
		{"12.50", "12.5"},
		{19, "19"},
		{int64(7), "7"},
		{0.1, "0.1"},
		{decimal.RequireFromString("3.333"), "3.333"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.String())
	}
	_, err := ParseAmount(true)
	assert.Error(t, err)
	_, err = ParseAmount("abc")
	assert.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	at := fixedNow(t)

	got, err := normalizeDate("", true)
	require.NoError(t, err)
	assert.Equal(t, FormatDate(at), got)

	got, err = normalizeDate("", false)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = normalizeDate("2026-01-31", false)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-31T00:00:00.000+00:00", got)

	got, err = normalizeDate("2026-01-31T10:00:00+01:00", false)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-31T10:00:00.000+01:00", got)

	_, err = normalizeDate("31.01.2026", false)
	assert.True(t, core.IsValidationErr(err))
}

func TestListField(t *testing.T) {
	fields := core.Params{"lineItems": `[{"name":"a"}]`}
	out, err := listField(fields, "lineItems")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "a"}}, out["lineItems"])
	assert.IsType(t, "", fields["lineItems"])

	out, err = listField(core.Params{"lineItems": " "}, "lineItems")
	require.NoError(t, err)
	assert.NotContains(t, out, "lineItems")

	_, err = listField(core.Params{"lineItems": "{"}, "lineItems")
	assert.True(t, core.IsValidationErr(err))
}
