package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexware-office/go-lexware-client/core"
)

func TestTransformContactData_Company(t *testing.T) {
	body, err := TransformContactData("company", core.Params{"name": "Acme"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Acme"}, body["company"])
	assert.Equal(t, 0, body["version"])
	assert.Equal(t, map[string]any{"customer": map[string]any{}}, body["roles"])
	billing := body["addresses"].(map[string]any)["billing"].([]any)
	require.Len(t, billing, 1)
	assert.Equal(t, "DE", billing[0].(map[string]any)["countryCode"])
	assert.NotContains(t, body, "person")
}

func TestTransformContactData_Person(t *testing.T) {
	body, err := TransformContactData("Person", core.Params{
		"salutation":  "Frau",
		"firstName":   "Inge",
		"lastName":    "Musterfrau",
		"customer":    "false",
		"vendor":      true,
		"email":       "inge@example.com",
		"mobile":      "+49 170 1234567",
		"street":      "Hauptstr. 1",
		"zip":         "10115",
		"city":        "Berlin",
		"countryCode": "AT",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"salutation": "Frau", "firstName": "Inge", "lastName": "Musterfrau"}, body["person"])
	assert.Equal(t, map[string]any{"vendor": map[string]any{}}, body["roles"])
	assert.Equal(t, map[string]any{"business": []any{"inge@example.com"}}, body["emailAddresses"])
	assert.Equal(t, map[string]any{"mobile": []any{"+49 170 1234567"}}, body["phoneNumbers"])
	billing := body["addresses"].(map[string]any)["billing"].([]any)[0].(map[string]any)
	assert.Equal(t, "Berlin", billing["city"])
	assert.Equal(t, "AT", billing["countryCode"])
}

func TestTransformContactData_ContactPersonsFromJSON(t *testing.T) {
	body, err := TransformContactData("company", core.Params{
		"name":           "Acme",
		"contactPersons": `[{"firstName":"Max","lastName":"Mustermann","primary":true}]`,
	})
	require.NoError(t, err)
	company := body["company"].(map[string]any)
	persons := company["contactPersons"].([]any)
	require.Len(t, persons, 1)
	assert.Equal(t, map[string]any{"firstName": "Max", "lastName": "Mustermann", "primary": true}, persons[0])
}

func TestTransformContactData_ShippingAddress(t *testing.T) {
	body, err := TransformContactData("company", core.Params{"name": "Acme", "shippingCity": "Köln"})
	require.NoError(t, err)
	shipping := body["addresses"].(map[string]any)["shipping"].([]any)
	assert.Equal(t, "Köln", shipping[0].(map[string]any)["city"])
}

func TestTransformContactData_UnknownKind(t *testing.T) {
	_, err := TransformContactData("robot", core.Params{})
	assert.True(t, core.IsValidationErr(err))
}
