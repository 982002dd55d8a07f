package transform

import (
	"fmt"
	"strings"

	"github.com/lexware-office/go-lexware-client/core"
)

// Contact kinds.
const (
	ContactCompany = "company"
	ContactPerson  = "person"
)

type contactPersonInput struct {
	Salutation   string `json:"salutation"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Primary      bool   `json:"primary"`
	EmailAddress string `json:"emailAddress"`
	PhoneNumber  string `json:"phoneNumber"`
}

type contactInput struct {
	// company
	Name                 string               `json:"name"`
	TaxNumber            string               `json:"taxNumber"`
	VatRegistrationID    string               `json:"vatRegistrationId"`
	AllowTaxFreeInvoices bool                 `json:"allowTaxFreeInvoices"`
	ContactPersons       []contactPersonInput `json:"contactPersons"`

	// person
	Salutation string `json:"salutation"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`

	Customer *bool `json:"customer"`
	Vendor   bool  `json:"vendor"`

	Supplement  string `json:"supplement"`
	Street      string `json:"street"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`

	ShippingStreet      string `json:"shippingStreet"`
	ShippingZip         string `json:"shippingZip"`
	ShippingCity        string `json:"shippingCity"`
	ShippingCountryCode string `json:"shippingCountryCode"`

	Email       string `json:"email"`
	PhoneNumber string `json:"phone"`
	Mobile      string `json:"mobile"`
	Note        string `json:"note"`
}

// TransformContactData builds a contact body for kind "company" or "person".
// The contact gets the customer role unless customer is explicitly false,
// version 0, and a billing address that defaults to country DE.
func TransformContactData(kind string, fields core.Params) (core.Params, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != ContactCompany && kind != ContactPerson {
		return nil, &core.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown contact kind %q (company or person)", kind)}
	}
	fields, err := listField(fields, "contactPersons")
	if err != nil {
		return nil, err
	}
	var in contactInput
	if err := decode(fields, &in); err != nil {
		return nil, err
	}

	roles := map[string]any{}
	if in.Customer == nil || *in.Customer {
		roles["customer"] = map[string]any{}
	}
	if in.Vendor {
		roles["vendor"] = map[string]any{}
	}

	body := core.Params{
		"version": 0,
		"roles":   roles,
	}

	if kind == ContactCompany {
		company := map[string]any{}
		setIf(company, "name", in.Name)
		setIf(company, "taxNumber", in.TaxNumber)
		setIf(company, "vatRegistrationId", in.VatRegistrationID)
		if in.AllowTaxFreeInvoices {
			company["allowTaxFreeInvoices"] = true
		}
		if len(in.ContactPersons) > 0 {
			persons := make([]any, 0, len(in.ContactPersons))
			for _, p := range in.ContactPersons {
				person := map[string]any{"primary": p.Primary}
				setIf(person, "salutation", p.Salutation)
				setIf(person, "firstName", p.FirstName)
				setIf(person, "lastName", p.LastName)
				setIf(person, "emailAddress", p.EmailAddress)
				setIf(person, "phoneNumber", p.PhoneNumber)
				persons = append(persons, person)
			}
			company["contactPersons"] = persons
		}
		body["company"] = company
	} else {
		person := map[string]any{}
		setIf(person, "salutation", in.Salutation)
		setIf(person, "firstName", in.FirstName)
		setIf(person, "lastName", in.LastName)
		body["person"] = person
	}

	addresses := map[string]any{
		"billing": []any{address(in.Supplement, in.Street, in.Zip, in.City, in.CountryCode)},
	}
	if in.ShippingStreet != "" || in.ShippingCity != "" || in.ShippingZip != "" {
		addresses["shipping"] = []any{address("", in.ShippingStreet, in.ShippingZip, in.ShippingCity, in.ShippingCountryCode)}
	}
	body["addresses"] = addresses

	if in.Email != "" {
		body["emailAddresses"] = map[string]any{"business": []any{strings.TrimSpace(in.Email)}}
	}
	phones := map[string]any{}
	if in.PhoneNumber != "" {
		phones["business"] = []any{strings.TrimSpace(in.PhoneNumber)}
	}
	if in.Mobile != "" {
		phones["mobile"] = []any{strings.TrimSpace(in.Mobile)}
	}
	if len(phones) > 0 {
		body["phoneNumbers"] = phones
	}
	if in.Note != "" {
		body["note"] = in.Note
	}
	return body, nil
}

func address(supplement, street, zip, city, countryCode string) map[string]any {
	addr := map[string]any{}
	setIf(addr, "supplement", supplement)
	setIf(addr, "street", street)
	setIf(addr, "zip", zip)
	setIf(addr, "city", city)
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	addr["countryCode"] = countryCode
	return addr
}
