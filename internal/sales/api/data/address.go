package data

import "github.com/broady/dataobject/reflection"

// Address is a postal address.
type Address struct {
	Street    []string
	City      string
	Postcode  string
	CountryID string
	Telephone string
}

func (a Address) GetStreet() []string  { return a.Street }
func (a Address) GetCity() string      { return a.City }
func (a Address) GetPostcode() string  { return a.Postcode }
func (a Address) GetCountryId() string { return a.CountryID }

func (a Address) GetTelephone() *string {
	if a.Telephone == "" {
		return nil
	}
	return &a.Telephone
}

func (Address) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Summary: "Address is a postal address.",
		Methods: map[string]reflection.Annotation{
			"GetStreet":    {Returns: "string[]", Description: "Street lines."},
			"GetCity":      {Returns: "string"},
			"GetPostcode":  {Returns: "string"},
			"GetCountryId": {Returns: "string", Description: "ISO 3166-1 alpha-2 country code."},
			"GetTelephone": {Returns: "string|null"},
		},
	}
}
