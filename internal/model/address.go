package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Address is a postal address. Email lives on the shipping address and receives order notifications.
type Address struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Complete reports whether the address can be shipped to and notified.
func (a *Address) Complete() bool {
	if a == nil {
		return false
	}
	for _, v := range []string{a.Name, a.Email, a.Line1, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// ShippingOption is a delivery method offered at checkout.
type ShippingOption struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimatedDays"`
}
