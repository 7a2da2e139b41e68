package models

// Currency is an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	CAD Currency = "CAD"
	TRY Currency = "TRY"
)

// SupportedCurrencies lists every currency a bill or rate may use.
var SupportedCurrencies = []Currency{USD, EUR, GBP, JPY, CAD, TRY}

// IsValid reports whether c is one of the supported currencies.
func (c Currency) IsValid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}
