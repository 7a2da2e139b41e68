package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement represents a simplified payment between tab members to clear debts.
// The full set for a tab is replaced every time the tab is simplified.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// TabID is the tab this settlement belongs to.
	TabID string

	// FromPersonID is the person who pays (debtor settling up).
	FromPersonID string

	// ToPersonID is the person who receives payment (creditor being paid).
	ToPersonID string

	// Amount is the positive payment amount in Currency.
	Amount decimal.Decimal

	Currency Currency

	// Paid is flipped by the payer once the money has moved.
	Paid bool

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// ExchangeRate converts one unit of From into Rate units of To,
// effective from EffectiveDate onwards.
type ExchangeRate struct {
	ID            string
	From          Currency
	To            Currency
	Rate          decimal.Decimal
	EffectiveDate time.Time
	CreatedAt     int64
}
