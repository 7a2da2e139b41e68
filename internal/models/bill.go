package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus tracks where a bill is in its lifecycle.
type BillStatus string

const (
	BillStatusOpen       BillStatus = "open"
	BillStatusAllClaimed BillStatus = "all_claimed"
	BillStatusAllPaid    BillStatus = "all_paid"
	// BillStatusArchived bills never contribute to balances.
	BillStatusArchived BillStatus = "archived"
)

// IsValid reports whether s is a known status.
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusOpen, BillStatusAllClaimed, BillStatusAllPaid, BillStatusArchived:
		return true
	}
	return false
}

// SplitType decides how a line item's claims are turned into amounts.
type SplitType string

const (
	// SplitTypeShares divides the line item value proportionally to share counts.
	SplitTypeShares SplitType = "shares"
	// SplitTypeValue takes each claim's split value as the owed amount.
	SplitTypeValue SplitType = "value"
)

// IsValid reports whether t is a known split type.
func (t SplitType) IsValid() bool {
	return t == SplitTypeShares || t == SplitTypeValue
}

// Bill is a single expense on a tab.
// A bill loaded from storage carries its full line item and claim tree.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// TabID is the tab this bill belongs to.
	TabID string

	// Description is the human-readable name for the bill (e.g., "Dinner").
	Description string

	// Currency all line item values on this bill are expressed in.
	Currency Currency

	Status BillStatus

	// CreatorID is the person who entered the bill.
	CreatorID string

	// PaidByID is the person who fronted the money.
	// Empty means nobody has paid yet and the bill has no balance effect.
	PaidByID string

	// Date is the day the expense happened (time of day is ignored).
	Date time.Time

	LineItems []LineItem

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// TotalAmount is the sum of all line item values.
func (b *Bill) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.LineItems {
		total = total.Add(item.Value)
	}
	return total
}

// LineItem is a sub-amount of a bill subject to its own split.
type LineItem struct {
	ID          string
	BillID      string
	Description string

	// Value is the positive amount of this line, in the bill currency.
	Value decimal.Decimal

	SplitType SplitType

	Claims []PersonClaim
}

// PersonClaim associates one person with one line item.
// At most one claim exists per (person, line item).
type PersonClaim struct {
	ID         string
	PersonID   string
	LineItemID string

	// SplitValue is the raw input: a share count or a direct value,
	// depending on the line item's split type.
	SplitValue decimal.NullDecimal

	// CalculatedAmount is the currency amount this person owes, 2dp.
	// Invalid when no split value was given.
	CalculatedAmount decimal.NullDecimal

	HasClaimed bool
}
