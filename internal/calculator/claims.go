package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ninjatab/internal/exchange"
	"github.com/mmynk/ninjatab/internal/models"
)

// ErrInvalidSplit is wrapped by every split validation failure.
var ErrInvalidSplit = errors.New("invalid split")

// SplitInput is one person's raw split for a line item.
type SplitInput struct {
	PersonID string

	// SplitValue is a share count or a direct value, depending on the line
	// item's split type. Invalid means the person is listed without a value.
	SplitValue decimal.NullDecimal
}

// ValidateSplits checks raw splits before claims are calculated.
// Rejected input never reaches CalculateClaims.
func ValidateSplits(item models.LineItem, splits []SplitInput) error {
	if !item.Value.IsPositive() {
		return fmt.Errorf("%w: line item value must be positive, got %s", ErrInvalidSplit, item.Value)
	}
	if !item.SplitType.IsValid() {
		return fmt.Errorf("%w: unknown split type %q", ErrInvalidSplit, item.SplitType)
	}

	seen := make(map[string]bool, len(splits))
	assigned := decimal.Zero
	for _, s := range splits {
		if s.PersonID == "" {
			return fmt.Errorf("%w: person_id required", ErrInvalidSplit)
		}
		if seen[s.PersonID] {
			return fmt.Errorf("%w: person %s listed twice", ErrInvalidSplit, s.PersonID)
		}
		seen[s.PersonID] = true

		if !s.SplitValue.Valid {
			continue
		}
		if s.SplitValue.Decimal.IsNegative() {
			return fmt.Errorf("%w: split value for %s is negative", ErrInvalidSplit, s.PersonID)
		}
		assigned = assigned.Add(s.SplitValue.Decimal)
	}

	if item.SplitType == models.SplitTypeValue && assigned.GreaterThan(item.Value) {
		return fmt.Errorf("%w: total split value (%s) exceeds line item value (%s)",
			ErrInvalidSplit, assigned, item.Value)
	}
	return nil
}

// CalculateClaims turns the raw splits of one line item into claims.
//
// For value splits the split value is the owed amount. For share splits the
// line item value is divided proportionally to the present share counts; a
// batch with no shares at all owes nothing. Each amount is rounded to 2dp.
// Entries without a split value get no calculated amount.
//
// The result always replaces every previous claim on the line item.
func CalculateClaims(item models.LineItem, splits []SplitInput) []models.PersonClaim {
	totalShares := decimal.Zero
	if item.SplitType == models.SplitTypeShares {
		for _, s := range splits {
			if s.SplitValue.Valid {
				totalShares = totalShares.Add(s.SplitValue.Decimal)
			}
		}
	}

	claims := make([]models.PersonClaim, 0, len(splits))
	for _, s := range splits {
		claim := models.PersonClaim{
			PersonID:   s.PersonID,
			LineItemID: item.ID,
			SplitValue: s.SplitValue,
		}

		if s.SplitValue.Valid {
			var amount decimal.Decimal
			switch item.SplitType {
			case models.SplitTypeShares:
				if totalShares.IsPositive() {
					amount = item.Value.Mul(s.SplitValue.Decimal).Div(totalShares)
				}
			default:
				amount = s.SplitValue.Decimal
			}
			claim.CalculatedAmount = decimal.NewNullDecimal(exchange.Round(amount))
		}

		claims = append(claims, claim)
	}

	return claims
}
