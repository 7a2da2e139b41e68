package calculator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ninjatab/internal/models"
)

// Converter converts an amount between currencies. *exchange.Converter implements it.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to models.Currency, asOf time.Time) (decimal.Decimal, error)
}

// Balance is one person's net position across a tab.
type Balance struct {
	PersonID string

	// Amount is positive when the person is owed money, negative when they owe.
	Amount decimal.Decimal

	// TotalPaid is what others claimed on bills this person paid.
	TotalPaid decimal.Decimal

	// TotalOwed is what this person claimed on bills others paid.
	TotalOwed decimal.Decimal
}

// BalanceOptions controls currency normalization in ComputeBalances.
type BalanceOptions struct {
	// Currency is the settlement currency. Empty leaves amounts in their bill currency.
	Currency models.Currency

	// Converter is required whenever a bill currency differs from Currency.
	Converter Converter

	// AsOf selects the exchange rates used. Zero means now.
	AsOf time.Time
}

// ComputeBalances walks the non-archived, paid bills and their claims and
// returns one balance per person whose net amount is non-zero, ordered by
// person ID.
//
// Algorithm:
// - Archived bills and bills without a payer are skipped entirely
// - Each positive claim by someone other than the payer is converted to the
//   settlement currency and subtracted from the claimant
// - The payer is credited with the sum of those converted claims
//
// A conversion failure aborts the whole computation; partial balances are
// never returned.
func ComputeBalances(ctx context.Context, bills []models.Bill, opts BalanceOptions) ([]Balance, error) {
	balances := make(map[string]*Balance)
	get := func(personID string) *Balance {
		b, ok := balances[personID]
		if !ok {
			b = &Balance{PersonID: personID}
			balances[personID] = b
		}
		return b
	}

	for _, bill := range bills {
		if bill.Status == models.BillStatusArchived {
			continue
		}
		// Skip bills without payer (can't calculate balances)
		if bill.PaidByID == "" {
			continue
		}

		payerTotal := decimal.Zero
		for _, item := range bill.LineItems {
			for _, claim := range item.Claims {
				if !claim.CalculatedAmount.Valid || !claim.CalculatedAmount.Decimal.IsPositive() {
					continue
				}
				if claim.PersonID == bill.PaidByID {
					continue
				}

				amount, err := convert(ctx, claim.CalculatedAmount.Decimal, bill.Currency, opts)
				if err != nil {
					return nil, fmt.Errorf("bill %s: %w", bill.ID, err)
				}

				debtor := get(claim.PersonID)
				debtor.Amount = debtor.Amount.Sub(amount)
				debtor.TotalOwed = debtor.TotalOwed.Add(amount)
				payerTotal = payerTotal.Add(amount)
			}
		}

		payer := get(bill.PaidByID)
		payer.Amount = payer.Amount.Add(payerTotal)
		payer.TotalPaid = payer.TotalPaid.Add(payerTotal)
	}

	result := make([]Balance, 0, len(balances))
	for _, b := range balances {
		if b.Amount.IsZero() {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PersonID < result[j].PersonID })

	return result, nil
}

func convert(ctx context.Context, amount decimal.Decimal, from models.Currency, opts BalanceOptions) (decimal.Decimal, error) {
	if opts.Currency == "" || opts.Currency == from {
		return amount, nil
	}
	if opts.Converter == nil {
		return decimal.Zero, fmt.Errorf("no converter for %s to %s", from, opts.Currency)
	}
	return opts.Converter.Convert(ctx, amount, from, opts.Currency, opts.AsOf)
}
