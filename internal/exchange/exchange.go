// Package exchange resolves exchange rates and converts amounts between currencies.
//
// Amounts are rounded to two decimal places with banker's rounding, and only
// once, at the end of a conversion.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ninjatab/internal/models"
)

// AmountPlaces is the number of fraction digits kept on converted amounts.
const AmountPlaces = 2

// RateFinder looks up stored exchange rates.
type RateFinder interface {
	// FindRate returns the most recent rate for from -> to whose effective date
	// is not after asOf. It returns nil and no error when no such rate exists.
	FindRate(ctx context.Context, from, to models.Currency, asOf time.Time) (*models.ExchangeRate, error)
}

// RateNotFoundError is returned when neither a direct nor an inverse rate exists.
type RateNotFoundError struct {
	From models.Currency
	To   models.Currency
	AsOf time.Time
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no exchange rate found for %s to %s as of %s",
		e.From, e.To, e.AsOf.Format(time.DateOnly))
}

// Converter resolves rates through a RateFinder. It never writes rates.
type Converter struct {
	rates RateFinder
	now   func() time.Time
}

// NewConverter creates a Converter backed by rates.
func NewConverter(rates RateFinder) *Converter {
	return &Converter{rates: rates, now: time.Now}
}

// Rate returns how many units of to one unit of from buys as of asOf.
// A zero asOf means now.
func (c *Converter) Rate(ctx context.Context, from, to models.Currency, asOf time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if asOf.IsZero() {
		asOf = c.now()
	}

	direct, err := c.rates.FindRate(ctx, from, to, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find rate %s->%s: %w", from, to, err)
	}
	if direct != nil {
		return direct.Rate, nil
	}

	inverse, err := c.rates.FindRate(ctx, to, from, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find rate %s->%s: %w", to, from, err)
	}
	if inverse != nil && !inverse.Rate.IsZero() {
		return decimal.NewFromInt(1).Div(inverse.Rate), nil
	}

	return decimal.Zero, &RateNotFoundError{From: from, To: to, AsOf: asOf}
}

// Convert multiplies amount by the resolved rate and rounds the result to 2dp.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to models.Currency, asOf time.Time) (decimal.Decimal, error) {
	if from == to {
		return Round(amount), nil
	}

	rate, err := c.Rate(ctx, from, to, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return Round(amount.Mul(rate)), nil
}

// Round quantizes a currency amount to AmountPlaces using banker's rounding.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(AmountPlaces)
}
