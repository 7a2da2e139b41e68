package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/ninjatab/internal/exchange"
	"github.com/mmynk/ninjatab/internal/models"
)

// CreateExchangeRate records a directed rate. The effective date defaults to today.
func (s *TabService) CreateExchangeRate(ctx context.Context, req *connect.Request[CreateExchangeRateRequest]) (*connect.Response[CreateExchangeRateResponse], error) {
	from, to, err := currencyPair(req.Msg.FromCurrency, req.Msg.ToCurrency)
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("rate must convert between two different currencies"))
	}
	if !req.Msg.Rate.IsPositive() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("rate must be positive, got %s", req.Msg.Rate))
	}

	effective, err := parseDate(req.Msg.EffectiveDate)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid effective_date %q: %w", req.Msg.EffectiveDate, err))
	}
	if effective.IsZero() {
		effective = s.today()
	}

	rate := &models.ExchangeRate{
		From:          from,
		To:            to,
		Rate:          req.Msg.Rate,
		EffectiveDate: effective,
	}
	if err := s.store.CreateExchangeRate(ctx, rate); err != nil {
		slog.Error("CreateExchangeRate failed", "from", from, "to", to, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Exchange rate created", "from", from, "to", to, "rate", rate.Rate, "effective_date", effective.Format(dateLayout))
	return connect.NewResponse(&CreateExchangeRateResponse{Rate: rateToMessage(rate)}), nil
}

// ListExchangeRates returns every stored rate, newest effective date first.
func (s *TabService) ListExchangeRates(ctx context.Context, req *connect.Request[ListExchangeRatesRequest]) (*connect.Response[ListExchangeRatesResponse], error) {
	rates, err := s.store.ListExchangeRates(ctx)
	if err != nil {
		slog.Error("ListExchangeRates failed", "error", err)
		return nil, toConnectError(err)
	}

	result := make([]*ExchangeRate, len(rates))
	for i, rate := range rates {
		result[i] = rateToMessage(rate)
	}
	return connect.NewResponse(&ListExchangeRatesResponse{Rates: result}), nil
}

// ConvertAmount converts an amount with the rate in effect on as_of.
func (s *TabService) ConvertAmount(ctx context.Context, req *connect.Request[ConvertAmountRequest]) (*connect.Response[ConvertAmountResponse], error) {
	from, to, err := currencyPair(req.Msg.FromCurrency, req.Msg.ToCurrency)
	if err != nil {
		return nil, err
	}
	asOf, err := parseDate(req.Msg.AsOf)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid as_of %q: %w", req.Msg.AsOf, err))
	}
	if !asOf.IsZero() {
		// A rate effective on the requested day counts.
		asOf = asOf.Add(24*time.Hour - time.Second)
	}

	rate, err := s.converter.Rate(ctx, from, to, asOf)
	if err != nil {
		slog.Warn("ConvertAmount failed", "from", from, "to", to, "as_of", req.Msg.AsOf, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&ConvertAmountResponse{
		Amount:   exchange.Round(req.Msg.Amount.Mul(rate)),
		Currency: string(to),
		Rate:     rate,
	}), nil
}

func currencyPair(fromCode, toCode string) (models.Currency, models.Currency, error) {
	from, to := models.Currency(fromCode), models.Currency(toCode)
	if !from.IsValid() {
		return "", "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported currency %q", fromCode))
	}
	if !to.IsValid() {
		return "", "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported currency %q", toCode))
	}
	return from, to, nil
}

// today is midnight UTC of the current day.
func (s *TabService) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}
