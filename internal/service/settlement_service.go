package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/ninjatab/internal/calculator"
	"github.com/mmynk/ninjatab/internal/events"
	"github.com/mmynk/ninjatab/internal/exchange"
	"github.com/mmynk/ninjatab/internal/models"
)

// GetTabBalances returns every person's net position in the settlement currency.
// A missing exchange rate fails the call exactly like SimplifyTab does.
func (s *TabService) GetTabBalances(ctx context.Context, req *connect.Request[GetTabBalancesRequest]) (*connect.Response[GetTabBalancesResponse], error) {
	if req.Msg.TabID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("tab_id is required"))
	}

	tab, bills, err := s.loadTab(ctx, req.Msg.TabID)
	if err != nil {
		slog.Warn("GetTabBalances: load failed", "tab_id", req.Msg.TabID, "error", err)
		return nil, toConnectError(err)
	}

	currency, err := resolveCurrency(req.Msg.Currency, tab, bills)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = tab.DefaultCurrency
	}

	balances, err := calculator.ComputeBalances(ctx, bills, calculator.BalanceOptions{
		Currency:  currency,
		Converter: s.converter,
	})
	if err != nil {
		slog.Warn("GetTabBalances failed", "tab_id", tab.ID, "currency", currency, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Tab balances computed", "tab_id", tab.ID, "currency", currency, "non_zero", len(balances))
	return connect.NewResponse(&GetTabBalancesResponse{
		Currency: string(currency),
		Balances: personBalances(tab, balances),
	}), nil
}

// SimplifyTab recomputes the tab's settlement set: balances are aggregated,
// reduced to transactions and persisted in place of the previous set.
// Runs for the same tab never overlap.
func (s *TabService) SimplifyTab(ctx context.Context, req *connect.Request[SimplifyTabRequest]) (*connect.Response[SimplifyTabResponse], error) {
	if req.Msg.TabID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("tab_id is required"))
	}

	unlock := s.locks.lock(req.Msg.TabID)
	defer unlock()

	settlements, currency, err := s.simplify(ctx, req.Msg.TabID, req.Msg.Currency)
	if err != nil {
		s.metrics.ObserveSimplify(simplifyResult(err), 0)
		var connectErr *connect.Error
		if errors.As(err, &connectErr) {
			return nil, connectErr
		}
		slog.Warn("SimplifyTab failed", "tab_id", req.Msg.TabID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ObserveSimplify("ok", len(settlements))

	event := events.NewSettlementsReplaced(req.Msg.TabID, currency, settlements, s.now().Unix())
	if err := s.publisher.PublishSettlementsReplaced(ctx, event); err != nil {
		// The new set is already committed.
		slog.Error("Failed to publish settlements event", "tab_id", req.Msg.TabID, "error", err)
	}

	result := make([]Settlement, len(settlements))
	for i := range settlements {
		result[i] = settlementToMessage(&settlements[i])
	}

	slog.Info("Tab simplified", "tab_id", req.Msg.TabID, "currency", currency, "settlements", len(result))
	return connect.NewResponse(&SimplifyTabResponse{
		Currency:    string(currency),
		Settlements: result,
	}), nil
}

func (s *TabService) simplify(ctx context.Context, tabID, requested string) ([]models.Settlement, models.Currency, error) {
	tab, bills, err := s.loadTab(ctx, tabID)
	if err != nil {
		return nil, "", err
	}
	if len(bills) == 0 {
		return nil, "", fmt.Errorf("tab %s: %w", tabID, ErrNoBills)
	}

	currency, err := resolveCurrency(requested, tab, bills)
	if err != nil {
		return nil, "", err
	}

	balances, err := calculator.ComputeBalances(ctx, bills, calculator.BalanceOptions{
		Currency:  currency,
		Converter: s.converter,
	})
	if err != nil {
		return nil, "", err
	}

	transactions := calculator.Simplify(balances)
	settlements := make([]models.Settlement, len(transactions))
	for i, t := range transactions {
		settlements[i] = models.Settlement{
			TabID:        tab.ID,
			FromPersonID: t.PayerID,
			ToPersonID:   t.PayeeID,
			Amount:       t.Amount,
			Currency:     currency,
		}
	}

	if err := s.store.ReplaceSettlements(ctx, tab.ID, settlements); err != nil {
		return nil, "", err
	}
	if err := s.store.SetTabSettled(ctx, tab.ID, len(settlements) == 0); err != nil {
		return nil, "", err
	}
	return settlements, currency, nil
}

// ListSettlements returns the tab's current settlement set in emission order.
func (s *TabService) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	if req.Msg.TabID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("tab_id is required"))
	}
	if _, err := s.store.GetTab(ctx, req.Msg.TabID); err != nil {
		slog.Warn("ListSettlements: tab lookup failed", "tab_id", req.Msg.TabID, "error", err)
		return nil, toConnectError(err)
	}

	settlements, err := s.store.ListSettlements(ctx, req.Msg.TabID)
	if err != nil {
		slog.Error("ListSettlements failed", "tab_id", req.Msg.TabID, "error", err)
		return nil, toConnectError(err)
	}

	result := make([]Settlement, len(settlements))
	for i, settlement := range settlements {
		result[i] = settlementToMessage(settlement)
	}
	return connect.NewResponse(&ListSettlementsResponse{Settlements: result}), nil
}

// MarkSettlementPaid flips the paid flag of one settlement.
func (s *TabService) MarkSettlementPaid(ctx context.Context, req *connect.Request[MarkSettlementPaidRequest]) (*connect.Response[MarkSettlementPaidResponse], error) {
	if req.Msg.SettlementID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("settlement_id is required"))
	}

	if err := s.store.SetSettlementPaid(ctx, req.Msg.SettlementID, req.Msg.Paid); err != nil {
		slog.Warn("MarkSettlementPaid failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Settlement updated", "settlement_id", req.Msg.SettlementID, "paid", req.Msg.Paid)
	return connect.NewResponse(&MarkSettlementPaidResponse{}), nil
}

// loadTab reads a tab and its non-archived bills.
func (s *TabService) loadTab(ctx context.Context, tabID string) (*models.Tab, []models.Bill, error) {
	tab, err := s.store.GetTab(ctx, tabID)
	if err != nil {
		return nil, nil, err
	}
	stored, err := s.store.ListBills(ctx, tabID)
	if err != nil {
		return nil, nil, err
	}

	bills := make([]models.Bill, 0, len(stored))
	for _, bill := range stored {
		if bill.Status == models.BillStatusArchived {
			continue
		}
		bills = append(bills, *bill)
	}
	return tab, bills, nil
}

// resolveCurrency picks the settlement currency: the requested one, then the
// tab's setting, then the only currency the bills use. It returns "" for a
// tab without bills.
func resolveCurrency(requested string, tab *models.Tab, bills []models.Bill) (models.Currency, error) {
	if requested != "" {
		currency := models.Currency(requested)
		if !currency.IsValid() {
			return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported currency %q", requested))
		}
		return currency, nil
	}
	if tab.SettlementCurrency != "" {
		return tab.SettlementCurrency, nil
	}

	var found models.Currency
	for _, bill := range bills {
		if found == "" {
			found = bill.Currency
			continue
		}
		if bill.Currency != found {
			return "", connect.NewError(connect.CodeFailedPrecondition, ErrMixedCurrencies)
		}
	}
	return found, nil
}

// personBalances lists every person on the tab in tab order, with zero
// amounts for people who are even.
func personBalances(tab *models.Tab, balances []calculator.Balance) []PersonBalance {
	byPerson := make(map[string]calculator.Balance, len(balances))
	for _, b := range balances {
		byPerson[b.PersonID] = b
	}

	result := make([]PersonBalance, 0, len(tab.People))
	for _, p := range tab.People {
		b, ok := byPerson[p.ID]
		if !ok {
			b = calculator.Balance{PersonID: p.ID, Amount: decimal.Zero, TotalPaid: decimal.Zero, TotalOwed: decimal.Zero}
		}
		result = append(result, PersonBalance{
			PersonID:   p.ID,
			PersonName: p.Name,
			Balance:    b.Amount,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
		})
	}
	return result
}

func simplifyResult(err error) string {
	var rateErr *exchange.RateNotFoundError
	switch {
	case errors.Is(err, ErrNoBills):
		return "no_bills"
	case errors.Is(err, ErrMixedCurrencies):
		return "mixed_currencies"
	case errors.As(err, &rateErr):
		return "rate_not_found"
	default:
		return "error"
	}
}
