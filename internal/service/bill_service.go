package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/ninjatab/internal/calculator"
	"github.com/mmynk/ninjatab/internal/models"
)

// CreateBill validates a bill against its tab, calculates the claims of every
// line item and persists the whole tree.
func (s *TabService) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error) {
	msg := req.Msg
	if msg.TabID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("tab_id is required"))
	}
	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("bill description is required"))
	}

	tab, err := s.store.GetTab(ctx, msg.TabID)
	if err != nil {
		slog.Warn("CreateBill: tab lookup failed", "tab_id", msg.TabID, "error", err)
		return nil, toConnectError(err)
	}

	currency := models.Currency(msg.Currency)
	if currency == "" {
		currency = tab.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported currency %q", msg.Currency))
	}

	if !tab.HasPerson(msg.CreatorID) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("creator_id '%s' is not on this tab", msg.CreatorID))
	}
	if msg.PaidByID != "" && !tab.HasPerson(msg.PaidByID) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("paid_by_id '%s' is not on this tab", msg.PaidByID))
	}

	date, err := parseDate(msg.Date)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid date %q: %w", msg.Date, err))
	}

	items := make([]models.LineItem, len(msg.LineItems))
	for i, in := range msg.LineItems {
		splitType := models.SplitType(in.SplitType)
		if splitType == "" {
			splitType = models.SplitTypeShares
		}
		item := models.LineItem{
			Description: in.Description,
			Value:       in.Value,
			SplitType:   splitType,
		}

		claims, err := buildClaims(tab, item, in.PersonSplits)
		if err != nil {
			slog.Warn("CreateBill: invalid splits", "tab_id", tab.ID, "line_item", i, "error", err)
			return nil, toConnectError(fmt.Errorf("line item %d: %w", i+1, err))
		}
		item.Claims = claims
		items[i] = item
	}

	bill := &models.Bill{
		TabID:       tab.ID,
		Description: description,
		Currency:    currency,
		Status:      models.BillStatusOpen,
		CreatorID:   msg.CreatorID,
		PaidByID:    msg.PaidByID,
		Date:        date,
		LineItems:   items,
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "tab_id", tab.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Bill created",
		"bill_id", bill.ID,
		"tab_id", bill.TabID,
		"currency", bill.Currency,
		"total", bill.TotalAmount(),
		"line_items", len(bill.LineItems),
	)
	return connect.NewResponse(&CreateBillResponse{Bill: billToMessage(bill)}), nil
}

// GetBill retrieves a bill with all its line items and claims.
func (s *TabService) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error) {
	if req.Msg.BillID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("bill_id is required"))
	}

	bill, err := s.store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		slog.Warn("GetBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetBillResponse{Bill: billToMessage(bill)}), nil
}

// ListBills returns the bills of one tab, or all bills when no tab is given.
func (s *TabService) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	bills, err := s.store.ListBills(ctx, req.Msg.TabID)
	if err != nil {
		slog.Error("ListBills failed", "tab_id", req.Msg.TabID, "error", err)
		return nil, toConnectError(err)
	}

	result := make([]*Bill, len(bills))
	for i, bill := range bills {
		result[i] = billToMessage(bill)
	}
	return connect.NewResponse(&ListBillsResponse{Bills: result}), nil
}

// SubmitBillSplits replaces the claims of the listed line items with freshly
// calculated ones. Line items not mentioned keep their claims.
func (s *TabService) SubmitBillSplits(ctx context.Context, req *connect.Request[SubmitBillSplitsRequest]) (*connect.Response[SubmitBillSplitsResponse], error) {
	if req.Msg.BillID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("bill_id is required"))
	}

	bill, err := s.store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		slog.Warn("SubmitBillSplits: bill lookup failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}
	tab, err := s.store.GetTab(ctx, bill.TabID)
	if err != nil {
		slog.Error("SubmitBillSplits: tab lookup failed", "tab_id", bill.TabID, "error", err)
		return nil, toConnectError(err)
	}

	itemsByID := make(map[string]models.LineItem, len(bill.LineItems))
	for _, item := range bill.LineItems {
		itemsByID[item.ID] = item
	}

	replacements := make(map[string][]models.PersonClaim, len(req.Msg.LineItemSplits))
	for _, split := range req.Msg.LineItemSplits {
		item, ok := itemsByID[split.LineItemID]
		if !ok {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("line item %s is not on bill %s", split.LineItemID, bill.ID))
		}
		if _, dup := replacements[item.ID]; dup {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("line item %s listed twice", item.ID))
		}

		claims, err := buildClaims(tab, item, split.PersonSplits)
		if err != nil {
			slog.Warn("SubmitBillSplits: invalid splits", "bill_id", bill.ID, "line_item_id", item.ID, "error", err)
			return nil, toConnectError(fmt.Errorf("line item %s: %w", item.ID, err))
		}
		replacements[item.ID] = claims
	}

	if err := s.store.ReplaceClaims(ctx, replacements); err != nil {
		slog.Error("SubmitBillSplits failed", "bill_id", bill.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.GetBill(ctx, bill.ID)
	if err != nil {
		slog.Error("SubmitBillSplits: reload failed", "bill_id", bill.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Bill splits submitted", "bill_id", bill.ID, "line_items", len(replacements))
	return connect.NewResponse(&SubmitBillSplitsResponse{Bill: billToMessage(updated)}), nil
}

// UpdateBillStatus moves a bill through its lifecycle. Archiving removes the
// bill from every later balance computation.
func (s *TabService) UpdateBillStatus(ctx context.Context, req *connect.Request[UpdateBillStatusRequest]) (*connect.Response[UpdateBillStatusResponse], error) {
	if req.Msg.BillID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("bill_id is required"))
	}
	status := models.BillStatus(req.Msg.Status)
	if !status.IsValid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown bill status %q", req.Msg.Status))
	}

	if err := s.store.UpdateBillStatus(ctx, req.Msg.BillID, status); err != nil {
		slog.Warn("UpdateBillStatus failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	bill, err := s.store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		slog.Error("UpdateBillStatus: reload failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Bill status updated", "bill_id", bill.ID, "status", bill.Status)
	return connect.NewResponse(&UpdateBillStatusResponse{Bill: billToMessage(bill)}), nil
}

// buildClaims checks that every claimant is on the tab, validates the raw
// splits and runs the claim calculator.
func buildClaims(tab *models.Tab, item models.LineItem, splits []PersonSplit) ([]models.PersonClaim, error) {
	for _, split := range splits {
		if split.PersonID != "" && !tab.HasPerson(split.PersonID) {
			return nil, fmt.Errorf("%w: person %s is not on this tab", calculator.ErrInvalidSplit, split.PersonID)
		}
	}

	inputs := splitInputs(splits)
	if err := calculator.ValidateSplits(item, inputs); err != nil {
		return nil, err
	}
	return calculator.CalculateClaims(item, inputs), nil
}
