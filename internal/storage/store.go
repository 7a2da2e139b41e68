// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/ninjatab/internal/models"
)

// ErrNotFound is wrapped by every lookup of a missing record.
var ErrNotFound = errors.New("not found")

// Store defines the interface for tab storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateTab persists a new tab and its people.
	// The tab.ID and person IDs will be populated by the store.
	CreateTab(ctx context.Context, tab *models.Tab) error

	// GetTab retrieves a tab with its people.
	GetTab(ctx context.Context, tabID string) (*models.Tab, error)

	// ListTabs retrieves all tabs, newest first, without people.
	ListTabs(ctx context.Context) ([]*models.Tab, error)

	// DeleteTab removes a tab and everything that belongs to it.
	DeleteTab(ctx context.Context, tabID string) error

	// SetTabSettled records whether the last simplification left anything to pay.
	SetTabSettled(ctx context.Context, tabID string, settled bool) error

	// CreateBill persists a bill with its line items and claims.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill with its full line item and claim tree.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBills retrieves full bills for a tab, or every bill when tabID is empty.
	ListBills(ctx context.Context, tabID string) ([]*models.Bill, error)

	// UpdateBillStatus changes a bill's lifecycle status.
	UpdateBillStatus(ctx context.Context, billID string, status models.BillStatus) error

	// ReplaceClaims deletes every claim on each given line item and inserts the
	// new set, all in one transaction.
	ReplaceClaims(ctx context.Context, claimsByLineItem map[string][]models.PersonClaim) error

	// CreateExchangeRate persists a new rate.
	CreateExchangeRate(ctx context.Context, rate *models.ExchangeRate) error

	// FindRate returns the latest rate for from -> to effective at or before asOf,
	// or nil when there is none.
	FindRate(ctx context.Context, from, to models.Currency, asOf time.Time) (*models.ExchangeRate, error)

	// ListExchangeRates retrieves every stored rate, newest first.
	ListExchangeRates(ctx context.Context) ([]*models.ExchangeRate, error)

	// ReplaceSettlements deletes a tab's settlements and inserts the new set in
	// one transaction.
	ReplaceSettlements(ctx context.Context, tabID string, settlements []models.Settlement) error

	// ListSettlements retrieves a tab's settlements in creation order.
	ListSettlements(ctx context.Context, tabID string) ([]*models.Settlement, error)

	// SetSettlementPaid flips the paid flag on a settlement.
	SetSettlementPaid(ctx context.Context, settlementID string, paid bool) error

	// Close releases any resources held by the store.
	Close() error
}
