// Package events publishes notifications about recomputed settlements.
package events

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ninjatab/internal/models"
)

// SettlementsReplacedType is the message type of SettlementsReplaced.
const SettlementsReplacedType = "settlements.replaced"

// SettlementsReplaced is emitted after a tab's settlement set was replaced.
type SettlementsReplaced struct {
	Type        string            `json:"type"`
	TabID       string            `json:"tab_id"`
	Currency    string            `json:"currency"`
	Settlements []SettlementEntry `json:"settlements"`
	Timestamp   int64             `json:"timestamp"`
}

// SettlementEntry is one payment inside SettlementsReplaced.
type SettlementEntry struct {
	ID           string          `json:"id"`
	FromPersonID string          `json:"from_person_id"`
	ToPersonID   string          `json:"to_person_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewSettlementsReplaced builds the event for a freshly persisted set.
func NewSettlementsReplaced(tabID string, currency models.Currency, settlements []models.Settlement, now int64) SettlementsReplaced {
	entries := make([]SettlementEntry, len(settlements))
	for i, s := range settlements {
		entries[i] = SettlementEntry{
			ID:           s.ID,
			FromPersonID: s.FromPersonID,
			ToPersonID:   s.ToPersonID,
			Amount:       s.Amount,
		}
	}
	return SettlementsReplaced{
		Type:        SettlementsReplacedType,
		TabID:       tabID,
		Currency:    string(currency),
		Settlements: entries,
		Timestamp:   now,
	}
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	PublishSettlementsReplaced(ctx context.Context, event SettlementsReplaced) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSettlementsReplaced(context.Context, SettlementsReplaced) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
