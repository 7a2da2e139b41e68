package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/ninjatab/internal/models"
)

// ReplaceSettlements deletes every settlement of a tab and inserts the new set.
func (s *SQLiteStore) ReplaceSettlements(ctx context.Context, tabID string, settlements []models.Settlement) error {
	now := time.Now().Unix()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE tab_id = ?", tabID); err != nil {
			return fmt.Errorf("failed to delete settlements: %w", err)
		}

		for i := range settlements {
			settlement := &settlements[i]
			// Generate ID if not set
			if settlement.ID == "" {
				settlement.ID = uuid.New().String()
			}
			if settlement.CreatedAt == 0 {
				settlement.CreatedAt = now
			}
			settlement.TabID = tabID

			_, err := tx.ExecContext(ctx,
				`INSERT INTO settlements (id, tab_id, position, from_person_id, to_person_id, amount, currency, paid, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				settlement.ID, settlement.TabID, i, settlement.FromPersonID, settlement.ToPersonID,
				settlement.Amount, settlement.Currency, settlement.Paid, settlement.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert settlement: %w", err)
			}
		}
		return nil
	})
}

// ListSettlements retrieves all settlements for a tab in the order they were produced.
func (s *SQLiteStore) ListSettlements(ctx context.Context, tabID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tab_id, from_person_id, to_person_id, amount, currency, paid, created_at
		 FROM settlements WHERE tab_id = ? ORDER BY position`,
		tabID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by tab: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		if err := rows.Scan(&settlement.ID, &settlement.TabID, &settlement.FromPersonID, &settlement.ToPersonID,
			&settlement.Amount, &settlement.Currency, &settlement.Paid, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// SetSettlementPaid marks a settlement as paid or unpaid.
func (s *SQLiteStore) SetSettlementPaid(ctx context.Context, settlementID string, paid bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE settlements SET paid = ? WHERE id = ?", paid, settlementID)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	return checkAffected(res, "settlement", settlementID)
}
