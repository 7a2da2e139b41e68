package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/ninjatab/internal/models"
	"github.com/mmynk/ninjatab/internal/storage"
)

const dateLayout = "2006-01-02"

// CreateBill persists a new bill with its line items and claims.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	// Generate IDs if not set
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusOpen
	}
	if bill.Date.IsZero() {
		bill.Date = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bills (id, tab_id, description, currency, status, creator_id, paid_by_id, date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			bill.ID, bill.TabID, bill.Description, bill.Currency, bill.Status,
			bill.CreatorID, nullString(bill.PaidByID), bill.Date.Format(dateLayout), bill.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill: %w", err)
		}

		for i := range bill.LineItems {
			item := &bill.LineItems[i]
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.BillID = bill.ID

			_, err = tx.ExecContext(ctx,
				"INSERT INTO line_items (id, bill_id, position, description, value, split_type) VALUES (?, ?, ?, ?, ?, ?)",
				item.ID, item.BillID, i, item.Description, item.Value, item.SplitType,
			)
			if err != nil {
				return fmt.Errorf("failed to insert line item: %w", err)
			}

			for j := range item.Claims {
				item.Claims[j].LineItemID = item.ID
			}
			if err := insertClaims(ctx, tx, item.Claims); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBill retrieves a bill by ID, including all line items and claims.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bills, err := s.loadBills(ctx, "b.id = ?", billID)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return bills[0], nil
}

// ListBills retrieves full bills, newest first, for one tab or for all tabs.
func (s *SQLiteStore) ListBills(ctx context.Context, tabID string) ([]*models.Bill, error) {
	if tabID == "" {
		return s.loadBills(ctx, "1 = 1")
	}
	return s.loadBills(ctx, "b.tab_id = ?", tabID)
}

// UpdateBillStatus changes a bill's status.
func (s *SQLiteStore) UpdateBillStatus(ctx context.Context, billID string, status models.BillStatus) error {
	res, err := s.db.ExecContext(ctx, "UPDATE bills SET status = ? WHERE id = ?", status, billID)
	if err != nil {
		return fmt.Errorf("failed to update bill status: %w", err)
	}
	return checkAffected(res, "bill", billID)
}

// ReplaceClaims discards the claims of each line item and inserts the new ones.
func (s *SQLiteStore) ReplaceClaims(ctx context.Context, claimsByLineItem map[string][]models.PersonClaim) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for lineItemID, claims := range claimsByLineItem {
			if _, err := tx.ExecContext(ctx, "DELETE FROM person_claims WHERE line_item_id = ?", lineItemID); err != nil {
				return fmt.Errorf("failed to delete claims: %w", err)
			}
			for i := range claims {
				claims[i].LineItemID = lineItemID
			}
			if err := insertClaims(ctx, tx, claims); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertClaims(ctx context.Context, tx *sql.Tx, claims []models.PersonClaim) error {
	for i := range claims {
		claim := &claims[i]
		if claim.ID == "" {
			claim.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO person_claims (id, person_id, line_item_id, position, split_value, calculated_amount, has_claimed)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			claim.ID, claim.PersonID, claim.LineItemID, i, claim.SplitValue, claim.CalculatedAmount, claim.HasClaimed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert claim: %w", err)
		}
	}
	return nil
}

// loadBills reads bills matching where (a condition on alias b) and assembles
// their line items and claims. Each query is drained before the next runs.
func (s *SQLiteStore) loadBills(ctx context.Context, where string, args ...interface{}) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.tab_id, b.description, b.currency, b.status, b.creator_id, b.paid_by_id, b.date, b.created_at
		 FROM bills b WHERE `+where+` ORDER BY b.date DESC, b.created_at DESC, b.rowid DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills: %w", err)
	}

	var bills []*models.Bill
	byID := make(map[string]*models.Bill)
	for rows.Next() {
		bill := &models.Bill{}
		var paidBy sql.NullString
		var date string
		if err := rows.Scan(&bill.ID, &bill.TabID, &bill.Description, &bill.Currency, &bill.Status,
			&bill.CreatorID, &paidBy, &date, &bill.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bill.PaidByID = paidBy.String
		if bill.Date, err = time.Parse(dateLayout, date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse bill date %q: %w", date, err)
		}
		bills = append(bills, bill)
		byID[bill.ID] = bill
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	if len(bills) == 0 {
		return bills, nil
	}

	items, err := s.loadLineItems(ctx, where, args...)
	if err != nil {
		return nil, err
	}
	claims, err := s.loadClaims(ctx, where, args...)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		item.Claims = claims[item.ID]
		if bill, ok := byID[item.BillID]; ok {
			bill.LineItems = append(bill.LineItems, *item)
		}
	}

	return bills, nil
}

func (s *SQLiteStore) loadLineItems(ctx context.Context, where string, args ...interface{}) ([]*models.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT li.id, li.bill_id, li.description, li.value, li.split_type
		 FROM line_items li JOIN bills b ON b.id = li.bill_id
		 WHERE `+where+` ORDER BY li.bill_id, li.position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	var items []*models.LineItem
	for rows.Next() {
		item := &models.LineItem{}
		if err := rows.Scan(&item.ID, &item.BillID, &item.Description, &item.Value, &item.SplitType); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) loadClaims(ctx context.Context, where string, args ...interface{}) (map[string][]models.PersonClaim, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pc.id, pc.person_id, pc.line_item_id, pc.split_value, pc.calculated_amount, pc.has_claimed
		 FROM person_claims pc
		 JOIN line_items li ON li.id = pc.line_item_id
		 JOIN bills b ON b.id = li.bill_id
		 WHERE `+where+` ORDER BY pc.line_item_id, pc.position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}
	defer rows.Close()

	claims := make(map[string][]models.PersonClaim)
	for rows.Next() {
		var claim models.PersonClaim
		if err := rows.Scan(&claim.ID, &claim.PersonID, &claim.LineItemID,
			&claim.SplitValue, &claim.CalculatedAmount, &claim.HasClaimed); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims[claim.LineItemID] = append(claims[claim.LineItemID], claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claims: %w", err)
	}
	return claims, nil
}
