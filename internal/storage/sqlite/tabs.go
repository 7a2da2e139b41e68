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

// CreateTab persists a new tab and its people.
func (s *SQLiteStore) CreateTab(ctx context.Context, tab *models.Tab) error {
	// Generate IDs if not set
	if tab.ID == "" {
		tab.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if tab.CreatedAt == 0 {
		tab.CreatedAt = now
	}
	tab.UpdatedAt = now

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tabs (id, name, description, default_currency, settlement_currency, is_settled, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tab.ID, tab.Name, tab.Description, tab.DefaultCurrency, tab.SettlementCurrency,
			tab.IsSettled, tab.CreatedAt, tab.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tab: %w", err)
		}

		for i := range tab.People {
			person := &tab.People[i]
			if person.ID == "" {
				person.ID = uuid.New().String()
			}
			person.TabID = tab.ID
			person.CreatedAt = now

			_, err = tx.ExecContext(ctx,
				"INSERT INTO people (id, tab_id, name, email, created_at) VALUES (?, ?, ?, ?, ?)",
				person.ID, person.TabID, person.Name, nullString(person.Email), person.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert person: %w", err)
			}
		}
		return nil
	})
}

// GetTab retrieves a tab by ID, including its people in creation order.
func (s *SQLiteStore) GetTab(ctx context.Context, tabID string) (*models.Tab, error) {
	tab, err := scanTab(s.db.QueryRowContext(ctx,
		`SELECT id, name, description, default_currency, settlement_currency, is_settled, created_at, updated_at
		 FROM tabs WHERE id = ?`,
		tabID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tab %s: %w", tabID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tab: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, tab_id, name, email, created_at FROM people WHERE tab_id = ? ORDER BY created_at, rowid",
		tabID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var person models.Person
		var email sql.NullString
		if err := rows.Scan(&person.ID, &person.TabID, &person.Name, &email, &person.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		person.Email = email.String
		tab.People = append(tab.People, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return tab, nil
}

// ListTabs retrieves all tabs, newest first. People are not loaded.
func (s *SQLiteStore) ListTabs(ctx context.Context) ([]*models.Tab, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, default_currency, settlement_currency, is_settled, created_at, updated_at
		 FROM tabs ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	defer rows.Close()

	var tabs []*models.Tab
	for rows.Next() {
		tab, err := scanTab(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		tabs = append(tabs, tab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tabs: %w", err)
	}

	return tabs, nil
}

// DeleteTab removes a tab; people, bills and settlements cascade.
func (s *SQLiteStore) DeleteTab(ctx context.Context, tabID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tabs WHERE id = ?", tabID)
	if err != nil {
		return fmt.Errorf("failed to delete tab: %w", err)
	}
	return checkAffected(res, "tab", tabID)
}

// SetTabSettled updates the settled flag on a tab.
func (s *SQLiteStore) SetTabSettled(ctx context.Context, tabID string, settled bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tabs SET is_settled = ?, updated_at = ? WHERE id = ?",
		settled, time.Now().Unix(), tabID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tab: %w", err)
	}
	return checkAffected(res, "tab", tabID)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTab(row rowScanner) (*models.Tab, error) {
	tab := &models.Tab{}
	err := row.Scan(&tab.ID, &tab.Name, &tab.Description, &tab.DefaultCurrency, &tab.SettlementCurrency,
		&tab.IsSettled, &tab.CreatedAt, &tab.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tab, nil
}
