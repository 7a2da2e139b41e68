package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/ninjatab/internal/models"
)

// CreateExchangeRate persists a new rate.
// Effective dates are stored as Unix seconds so they compare numerically.
func (s *SQLiteStore) CreateExchangeRate(ctx context.Context, rate *models.ExchangeRate) error {
	if rate.ID == "" {
		rate.ID = uuid.New().String()
	}
	if rate.CreatedAt == 0 {
		rate.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchange_rates (id, from_currency, to_currency, rate, effective_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rate.ID, rate.From, rate.To, rate.Rate, rate.EffectiveDate.Unix(), rate.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange rate: %w", err)
	}
	return nil
}

// FindRate returns the most recent from -> to rate effective at or before asOf.
// Returns nil, nil when no rate matches.
func (s *SQLiteStore) FindRate(ctx context.Context, from, to models.Currency, asOf time.Time) (*models.ExchangeRate, error) {
	rate, err := scanRate(s.db.QueryRowContext(ctx,
		`SELECT id, from_currency, to_currency, rate, effective_date, created_at
		 FROM exchange_rates
		 WHERE from_currency = ? AND to_currency = ? AND effective_date <= ?
		 ORDER BY effective_date DESC
		 LIMIT 1`,
		from, to, asOf.Unix(),
	))
	if err == sql.ErrNoRows {
		return nil, nil // No rate for this pair yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find exchange rate: %w", err)
	}
	return rate, nil
}

// ListExchangeRates retrieves all rates, newest effective date first.
func (s *SQLiteStore) ListExchangeRates(ctx context.Context) ([]*models.ExchangeRate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_currency, to_currency, rate, effective_date, created_at
		 FROM exchange_rates ORDER BY effective_date DESC, from_currency, to_currency`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []*models.ExchangeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchange rates: %w", err)
	}
	return rates, nil
}

func scanRate(row rowScanner) (*models.ExchangeRate, error) {
	rate := &models.ExchangeRate{}
	var effective int64
	if err := row.Scan(&rate.ID, &rate.From, &rate.To, &rate.Rate, &effective, &rate.CreatedAt); err != nil {
		return nil, err
	}
	rate.EffectiveDate = time.Unix(effective, 0).UTC()
	return rate, nil
}
