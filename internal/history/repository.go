package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/valuator/internal/contracts"
)

// RecordRepository persists valuation records to Postgres. Writes are
// append-only like the in-memory log; a conflicting date is an error.
type RecordRepository struct {
	pool *pgxpool.Pool
}

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// EnsureSchema creates the storage table when missing
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS valuation_records (
			symbol     TEXT        NOT NULL,
			calc_date  DATE        NOT NULL,
			score      DOUBLE PRECISION NOT NULL,
			signal     TEXT        NOT NULL,
			confidence TEXT        NOT NULL,
			record     JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (symbol, calc_date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create valuation_records: %w", err)
	}
	return nil
}

// Save stores one record. A duplicate (symbol, date) violates the
// append-only contract and surfaces as a DataOrderingError.
func (r *RecordRepository) Save(ctx context.Context, rec *contracts.ValuationRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO valuation_records (symbol, calc_date, score, signal, confidence, record)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, calc_date) DO NOTHING
	`, rec.Symbol, rec.Date, rec.CompositeScore, string(rec.Signal), string(rec.Confidence), payload)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &contracts.DataOrderingError{Date: rec.Date}
	}
	return nil
}

// LastN returns the most recent n records for a symbol in chronological
// order, fewer when the table holds less.
func (r *RecordRepository) LastN(ctx context.Context, symbol string, n int) ([]contracts.ValuationRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT record
		FROM valuation_records
		WHERE symbol = $1
		ORDER BY calc_date DESC
		LIMIT $2
	`, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []contracts.ValuationRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var rec contracts.ValuationRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	// DESC query, chronological result
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// GetByDate loads a single record
func (r *RecordRepository) GetByDate(ctx context.Context, symbol string, date time.Time) (*contracts.ValuationRecord, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT record
		FROM valuation_records
		WHERE symbol = $1 AND calc_date = $2
	`, symbol, date).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrDataUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}

	var rec contracts.ValuationRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// Load rebuilds an in-memory History from stored records
func (r *RecordRepository) Load(ctx context.Context, symbol string, n int) (*History, error) {
	records, err := r.LastN(ctx, symbol, n)
	if err != nil {
		return nil, err
	}
	h := New()
	for _, rec := range records {
		if err := h.Append(rec); err != nil {
			return nil, err
		}
	}
	return h, nil
}
