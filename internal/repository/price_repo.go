package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/dashboard/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PriceRepository persists fetched closes so a restart does not refetch
// the whole history.
type PriceRepository struct {
	pool *pgxpool.Pool
}

// PriceRange is the date span already fetched for a symbol and when the
// provider is expected to publish the next close.
type PriceRange struct {
	Symbol     string
	StartDate  time.Time
	EndDate    time.Time
	NextUpdate time.Time
}

// NewPriceRepository creates a new PriceRepository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetDailyPrices retrieves stored closes for a symbol within a date range
func (r *PriceRepository) GetDailyPrices(ctx context.Context, symbol string, startDate, endDate time.Time) (models.PriceSeries, error) {
	query := `
		SELECT date, close
		FROM fact_price
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := r.pool.Query(ctx, query, symbol, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	prices := models.PriceSeries{}
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Date, &o.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price data: %w", err)
		}
		o.Date = models.TruncateDate(o.Date)
		prices = append(prices, o)
	}
	return prices, rows.Err()
}

// StoreDailyPrices upserts closes for a symbol
func (r *PriceRepository) StoreDailyPrices(ctx context.Context, symbol string, prices models.PriceSeries) error {
	if len(prices) == 0 {
		return nil
	}

	query := `
		INSERT INTO fact_price (symbol, date, close)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, date) DO UPDATE
		SET close = EXCLUDED.close
	`

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(query, symbol, p.Date, p.Close)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range prices {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to store price: %w", err)
		}
	}
	return nil
}

// GetPriceRange retrieves the fetched date range for a symbol, or nil
func (r *PriceRepository) GetPriceRange(ctx context.Context, symbol string) (*PriceRange, error) {
	query := `
		SELECT symbol, start_date, end_date, next_update
		FROM fact_price_range
		WHERE symbol = $1
	`
	pr := &PriceRange{}
	err := r.pool.QueryRow(ctx, query, symbol).Scan(
		&pr.Symbol, &pr.StartDate, &pr.EndDate, &pr.NextUpdate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price range: %w", err)
	}
	pr.StartDate = models.TruncateDate(pr.StartDate)
	pr.EndDate = models.TruncateDate(pr.EndDate)
	return pr, nil
}

// UpsertPriceRange inserts or updates the fetched date range for a symbol.
// It expands the range using LEAST/GREATEST to merge with existing data
func (r *PriceRepository) UpsertPriceRange(ctx context.Context, symbol string, startDate, endDate time.Time, nextUpdate time.Time) error {
	query := `
		INSERT INTO fact_price_range (symbol, start_date, end_date, next_update)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO UPDATE
		SET start_date = LEAST(fact_price_range.start_date, EXCLUDED.start_date),
		    end_date = GREATEST(fact_price_range.end_date, EXCLUDED.end_date),
		    next_update = EXCLUDED.next_update
	`
	_, err := r.pool.Exec(ctx, query, symbol, startDate, endDate, nextUpdate)
	if err != nil {
		return fmt.Errorf("failed to upsert price range: %w", err)
	}
	return nil
}

// DeleteSymbol removes every stored row of a symbol
func (r *PriceRepository) DeleteSymbol(ctx context.Context, symbol string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM fact_price WHERE symbol = $1`, symbol); err != nil {
		return fmt.Errorf("failed to delete prices: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM fact_price_range WHERE symbol = $1`, symbol); err != nil {
		return fmt.Errorf("failed to delete price range: %w", err)
	}
	return nil
}
