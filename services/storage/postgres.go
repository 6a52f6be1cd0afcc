package storage

import (
	"context"
	"fmt"

	"sjsage522/discountcrawler/internal/crawler"
	crawlerrors "sjsage522/discountcrawler/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS discount_records (
		id                  BIGSERIAL    PRIMARY KEY,
		run_id              TEXT         NOT NULL,
		title               TEXT         NOT NULL,
		price               TEXT         NOT NULL,
		original_price      TEXT,
		discount_percentage TEXT,
		store               TEXT         NOT NULL,
		location            TEXT         NOT NULL,
		category            TEXT         NOT NULL,
		scraped_at          TIMESTAMPTZ  NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_discount_records_run_id   ON discount_records(run_id);
	CREATE INDEX IF NOT EXISTS idx_discount_records_location ON discount_records(location);
`

const insertSQL = `
	INSERT INTO discount_records
		(run_id, title, price, original_price, discount_percentage, store, location, category, scraped_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// PostgresSink appends every run's records to the discount_records table
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to databaseURL and creates the table if needed
func NewPostgresSink(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, crawlerrors.NewConfiguration("invalid DATABASE_URL", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, crawlerrors.NewStorage("failed to create pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, crawlerrors.NewStorage("failed to ping database", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, crawlerrors.NewStorage("failed to create discount_records", err)
	}

	return &PostgresSink{pool: pool}, nil
}

// Write inserts records in one transaction
func (s *PostgresSink) Write(ctx context.Context, run Run, records []crawler.DiscountRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return crawlerrors.NewStorage("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insertSQL,
			run.ID, r.Title, r.Price, r.OriginalPrice, r.DiscountPercentage,
			r.Store, r.Location, r.Category, run.StartedAt)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return crawlerrors.NewStorage(fmt.Sprintf("failed to insert record %d", i), err)
		}
	}
	if err := results.Close(); err != nil {
		return crawlerrors.NewStorage("failed to finish batch", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return crawlerrors.NewStorage("failed to commit transaction", err)
	}
	return nil
}

// Pool exposes the connection pool
func (s *PostgresSink) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the pool
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
