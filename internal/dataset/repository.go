package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yathboss/revenue-vision/internal/models"
)

// PgxIface is the subset of pgxpool.Pool the repository needs; satisfied
// by pgxmock in tests.
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// LedgerRepository loads the sales ledger from a Postgres table.
type LedgerRepository struct {
	pool   PgxIface
	table  string
	logger *logrus.Logger
}

func NewLedgerRepository(pool PgxIface, table string, logger *logrus.Logger) *LedgerRepository {
	return &LedgerRepository{
		pool:   pool,
		table:  table,
		logger: logger,
	}
}

// LoadRecords reads the full ledger ordered by order date.
func (r *LedgerRepository) LoadRecords(ctx context.Context) ([]models.SalesRecord, error) {
	query := fmt.Sprintf(
		"SELECT order_date, sales, category, region, segment FROM %s ORDER BY order_date",
		r.table,
	)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales ledger: %w", err)
	}
	defer rows.Close()

	var records []models.SalesRecord
	for rows.Next() {
		var (
			orderDate time.Time
			sales     float64
			category  string
			region    string
			segment   string
		)
		if err := rows.Scan(&orderDate, &sales, &category, &region, &segment); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		records = append(records, models.SalesRecord{
			OrderDate: orderDate,
			Sales:     decimal.NewFromFloat(sales),
			Category:  category,
			Region:    region,
			Segment:   segment,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales ledger: %w", err)
	}

	r.logger.WithFields(logrus.Fields{"table": r.table, "records": len(records)}).
		Info("Loaded sales ledger from database")
	return records, nil
}
