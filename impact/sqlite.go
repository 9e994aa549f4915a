// Package impact persists accepted substitution savings in a SQLite ledger
// so the realized cost impact survives restarts and catalog reloads.
package impact

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/interfaces"
)

// Compile-time check to ensure SQLiteStore implements ImpactStore
var _ interfaces.ImpactStore = (*SQLiteStore)(nil)

// SQLiteStore implements the cost-impact ledger on a SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens the ledger database, creating the file and schema
// when they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cost_impact (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_cost REAL NOT NULL,
		reduced_cost REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_cost_impact_created_at ON cost_impact(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Record appends one accepted saving to the ledger and returns its row id.
func (s *SQLiteStore) Record(ctx context.Context, originalCost, reducedCost float64) (int64, error) {
	if originalCost < 0 || reducedCost < 0 {
		return 0, fmt.Errorf("costs cannot be negative: original %.2f, reduced %.2f", originalCost, reducedCost)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO cost_impact (original_cost, reduced_cost) VALUES (?, ?)",
		originalCost, reducedCost,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert ID: %w", err)
	}
	return id, nil
}

// Summary aggregates the whole ledger. An empty ledger yields a zero
// summary, not an error.
func (s *SQLiteStore) Summary(ctx context.Context) (*entities.CostImpactSummary, error) {
	var summary entities.CostImpactSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(original_cost), 0), COALESCE(SUM(reduced_cost), 0)
		FROM cost_impact
	`).Scan(&summary.OriginalTotalCost, &summary.ReducedTotalCost)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger: %w", err)
	}

	summary.TotalSavings = summary.OriginalTotalCost - summary.ReducedTotalCost
	if summary.OriginalTotalCost > 0 {
		summary.ReductionPercent = summary.TotalSavings / summary.OriginalTotalCost * 100
	}
	return &summary, nil
}

// Records returns the newest ledger entries, newest first. limit values
// outside [1, 1000] fall back to 100.
func (s *SQLiteStore) Records(ctx context.Context, limit int) ([]entities.CostImpact, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, original_cost, reduced_cost, created_at
		FROM cost_impact
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []entities.CostImpact
	for rows.Next() {
		var rec entities.CostImpact
		if err := rows.Scan(&rec.ID, &rec.OriginalCost, &rec.ReducedCost, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Clear deletes every ledger entry and returns how many were removed.
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM cost_impact")
	if err != nil {
		return 0, fmt.Errorf("failed to clear ledger: %w", err)
	}
	return result.RowsAffected()
}

// Ping verifies the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
