package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ExecutionMetric records metadata for a single operation run.
type ExecutionMetric struct {
	Operation string
	Items     int
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_metrics (operation, items, latency_ms, created_at) VALUES (?, ?, ?, ?)`,
		m.Operation, m.Items, m.LatencyMS, ts.Unix())
	if err != nil {
		return fmt.Errorf("failed to record execution metric: %w", err)
	}
	return nil
}

// Measure builds an ExecutionMetric for an operation that started at start.
func Measure(operation string, items int, start time.Time) ExecutionMetric {
	return ExecutionMetric{
		Operation: operation,
		Items:     items,
		LatencyMS: time.Since(start).Milliseconds(),
		Timestamp: time.Now().UTC(),
	}
}

// DailyUsage represents operation totals for a single day.
type DailyUsage struct {
	Date         string
	Executions   int
	TotalItems   int
	AvgLatencyMS float64
}

// GetDailyUsage retrieves usage for the last N days, newest day first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Unix()
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(created_at, 'unixepoch') AS day, COUNT(*), COALESCE(SUM(items), 0), COALESCE(AVG(latency_ms), 0)
		FROM execution_metrics
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Executions, &u.TotalItems, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up execution metrics: %w", err)
	}
	return res.RowsAffected()
}
