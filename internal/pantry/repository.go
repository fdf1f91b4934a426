package pantry

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository persists pantry contents per owner.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new pantry repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Add stores names for owner and returns how many were new.
func (r *Repository) Add(ctx context.Context, owner string, names []string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Unix()
	added := 0
	for _, name := range names {
		name = Clean(name)
		if name == "" {
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO pantry_items (owner, name, added_at) VALUES (?, ?, ?)`,
			owner, name, now)
		if err != nil {
			return 0, fmt.Errorf("failed to add pantry item %q: %w", name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit pantry items: %w", err)
	}
	return added, nil
}

// Remove deletes a single item and reports whether it existed.
func (r *Repository) Remove(ctx context.Context, owner, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pantry_items WHERE owner = ? AND name = ?`, owner, Clean(name))
	if err != nil {
		return false, fmt.Errorf("failed to remove pantry item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// Clear removes every item for owner.
func (r *Repository) Clear(ctx context.Context, owner string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pantry_items WHERE owner = ?`, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to clear pantry: %w", err)
	}
	return res.RowsAffected()
}

// List returns the owner's items sorted by name.
func (r *Repository) List(ctx context.Context, owner string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM pantry_items WHERE owner = ? ORDER BY name`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Load builds the owner's Pantry snapshot.
func (r *Repository) Load(ctx context.Context, owner string) (*Pantry, error) {
	names, err := r.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return New(names), nil
}
