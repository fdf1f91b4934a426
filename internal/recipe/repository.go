package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"meal-prep-planner/internal/logging"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or updates a recipe in the database.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	return saveRecipe(ctx, r.db, rec)
}

// SaveAll upserts recipes in a single transaction.
func (r *Repository) SaveAll(ctx context.Context, recipes []Recipe) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recipes {
		if err := saveRecipe(ctx, tx, rec); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipes: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveRecipe(ctx context.Context, db execer, rec Recipe) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec.WithDefaults())
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	updatedAt := time.Now()
	if rec.UpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			logging.Warn().Err(err).Str("recipe", rec.ID).Msg("unparseable updated_at, using current time")
		} else {
			updatedAt = parsed
		}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO recipes (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		rec.ID, string(data), updatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a recipe by its ID. It returns nil when the recipe does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// UpdatedAt returns the stored version timestamp of a recipe, or the zero
// time when it does not exist.
func (r *Repository) UpdatedAt(ctx context.Context, id string) (time.Time, error) {
	var unix int64
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM recipes WHERE id = ?`, id).Scan(&unix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get recipe version: %w", err)
	}
	return time.Unix(unix, 0), nil
}

// List retrieves all recipes in id order. Rows that fail to decode are skipped.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			logging.Warn().Err(err).Str("recipe", id).Msg("skipping undecodable recipe")
			continue
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}

// Catalog loads every stored recipe into a Catalog.
func (r *Repository) Catalog(ctx context.Context) (*Catalog, error) {
	recipes, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(recipes), nil
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}
