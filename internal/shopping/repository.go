package shopping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores list for a meal plan and returns the new list ID. Any
// previous list for the same plan is replaced.
func (r *Repository) Save(ctx context.Context, owner, mealPlanID string, list List) (string, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shopping list: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if mealPlanID != "" {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_lists WHERE meal_plan_id = ?`, mealPlanID); err != nil {
			return "", fmt.Errorf("failed to replace shopping list: %w", err)
		}
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO shopping_lists (id, owner, meal_plan_id, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, owner, mealPlanID, string(data), time.Now().UTC().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert shopping list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit shopping list: %w", err)
	}
	return id, nil
}

// GetByMealPlanID retrieves the shopping list of a meal plan, or nil.
func (r *Repository) GetByMealPlanID(ctx context.Context, mealPlanID string) (*StoredList, error) {
	var (
		stored    StoredList
		data      string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner, meal_plan_id, data, created_at FROM shopping_lists
		WHERE meal_plan_id = ? ORDER BY created_at DESC LIMIT 1`, mealPlanID).
		Scan(&stored.ID, &stored.Owner, &stored.MealPlanID, &data, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No shopping list found
		}
		return nil, fmt.Errorf("failed to get shopping list by meal plan ID: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &stored.List); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list: %w", err)
	}
	stored.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &stored, nil
}

// DeleteByMealPlanID deletes the shopping list of a meal plan.
func (r *Repository) DeleteByMealPlanID(ctx context.Context, mealPlanID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE meal_plan_id = ?`, mealPlanID); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	return nil
}
