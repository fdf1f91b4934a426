package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// StoredPlan is a saved meal plan with its owner.
type StoredPlan struct {
	Owner     string
	Plan      MealPlan
	CreatedAt time.Time
}

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save stores plan for owner, assigning an ID when it has none. The
// assigned ID is written back to plan.
func (r *PlanRepository) Save(ctx context.Context, owner string, plan *MealPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (id, owner, start_date, data, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, start_date = excluded.start_date`,
		plan.ID, owner, plan.StartDate.Format(time.DateOnly), string(data), time.Now().UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save meal plan: %w", err)
	}
	return nil
}

// Get retrieves a plan by ID. It returns nil when the plan does not exist.
func (r *PlanRepository) Get(ctx context.Context, id string) (*StoredPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT owner, data, created_at FROM meal_plans WHERE id = ?`, id)
	sp, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan %s: %w", id, err)
	}
	return sp, nil
}

// GetForOwner retrieves a plan by ID only if owner saved it. Plans of other
// owners are reported as missing.
func (r *PlanRepository) GetForOwner(ctx context.Context, owner, id string) (*StoredPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT owner, data, created_at FROM meal_plans WHERE id = ? AND owner = ?`, id, owner)
	sp, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan %s: %w", id, err)
	}
	return sp, nil
}

// Latest returns the owner's most recent plan, or nil.
func (r *PlanRepository) Latest(ctx context.Context, owner string) (*StoredPlan, error) {
	plans, err := r.ListRecent(ctx, owner, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return &plans[0], nil
}

// ListRecent retrieves the N most recent meal plans for a given owner.
func (r *PlanRepository) ListRecent(ctx context.Context, owner string, limit int) ([]StoredPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT owner, data, created_at FROM meal_plans
		WHERE owner = ? ORDER BY created_at DESC LIMIT ?`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for %s: %w", owner, err)
	}
	defer rows.Close()

	var plans []StoredPlan
	for rows.Next() {
		sp, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read meal plan row: %w", err)
		}
		plans = append(plans, *sp)
	}
	return plans, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*StoredPlan, error) {
	var (
		owner, data string
		createdAt   int64
	)
	if err := row.Scan(&owner, &data, &createdAt); err != nil {
		return nil, err
	}

	var plan MealPlan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal plan: %w", err)
	}
	return &StoredPlan{Owner: owner, Plan: plan, CreatedAt: time.Unix(0, createdAt)}, nil
}
