package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"meal-prep-planner/internal/config"
	"meal-prep-planner/internal/database"
	"meal-prep-planner/internal/ghost"
	"meal-prep-planner/internal/metrics"
	"meal-prep-planner/internal/planner"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/storage"
)

func ings(items ...string) []recipe.Ingredient {
	out := make([]recipe.Ingredient, 0, len(items))
	for _, item := range items {
		out = append(out, recipe.Ingredient{Amount: "1", Item: item})
	}
	return out
}

func testCatalog() []recipe.Recipe {
	prep := []string{recipe.TagMealPrep}
	return []recipe.Recipe{
		{ID: "b001", Name: "Scrambled Eggs", Category: "breakfast", Ingredients: ings("eggs", "butter", "salt"), Tags: prep},
		{ID: "b002", Name: "Overnight Oats", Category: "breakfast", Ingredients: ings("oats", "milk", "banana")},
		{ID: "l001", Name: "Chicken Rice Bowl", Category: "lunch", Ingredients: ings("chicken breast", "rice", "soy sauce"), Tags: prep},
		{ID: "l002", Name: "Tuna Salad", Category: "lunch", Ingredients: ings("tuna", "lettuce", "mayonnaise")},
		{ID: "d001", Name: "Fried Rice", Category: "dinner", Ingredients: ings("rice", "eggs", "onion", "soy sauce"), Tags: prep},
		{ID: "d002", Name: "Baked Ziti", Category: "dinner", Ingredients: ings("ziti", "ricotta cheese", "tomato sauce", "mozzarella")},
		{ID: "s001", Name: "Apple Slices", Category: "snack", Ingredients: ings("apple", "peanut butter")},
	}
}

type mockGhostClient struct {
	posts   []ghost.Post
	created []string
}

func (m *mockGhostClient) FetchRecipes(ctx context.Context) ([]ghost.Post, error) {
	return m.posts, nil
}

func (m *mockGhostClient) CreatePost(ctx context.Context, title, html string, publish bool) (*ghost.Post, error) {
	m.created = append(m.created, html)
	return &ghost.Post{ID: "post-1", Title: title, HTML: html}, nil
}

func newTestApp(t *testing.T, gc ghost.Client) *App {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDB(filepath.Join(dir, "app.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := storage.NewCatalogStore(filepath.Join(dir, "recipes.json"))
	if err := store.Save(testCatalog()); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	seed := uint64(7)
	cfg := &config.Config{
		DatabasePath:    filepath.Join(dir, "app.db"),
		PlanSeed:        &seed,
		GhostURL:        "http://ghost.test",
		GhostContentKey: "content",
		GhostAdminKey:   "id:00",
	}
	a := NewApp(cfg, db, store, gc)
	a.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestCatalogSeeding(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	catalog, err := a.Catalog(ctx)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if catalog.Len() != len(testCatalog()) {
		t.Errorf("Expected %d seeded recipes, got %d", len(testCatalog()), catalog.Len())
	}

	dinners, err := a.ListRecipes(ctx, "dinner", "")
	if err != nil {
		t.Fatalf("Failed to list recipes: %v", err)
	}
	if len(dinners) != 2 {
		t.Errorf("Expected 2 dinners, got %d", len(dinners))
	}

	found, err := a.ListRecipes(ctx, "", "RICE")
	if err != nil {
		t.Fatalf("Failed to search recipes: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("Expected 2 recipes matching 'rice', got %d", len(found))
	}
}

func TestPantryOperations(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	added, err := a.AddToPantry(ctx, "alice", "Eggs, rice , eggs")
	if err != nil {
		t.Fatalf("Failed to add to pantry: %v", err)
	}
	if added != 2 {
		t.Errorf("Expected 2 new items, got %d", added)
	}
	if _, err := a.AddToPantry(ctx, "alice", " , "); err == nil {
		t.Error("Expected an error for an empty item list")
	}

	removed, err := a.RemoveFromPantry(ctx, "alice", "RICE")
	if err != nil || !removed {
		t.Errorf("Expected rice to be removed, got %v, %v", removed, err)
	}

	p, err := a.Pantry(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to load pantry: %v", err)
	}
	if got := p.Items(); len(got) != 1 || got[0] != "eggs" {
		t.Errorf("Expected only eggs, got %v", got)
	}

	if n, err := a.ClearPantry(ctx, "alice"); err != nil || n != 1 {
		t.Errorf("Expected 1 cleared item, got %d, %v", n, err)
	}
}

func TestFindMatchesAndShowRecipe(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	if _, err := a.AddToPantry(ctx, "alice", "chicken breast, rice, eggs"); err != nil {
		t.Fatalf("Failed to add to pantry: %v", err)
	}

	m, err := a.FindMatches(ctx, "alice", 99)
	if err != nil {
		t.Fatalf("Failed to find matches: %v", err)
	}
	if m.MaxMissing != MaxMissingCap {
		t.Errorf("Expected max missing clamped to %d, got %d", MaxMissingCap, m.MaxMissing)
	}
	if len(m.Perfect) != 1 || m.Perfect[0].ID != "b001" {
		t.Errorf("Expected scrambled eggs as the only perfect match, got %+v", m.Perfect)
	}

	detail, err := a.ShowRecipe(ctx, "alice", "l001")
	if err != nil {
		t.Fatalf("Failed to show recipe: %v", err)
	}
	if detail == nil {
		t.Fatal("Expected recipe detail")
	}
	if len(detail.Match.Missing) != 1 || detail.Match.Missing[0] != "soy sauce" {
		t.Errorf("Expected soy sauce missing, got %v", detail.Match.Missing)
	}

	missing, err := a.ShowRecipe(ctx, "alice", "zzz")
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for an unknown id; got %+v, %v", missing, err)
	}

	var buf bytes.Buffer
	RenderMatches(&buf, m)
	RenderRecipe(&buf, detail)
	out := buf.String()
	for _, want := range []string{"RECIPES YOU CAN MAKE NOW (1 found)", "Scrambled Eggs", "Missing ingredients: soy sauce", "Match with your pantry: 67%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestGeneratePlan(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	res, err := a.GeneratePlan(ctx, "alice", PlanRequest{
		Options: planner.Options{Days: 30, Breakfast: true, Lunch: true, Dinner: true, Snack: true, Variety: true},
	})
	if err != nil {
		t.Fatalf("Failed to generate plan: %v", err)
	}
	plan := res.Plan
	if plan.ID == "" {
		t.Error("Expected the plan to be saved with an ID")
	}
	if plan.Days != MaxDays || len(plan.Entries) != MaxDays {
		t.Errorf("Expected days clamped to %d, got %d", MaxDays, plan.Days)
	}
	if got := plan.StartDate.Format(time.DateOnly); got != "2026-10-19" {
		t.Errorf("Expected the plan to start next Monday, got %s", got)
	}
	if res.List.IsEmpty() {
		t.Error("Expected a shopping list")
	}

	again, err := a.GeneratePlan(ctx, "alice", PlanRequest{
		Options: planner.Options{Days: 30, Breakfast: true, Lunch: true, Dinner: true, Snack: true, Variety: true},
	})
	if err != nil {
		t.Fatalf("Failed to generate plan: %v", err)
	}
	for i := range plan.Entries {
		for _, mt := range plan.MealTypes {
			if plan.Entries[i].Meal(mt).ID != again.Plan.Entries[i].Meal(mt).ID {
				t.Fatalf("Expected the configured seed to reproduce the plan")
			}
		}
	}

	recent, err := a.RecentPlans(ctx, "alice", 5)
	if err != nil {
		t.Fatalf("Failed to list plans: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Expected 2 saved plans, got %d", len(recent))
	}

	var buf bytes.Buffer
	RenderPlan(&buf, plan)
	if !strings.Contains(buf.String(), "Day 8 - Monday") {
		t.Errorf("Expected day labels to wrap, got:\n%s", buf.String())
	}
}

func TestGeneratePlanFromPantry(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	if _, err := a.AddToPantry(ctx, "alice", "chicken breast, rice, eggs, onion, soy sauce"); err != nil {
		t.Fatalf("Failed to add to pantry: %v", err)
	}
	seed := uint64(1)
	maxMissing := 1
	res, err := a.GeneratePlan(ctx, "alice", PlanRequest{
		Options:    planner.Options{Days: 3, Variety: true},
		FromPantry: true,
		MaxMissing: &maxMissing,
		Seed:       &seed,
	})
	if err != nil {
		t.Fatalf("Failed to generate plan: %v", err)
	}

	plan := res.Plan
	if plan.DinnerOnly || len(plan.MealTypes) != 3 {
		t.Errorf("Expected breakfast, lunch and dinner, got %v", plan.MealTypes)
	}
	allowed := map[string]bool{"b001": true, "l001": true, "d001": true}
	for _, r := range plan.Recipes() {
		if !allowed[r.ID] {
			t.Errorf("Recipe %s is not cookable from the pantry", r.ID)
		}
	}
	if res.Candidates != 3 {
		t.Errorf("Expected 3 candidate recipes, got %d", res.Candidates)
	}
	if _, _, ok := res.List.Lookup("rice"); ok {
		t.Error("Expected owned items to be left off the shopping list")
	}
	if _, _, ok := res.List.Lookup("butter"); !ok {
		t.Error("Expected staples to stay on the shopping list")
	}
}

func TestGeneratePlanFromPantryNothingMissing(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	if _, err := a.AddToPantry(ctx, "alice", "chicken breast, rice, eggs, onion"); err != nil {
		t.Fatalf("Failed to add to pantry: %v", err)
	}
	maxMissing := 0
	res, err := a.GeneratePlan(ctx, "alice", PlanRequest{
		Options:    planner.Options{Days: 2},
		FromPantry: true,
		MaxMissing: &maxMissing,
	})
	if err != nil {
		t.Fatalf("Failed to generate plan: %v", err)
	}
	if res.Candidates != 1 {
		t.Errorf("Expected only fully covered recipes as candidates, got %d", res.Candidates)
	}
	for _, r := range res.Plan.Recipes() {
		if r.ID != "b001" {
			t.Errorf("Expected only scrambled eggs, got %s", r.ID)
		}
	}
}

func TestGeneratePlanFromPantryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyPantry", func(t *testing.T) {
		a := newTestApp(t, nil)
		_, err := a.GeneratePlan(ctx, "alice", PlanRequest{Options: planner.Options{Days: 2}, FromPantry: true})
		if !errors.Is(err, ErrEmptyPantry) {
			t.Fatalf("Expected ErrEmptyPantry, got %v", err)
		}
		recent, err := a.RecentPlans(ctx, "alice", 5)
		if err != nil || len(recent) != 0 {
			t.Errorf("Expected no saved plans, got %d, %v", len(recent), err)
		}
	})

	t.Run("NoCandidates", func(t *testing.T) {
		a := newTestApp(t, nil)
		if _, err := a.AddToPantry(ctx, "alice", "ziti"); err != nil {
			t.Fatalf("Failed to add to pantry: %v", err)
		}
		_, err := a.GeneratePlan(ctx, "alice", PlanRequest{Options: planner.Options{Days: 2}, FromPantry: true})
		if !errors.Is(err, ErrNoCandidates) {
			t.Fatalf("Expected ErrNoCandidates, got %v", err)
		}
		recent, err := a.RecentPlans(ctx, "alice", 5)
		if err != nil || len(recent) != 0 {
			t.Errorf("Expected no saved plans, got %d, %v", len(recent), err)
		}
	})
}

func TestFindMatchesMinimumMissing(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	m, err := a.FindMatches(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("Failed to find matches: %v", err)
	}
	if m.MaxMissing != 1 {
		t.Errorf("Expected max missing raised to 1, got %d", m.MaxMissing)
	}
}

func TestPlansAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	res, err := a.GeneratePlan(ctx, "alice", PlanRequest{Options: planner.Options{Days: 1, Dinner: true}})
	if err != nil {
		t.Fatalf("Failed to generate plan: %v", err)
	}

	if _, err := a.ShoppingForPlan(ctx, "bob", res.Plan.ID, false); err == nil {
		t.Error("Expected another owner's plan to be reported as missing")
	}
	got, err := a.ShoppingForPlan(ctx, "alice", res.Plan.ID, false)
	if err != nil {
		t.Fatalf("Failed to build shopping list: %v", err)
	}
	if got.PlanID != res.Plan.ID {
		t.Errorf("Expected plan %s, got %s", res.Plan.ID, got.PlanID)
	}
}

func TestPantryGaugePerOwner(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	if _, err := a.AddToPantry(ctx, "gauge-alice", "rice, eggs"); err != nil {
		t.Fatalf("Failed to add to pantry: %v", err)
	}
	if _, err := a.Pantry(ctx, "gauge-alice"); err != nil {
		t.Fatalf("Failed to load pantry: %v", err)
	}
	if _, err := a.Pantry(ctx, "gauge-bob"); err != nil {
		t.Fatalf("Failed to load pantry: %v", err)
	}

	if got := testutil.ToFloat64(metrics.PantryItems.WithLabelValues("gauge-alice")); got != 2 {
		t.Errorf("Expected 2 items for alice, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.PantryItems.WithLabelValues("gauge-bob")); got != 0 {
		t.Errorf("Expected 0 items for bob, got %v", got)
	}
}

func TestShopping(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	if _, err := a.ShoppingForPlan(ctx, "alice", "", false); err == nil {
		t.Error("Expected an error when no plan exists")
	}
	if _, err := a.ShoppingForPlan(ctx, "alice", "missing", false); err == nil {
		t.Error("Expected an error for an unknown plan")
	}

	res, err := a.GeneratePlan(ctx, "alice", PlanRequest{Options: planner.Options{Days: 2, Dinner: true}})
	if err != nil {
		t.Fatalf("Failed to generate plan: %v", err)
	}

	latest, err := a.ShoppingForPlan(ctx, "alice", "", false)
	if err != nil {
		t.Fatalf("Failed to build shopping list: %v", err)
	}
	if latest.PlanID != res.Plan.ID {
		t.Errorf("Expected the latest plan %s, got %s", res.Plan.ID, latest.PlanID)
	}

	byIDs, err := a.ShoppingForRecipes(ctx, "alice", []string{"d001", "nope", "l001"}, false)
	if err != nil {
		t.Fatalf("Failed to build shopping list: %v", err)
	}
	if len(byIDs.Unknown) != 1 || byIDs.Unknown[0] != "nope" {
		t.Errorf("Expected 'nope' reported unknown, got %v", byIDs.Unknown)
	}
	soy, _, ok := byIDs.List.Lookup("soy sauce")
	if !ok || len(soy.Contributions) != 2 {
		t.Errorf("Expected soy sauce from two recipes, got %+v", soy)
	}

	if _, err := a.ShoppingForRecipes(ctx, "alice", []string{"nope"}, false); err == nil {
		t.Error("Expected an error when no id is known")
	}

	var buf bytes.Buffer
	RenderShoppingList(&buf, byIDs.List)
	out := buf.String()
	for _, want := range []string{"[ ] Soy Sauce", "Amount: 1, 1", "For: Fried Rice, Chicken Rice Bowl"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPublishPlan(t *testing.T) {
	ctx := context.Background()
	gc := &mockGhostClient{}
	a := newTestApp(t, gc)

	res, err := a.GeneratePlan(ctx, "alice", PlanRequest{Options: planner.Options{Days: 2}})
	if err != nil {
		t.Fatalf("Failed to generate plan: %v", err)
	}
	post, err := a.PublishPlan(ctx, "alice", res.Plan.ID)
	if err != nil {
		t.Fatalf("Failed to publish plan: %v", err)
	}
	if post.ID != "post-1" || len(gc.created) != 1 {
		t.Errorf("Expected one post to be created, got %+v", post)
	}
	if !strings.Contains(gc.created[0], "Shopping List") {
		t.Error("Expected the post to include the shopping list")
	}

	a.cfg.GhostAdminKey = ""
	if _, err := a.PublishPlan(ctx, "alice", res.Plan.ID); err == nil {
		t.Error("Expected an error without an admin key")
	}
}

func TestMetricsOperations(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	if _, err := a.FindMatches(ctx, "alice", 3); err != nil {
		t.Fatalf("Failed to find matches: %v", err)
	}
	usage, err := a.Usage(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get usage: %v", err)
	}
	if len(usage) != 1 || usage[0].Executions < 2 {
		t.Errorf("Expected catalog import and match to be recorded, got %+v", usage)
	}

	if _, err := a.CleanupMetrics(ctx, -1); err == nil {
		t.Error("Expected an error for negative days")
	}
	if _, err := a.CleanupMetrics(ctx, 30); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if h := a.Health(); h.Goroutines < 1 {
		t.Errorf("Unexpected health: %+v", h)
	}
}
