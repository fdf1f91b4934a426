package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"meal-prep-planner/internal/clipper"
	"meal-prep-planner/internal/config"
	"meal-prep-planner/internal/database"
	"meal-prep-planner/internal/ghost"
	"meal-prep-planner/internal/ingredient"
	"meal-prep-planner/internal/logging"
	"meal-prep-planner/internal/metrics"
	"meal-prep-planner/internal/pantry"
	"meal-prep-planner/internal/planner"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/shopping"
	"meal-prep-planner/internal/storage"
)

// Bounds applied to user supplied plan and match settings.
const (
	MinDays       = 1
	MaxDays       = 14
	DefaultDays   = 7
	MaxMissingCap = 5
)

// Plan-from-pantry failures, returned before anything is scheduled or saved.
var (
	ErrEmptyPantry  = errors.New("your pantry is empty; add items first")
	ErrNoCandidates = errors.New("not enough recipes found with your criteria")
)

// App holds the application's dependencies. It is safe for concurrent use;
// each plan gets its own random source.
type App struct {
	cfg           *config.Config
	recipeRepo    *recipe.Repository
	pantryRepo    *pantry.Repository
	planRepo      *planner.PlanRepository
	shoppingRepo  *shopping.Repository
	catalogStore  *storage.CatalogStore
	metricsStore  *metrics.Store
	ghostClient   ghost.Client
	recipeClipper *clipper.Clipper
	now           func() time.Time
}

// NewApp creates and initializes a new App instance. ghostClient may be nil
// when Ghost is not configured.
func NewApp(cfg *config.Config, db *database.DB, catalogStore *storage.CatalogStore, ghostClient ghost.Client) *App {
	return &App{
		cfg:           cfg,
		recipeRepo:    recipe.NewRepository(db.SQL),
		pantryRepo:    pantry.NewRepository(db.SQL),
		planRepo:      planner.NewPlanRepository(db.SQL),
		shoppingRepo:  shopping.NewRepository(db.SQL),
		catalogStore:  catalogStore,
		metricsStore:  metrics.NewStore(db.SQL),
		ghostClient:   ghostClient,
		recipeClipper: clipper.NewClipper(ghostClient),
		now:           time.Now,
	}
}

// track reports an operation to Prometheus and the execution log.
func (a *App) track(ctx context.Context, operation string, items int, start time.Time, err error) {
	metrics.Observe(operation, start, err)
	if err != nil {
		return
	}
	if recErr := a.metricsStore.Record(ctx, metrics.Measure(operation, items, start)); recErr != nil {
		logging.Warn().Err(recErr).Str("operation", operation).Msg("failed to record execution metric")
	}
}

// Catalog returns the stored recipes. An empty database is seeded from the
// catalog file when one exists.
func (a *App) Catalog(ctx context.Context) (*recipe.Catalog, error) {
	count, err := a.recipeRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 && a.catalogStore != nil && a.catalogStore.Exists() {
		n, err := a.ImportCatalog(ctx, a.catalogStore)
		if err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		logging.Info().Int("recipes", n).Str("path", a.catalogStore.Path()).Msg("seeded recipe catalog")
	}
	return a.recipeRepo.Catalog(ctx)
}

// ImportCatalog loads a catalog file into the database and returns how many
// recipes were stored.
func (a *App) ImportCatalog(ctx context.Context, store *storage.CatalogStore) (n int, err error) {
	start := time.Now()
	defer func() { a.track(ctx, "import_catalog", n, start, err) }()

	recipes, err := store.Load()
	if err != nil {
		return 0, err
	}
	if err := a.recipeRepo.SaveAll(ctx, recipes); err != nil {
		return 0, fmt.Errorf("failed to save catalog: %w", err)
	}
	return len(recipes), nil
}

// ExportCatalog writes every stored recipe to the configured catalog file.
func (a *App) ExportCatalog(ctx context.Context) (int, error) {
	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := a.catalogStore.Save(recipes); err != nil {
		return 0, err
	}
	return len(recipes), nil
}

// Pantry loads the owner's pantry.
func (a *App) Pantry(ctx context.Context, owner string) (*pantry.Pantry, error) {
	p, err := a.pantryRepo.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	metrics.PantryItems.WithLabelValues(owner).Set(float64(p.Len()))
	return p, nil
}

// AddToPantry adds a comma separated list of items and returns how many
// were new.
func (a *App) AddToPantry(ctx context.Context, owner, raw string) (int, error) {
	items := pantry.ParseList(raw)
	if len(items) == 0 {
		return 0, fmt.Errorf("no pantry items given")
	}
	return a.pantryRepo.Add(ctx, owner, items)
}

// RemoveFromPantry removes one item and reports whether it was present.
func (a *App) RemoveFromPantry(ctx context.Context, owner, name string) (bool, error) {
	return a.pantryRepo.Remove(ctx, owner, name)
}

// ClearPantry removes every item the owner entered.
func (a *App) ClearPantry(ctx context.Context, owner string) (int64, error) {
	return a.pantryRepo.Clear(ctx, owner)
}

// ListRecipes returns catalog recipes, optionally filtered by category and
// a case-insensitive name search.
func (a *App) ListRecipes(ctx context.Context, category, search string) ([]recipe.Recipe, error) {
	catalog, err := a.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	recipes := catalog.All()
	if search != "" {
		recipes = catalog.SearchByName(search)
	}
	if category == "" {
		return recipes, nil
	}
	var out []recipe.Recipe
	for _, r := range recipes {
		if r.InCategory(category) {
			out = append(out, r)
		}
	}
	return out, nil
}

// RecipeDetail is a recipe with its score against the owner's pantry.
type RecipeDetail struct {
	Recipe recipe.Recipe
	Match  ingredient.MatchResult
}

// ShowRecipe returns one recipe scored against the pantry, or nil when the
// id is unknown.
func (a *App) ShowRecipe(ctx context.Context, owner, id string) (*RecipeDetail, error) {
	catalog, err := a.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := catalog.Get(id)
	if !ok {
		return nil, nil
	}
	p, err := a.Pantry(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &RecipeDetail{Recipe: rec, Match: ingredient.NewMatcher(p).Score(rec)}, nil
}

// Matches holds the recipes the owner can cook now or almost cook.
type Matches struct {
	Pantry     *pantry.Pantry
	MaxMissing int
	Perfect    []ingredient.RankedRecipe
	Almost     []ingredient.RankedRecipe
}

// FindMatches ranks the catalog against the owner's pantry. maxMissing is
// clamped to 1..5.
func (a *App) FindMatches(ctx context.Context, owner string, maxMissing int) (m *Matches, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if m != nil {
			n = len(m.Almost)
		}
		a.track(ctx, "match", n, start, err)
	}()

	catalog, err := a.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	p, err := a.Pantry(ctx, owner)
	if err != nil {
		return nil, err
	}

	maxMissing = clamp(maxMissing, 1, MaxMissingCap)
	matcher := ingredient.NewMatcher(p)
	return &Matches{
		Pantry:     p,
		MaxMissing: maxMissing,
		Perfect:    matcher.PerfectMatches(catalog.All()),
		Almost:     matcher.AlmostMatches(catalog.All(), maxMissing),
	}, nil
}

// PlanRequest describes a plan to generate.
type PlanRequest struct {
	Options planner.Options

	// FromPantry plans only recipes that are almost cookable from the
	// pantry, filling breakfast, lunch and dinner with meal-prep preference.
	FromPantry bool
	// MaxMissing is clamped to 0..5. Nil means DefaultMaxMissing; zero
	// plans only recipes the pantry fully covers.
	MaxMissing *int

	// Seed overrides the configured PLAN_SEED.
	Seed *uint64
}

// PlanResult is a saved plan with its shopping list.
type PlanResult struct {
	Plan       planner.MealPlan
	List       shopping.List
	Candidates int
}

// GeneratePlan builds, saves and returns a meal plan and its shopping list.
func (a *App) GeneratePlan(ctx context.Context, owner string, req PlanRequest) (res *PlanResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Plan.Entries)
		}
		a.track(ctx, "plan", n, start, err)
	}()

	catalog, err := a.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	p, err := a.Pantry(ctx, owner)
	if err != nil {
		return nil, err
	}

	opts := req.Options
	opts.Days = clamp(opts.Days, MinDays, MaxDays)
	if opts.StartDate.IsZero() {
		opts.StartDate = planner.GetNextMonday(a.now())
	}

	working := catalog.All()
	if req.FromPantry {
		if p.IsEmpty() {
			return nil, ErrEmptyPantry
		}
		maxMissing := ingredient.DefaultMaxMissing
		if req.MaxMissing != nil {
			maxMissing = clamp(*req.MaxMissing, 0, MaxMissingCap)
		}
		ranked := ingredient.NewMatcher(p).AlmostMatches(working, maxMissing)
		working = ingredient.Recipes(ranked)
		if len(working) == 0 {
			return nil, ErrNoCandidates
		}
		opts.Breakfast, opts.Lunch, opts.Dinner = true, true, true
		opts.PreferMealPrep = true
	}

	plan := planner.NewScheduler(working, a.picker(req.Seed)).GeneratePlan(opts)
	if unfilled := plan.UnfilledSlots(); unfilled > 0 {
		metrics.UnfilledSlotsTotal.Add(float64(unfilled))
		logging.Warn().Int("unfilled", unfilled).Int("candidates", len(working)).Msg("plan has empty slots")
	}

	if err := a.planRepo.Save(ctx, owner, &plan); err != nil {
		return nil, err
	}

	list := shopping.NewBuilder(p).FromMealPlan(plan, true)
	if _, err := a.shoppingRepo.Save(ctx, owner, plan.ID, list); err != nil {
		return nil, err
	}

	logging.Info().Str("plan", plan.ID).Str("owner", owner).Int("days", plan.Days).Msg("meal plan generated")
	return &PlanResult{Plan: plan, List: list, Candidates: len(working)}, nil
}

func (a *App) picker(seed *uint64) planner.Picker {
	if seed != nil {
		return planner.NewRandPicker(*seed)
	}
	if a.cfg != nil && a.cfg.PlanSeed != nil {
		return planner.NewRandPicker(*a.cfg.PlanSeed)
	}
	return planner.NewClockPicker()
}

// RecentPlans lists the owner's latest plans, newest first.
func (a *App) RecentPlans(ctx context.Context, owner string, limit int) ([]planner.StoredPlan, error) {
	return a.planRepo.ListRecent(ctx, owner, limit)
}

// ShoppingResult is a shopping list plus any recipe ids that were not found.
type ShoppingResult struct {
	PlanID  string
	List    shopping.List
	Unknown []string
}

// ShoppingForPlan builds the shopping list of a saved plan. An empty planID
// means the owner's latest plan.
func (a *App) ShoppingForPlan(ctx context.Context, owner, planID string, skipPantry bool) (res *ShoppingResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if res != nil {
			n = res.List.Len()
		}
		a.track(ctx, "shopping", n, start, err)
	}()

	stored, err := a.resolvePlan(ctx, owner, planID)
	if err != nil {
		return nil, err
	}

	p, err := a.Pantry(ctx, owner)
	if err != nil {
		return nil, err
	}
	list := shopping.NewBuilder(p).FromMealPlan(stored.Plan, skipPantry)
	if _, err := a.shoppingRepo.Save(ctx, owner, stored.Plan.ID, list); err != nil {
		return nil, err
	}
	return &ShoppingResult{PlanID: stored.Plan.ID, List: list}, nil
}

// resolvePlan loads a plan by id, or the owner's latest plan when planID
// is empty.
func (a *App) resolvePlan(ctx context.Context, owner, planID string) (*planner.StoredPlan, error) {
	var (
		stored *planner.StoredPlan
		err    error
	)
	if planID == "" {
		stored, err = a.planRepo.Latest(ctx, owner)
	} else {
		stored, err = a.planRepo.GetForOwner(ctx, owner, planID)
	}
	if err != nil {
		return nil, err
	}
	if stored == nil {
		if planID == "" {
			return nil, fmt.Errorf("no meal plans yet; generate one first")
		}
		return nil, fmt.Errorf("meal plan %s not found", planID)
	}
	return stored, nil
}

// ShoppingForRecipes builds a shopping list for explicit recipe ids.
func (a *App) ShoppingForRecipes(ctx context.Context, owner string, ids []string, skipPantry bool) (res *ShoppingResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if res != nil {
			n = res.List.Len()
		}
		a.track(ctx, "shopping", n, start, err)
	}()

	catalog, err := a.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	recipes, unknown := catalog.GetMany(ids)
	if len(recipes) == 0 {
		return nil, fmt.Errorf("no known recipes among %s", strings.Join(ids, ", "))
	}
	for _, id := range unknown {
		logging.Warn().Str("recipe", id).Msg("unknown recipe id")
	}

	p, err := a.Pantry(ctx, owner)
	if err != nil {
		return nil, err
	}
	list := shopping.NewBuilder(p).FromRecipes(recipes, skipPantry)
	return &ShoppingResult{List: list, Unknown: unknown}, nil
}

// ImportURL clips a recipe page and stores the recipe.
func (a *App) ImportURL(ctx context.Context, url string) (rec recipe.Recipe, err error) {
	start := time.Now()
	defer func() { a.track(ctx, "import_url", len(rec.Ingredients), start, err) }()

	rec, err = a.recipeClipper.ClipURL(ctx, url)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to clip %s: %w", url, err)
	}
	if err := a.recipeRepo.Save(ctx, rec); err != nil {
		return recipe.Recipe{}, err
	}
	return rec, nil
}

// PublishPlan posts a saved plan and its shopping list to Ghost as a draft.
func (a *App) PublishPlan(ctx context.Context, owner, planID string) (*ghost.Post, error) {
	if a.cfg != nil {
		if err := a.cfg.RequireGhostAdmin(); err != nil {
			return nil, err
		}
	}
	stored, err := a.resolvePlan(ctx, owner, planID)
	if err != nil {
		return nil, err
	}
	p, err := a.Pantry(ctx, owner)
	if err != nil {
		return nil, err
	}
	list := shopping.NewBuilder(p).FromMealPlan(stored.Plan, true)
	return a.recipeClipper.PublishPlan(ctx, stored.Plan, list)
}

// Usage returns execution totals for the last N days.
func (a *App) Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return a.metricsStore.GetDailyUsage(ctx, days)
}

// CleanupMetrics removes execution records older than N days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("days must not be negative")
	}
	return a.metricsStore.Cleanup(ctx, days)
}

// Health reports process health and the size of the data directory.
func (a *App) Health() metrics.SysHealth {
	dir := "."
	if a.cfg != nil {
		dir = filepath.Dir(a.cfg.DatabasePath)
	}
	return metrics.GetSysHealth(dir)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
