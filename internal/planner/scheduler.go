package planner

import (
	"meal-prep-planner/internal/recipe"
)

// Scheduler assigns recipes from a working set to plan slots.
type Scheduler struct {
	recipes []recipe.Recipe
	picker  Picker
}

// NewScheduler creates a Scheduler over recipes (a full catalog or a
// ranked subset). picker is the only source of randomness.
func NewScheduler(recipes []recipe.Recipe, picker Picker) *Scheduler {
	return &Scheduler{recipes: recipes, picker: picker}
}

// GeneratePlan fills opts.Days days. Slots whose pool is empty stay unset.
func (s *Scheduler) GeneratePlan(opts Options) MealPlan {
	mealTypes := opts.Selected()
	plan := MealPlan{
		StartDate:  opts.StartDate,
		Days:       opts.Days,
		DinnerOnly: opts.DinnerOnly(),
		MealTypes:  mealTypes,
		Entries:    make([]DayEntry, 0, max(opts.Days, 0)),
	}

	pools := s.pools(opts, mealTypes)
	used := make(map[string]bool)

	for day := 0; day < opts.Days; day++ {
		entry := DayEntry{
			Index: day,
			Label: DayLabel(day),
			Meals: make(map[MealType]*recipe.Recipe, len(mealTypes)),
		}
		for _, mt := range mealTypes {
			var chosen *recipe.Recipe
			if mt == Snack && !plan.DinnerOnly {
				// Snacks may repeat freely and never consume variety.
				chosen = s.SelectRecipe(pools[mt], nil, false)
			} else {
				chosen = s.SelectRecipe(pools[mt], used, opts.Variety)
			}
			if chosen != nil {
				entry.Meals[mt] = chosen
			}
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan
}

func (s *Scheduler) pools(opts Options, mealTypes []MealType) map[MealType][]recipe.Recipe {
	pools := make(map[MealType][]recipe.Recipe, len(mealTypes))
	for _, mt := range mealTypes {
		var pool []recipe.Recipe
		if opts.DinnerOnly() {
			pool = s.recipes
		} else {
			for _, r := range s.recipes {
				if r.InCategory(string(mt)) {
					pool = append(pool, r)
				}
			}
		}
		if opts.PreferMealPrep {
			pool = preferMealPrep(pool)
		}
		pools[mt] = pool
	}
	return pools
}

// preferMealPrep restricts pool to meal-prep-friendly recipes unless that
// would leave nothing to choose from.
func preferMealPrep(pool []recipe.Recipe) []recipe.Recipe {
	var tagged []recipe.Recipe
	for _, r := range pool {
		if r.HasTag(recipe.TagMealPrep) {
			tagged = append(tagged, r)
		}
	}
	if len(tagged) == 0 {
		return pool
	}
	return tagged
}

// SelectRecipe picks one recipe from pool. With variety, recipes whose id is
// in used are skipped until every pool member has been used, at which point
// the pool's ids are released and selection starts over. The chosen id is
// recorded in used when variety is on. Returns nil for an empty pool.
func (s *Scheduler) SelectRecipe(pool []recipe.Recipe, used map[string]bool, variety bool) *recipe.Recipe {
	if len(pool) == 0 {
		return nil
	}
	if used == nil {
		used = make(map[string]bool)
	}

	candidates := pool
	if variety {
		candidates = unused(pool, used)
		if len(candidates) == 0 {
			for _, r := range pool {
				delete(used, r.ID)
			}
			candidates = pool
		}
	}

	chosen := candidates[s.picker.Pick(len(candidates))]
	if variety {
		used[chosen.ID] = true
	}
	return &chosen
}

func unused(pool []recipe.Recipe, used map[string]bool) []recipe.Recipe {
	var out []recipe.Recipe
	for _, r := range pool {
		if !used[r.ID] {
			out = append(out, r)
		}
	}
	return out
}
