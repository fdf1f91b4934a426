package shopping

import (
	"sort"
	"strings"

	"meal-prep-planner/internal/pantry"
	"meal-prep-planner/internal/planner"
	"meal-prep-planner/internal/recipe"
)

// Builder consolidates recipe ingredients into a categorized List.
type Builder struct {
	pantry *pantry.Pantry
}

// NewBuilder creates a Builder. p may be nil, in which case nothing is
// ever excluded.
func NewBuilder(p *pantry.Pantry) *Builder {
	return &Builder{pantry: p}
}

// FromRecipes aggregates every ingredient of recipes. With skipPantry,
// items the user owns are left out. Staples are still listed. An ingredient
// without an item name is kept under Other.
func (b *Builder) FromRecipes(recipes []recipe.Recipe, skipPantry bool) List {
	byName := make(map[string]*Item)
	var order []string

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			name := strings.ToLower(strings.TrimSpace(ing.Item))
			if skipPantry && b.pantry.Owns(name) {
				continue
			}
			it, ok := byName[name]
			if !ok {
				it = &Item{Name: name}
				byName[name] = it
				order = append(order, name)
			}
			it.Contributions = append(it.Contributions, Contribution{
				Amount: strings.TrimSpace(ing.Amount),
				Recipe: r.Name,
			})
		}
	}

	grouped := make(map[string][]Item)
	for _, name := range order {
		cat := Categorize(name)
		grouped[cat] = append(grouped[cat], *byName[name])
	}

	list := List{Categories: []Category{}}
	for _, cat := range CategoryOrder {
		items := grouped[cat]
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		list.Categories = append(list.Categories, Category{Name: cat, Items: items})
	}
	return list
}

// FromMealPlan builds a list from every filled slot of plan. A recipe used
// on several days contributes once per use.
func (b *Builder) FromMealPlan(plan planner.MealPlan, skipPantry bool) List {
	return b.FromRecipes(plan.Recipes(), skipPantry)
}
