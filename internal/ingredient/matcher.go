package ingredient

import (
	"sort"
	"strings"

	"meal-prep-planner/internal/pantry"
	"meal-prep-planner/internal/recipe"
)

const (
	// NoMissingLimit disables the missing-ingredient cap in Rank.
	NoMissingLimit = -1

	// DefaultMaxMissing is the cap AlmostMatches callers use by default.
	DefaultMaxMissing = 3

	// AlmostMinPercentage is the match floor for AlmostMatches.
	AlmostMinPercentage = 70.0
)

// MatchResult describes how well a recipe is covered by a pantry.
type MatchResult struct {
	Percentage float64  `json:"match_percentage"`
	Matched    []string `json:"matched_ingredients"`
	Missing    []string `json:"missing_ingredients"`
}

// RankedRecipe is a copy of a recipe with its match result attached.
type RankedRecipe struct {
	recipe.Recipe
	MatchResult
}

// Matcher scores recipes against a pantry snapshot.
type Matcher struct {
	entries []pantryEntry
}

type pantryEntry struct {
	name       string
	normalized string
}

// NewMatcher snapshots the pantry, staples included. Entries are scanned in
// sorted order so results do not depend on map iteration.
func NewMatcher(p *pantry.Pantry) *Matcher {
	names := p.All()
	entries := make([]pantryEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, pantryEntry{name: name, normalized: Normalize(name)})
	}
	return &Matcher{entries: entries}
}

// Matches reports whether a recipe ingredient is satisfied by a pantry
// ingredient. Checks run in priority order: equality, containment either
// way, then naive singular/plural equivalence.
func (m *Matcher) Matches(recipeIngredient, pantryIngredient string) bool {
	return matchNormalized(Normalize(recipeIngredient), Normalize(pantryIngredient))
}

func matchNormalized(r, p string) bool {
	if r == p {
		return true
	}
	if r != "" && p != "" && (strings.Contains(p, r) || strings.Contains(r, p)) {
		return true
	}
	return strings.TrimSuffix(r, "s") == p || r == strings.TrimSuffix(p, "s")
}

// Score classifies every ingredient of r as matched or missing. A recipe
// without ingredients scores zero with both lists empty.
func (m *Matcher) Score(r recipe.Recipe) MatchResult {
	result := MatchResult{Matched: []string{}, Missing: []string{}}
	if len(r.Ingredients) == 0 {
		return result
	}

	for _, ing := range r.Ingredients {
		if m.inPantry(Normalize(ing.Item)) {
			result.Matched = append(result.Matched, ing.Item)
		} else {
			result.Missing = append(result.Missing, ing.Item)
		}
	}

	result.Percentage = float64(len(result.Matched)) / float64(len(r.Ingredients)) * 100
	return result
}

func (m *Matcher) inPantry(normalized string) bool {
	for _, e := range m.entries {
		if matchNormalized(normalized, e.normalized) {
			return true
		}
	}
	return false
}

// ShoppingNeeds returns the ingredients of r the pantry does not cover.
func (m *Matcher) ShoppingNeeds(r recipe.Recipe) []string {
	return m.Score(r).Missing
}

// Rank keeps recipes scoring at least minPercentage and, unless maxMissing
// is negative, missing at most maxMissing ingredients. Results are sorted
// by percentage descending; ties keep input order.
func (m *Matcher) Rank(recipes []recipe.Recipe, minPercentage float64, maxMissing int) []RankedRecipe {
	ranked := make([]RankedRecipe, 0)
	for _, r := range recipes {
		res := m.Score(r)
		if res.Percentage < minPercentage {
			continue
		}
		if maxMissing >= 0 && len(res.Missing) > maxMissing {
			continue
		}
		ranked = append(ranked, RankedRecipe{Recipe: r, MatchResult: res})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Percentage > ranked[j].Percentage
	})
	return ranked
}

// PerfectMatches returns recipes the pantry fully covers.
func (m *Matcher) PerfectMatches(recipes []recipe.Recipe) []RankedRecipe {
	return m.Rank(recipes, 100, NoMissingLimit)
}

// AlmostMatches returns recipes at least 70% covered with at most
// maxMissing ingredients missing.
func (m *Matcher) AlmostMatches(recipes []recipe.Recipe, maxMissing int) []RankedRecipe {
	return m.Rank(recipes, AlmostMinPercentage, maxMissing)
}

// Recipes strips match data from ranked results, keeping order.
func Recipes(ranked []RankedRecipe) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Recipe)
	}
	return out
}
