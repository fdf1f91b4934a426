package recipe

import (
	"fmt"
	"strings"
)

// Meal categories used by multi-meal catalogs. Single-category catalogs may
// use any free-form value.
const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
	CategorySnack     = "snack"
)

// TagMealPrep marks recipes that are suitable for batch cooking.
const TagMealPrep = "meal-prep-friendly"

// Ingredient is a single ingredient line of a recipe.
type Ingredient struct {
	Amount string `json:"amount"`
	Item   string `json:"item"`
}

// Recipe is a catalog entry. Recipes are read-only once loaded.
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	PrepTime     int          `json:"prep_time"`
	CookTime     int          `json:"cook_time"`
	Servings     int          `json:"servings"`
	Difficulty   string       `json:"difficulty"`
	Tags         []string     `json:"tags"`
	SourceURL    string       `json:"source_url,omitempty"`
	UpdatedAt    string       `json:"updated_at,omitempty"`
}

// Items returns the ingredient item names in recipe order.
func (r Recipe) Items() []string {
	items := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		items = append(items, ing.Item)
	}
	return items
}

// HasTag reports whether the recipe carries tag, ignoring case.
func (r Recipe) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range r.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// InCategory reports whether the recipe belongs to category, ignoring case.
func (r Recipe) InCategory(category string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Category), strings.TrimSpace(category))
}

// TotalTime is prep time plus cook time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// WithDefaults fills the optional fields a catalog loader may omit.
func (r Recipe) WithDefaults() Recipe {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
	if r.Servings < 1 {
		r.Servings = 1
	}
	if r.PrepTime < 0 {
		r.PrepTime = 0
	}
	if r.CookTime < 0 {
		r.CookTime = 0
	}
	return r
}

// Validate checks the fields every catalog entry needs.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("recipe %q has no id", r.Name)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe %s has no name", r.ID)
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Item) == "" {
			return fmt.Errorf("recipe %s: ingredient %d has no item", r.ID, i+1)
		}
	}
	return nil
}
