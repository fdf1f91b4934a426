package recipe

import (
	"sort"
	"strings"
)

// Catalog is an ordered, id-indexed collection of recipes.
type Catalog struct {
	recipes []Recipe
	byID    map[string]int
}

// NewCatalog builds a catalog. Later duplicates of an id are dropped.
func NewCatalog(recipes []Recipe) *Catalog {
	c := &Catalog{
		recipes: make([]Recipe, 0, len(recipes)),
		byID:    make(map[string]int, len(recipes)),
	}
	for _, r := range recipes {
		if _, dup := c.byID[r.ID]; dup {
			continue
		}
		c.byID[r.ID] = len(c.recipes)
		c.recipes = append(c.recipes, r)
	}
	return c
}

// All returns a copy of the recipes in catalog order.
func (c *Catalog) All() []Recipe {
	out := make([]Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// Len returns the number of recipes.
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// Get looks up a recipe by id.
func (c *Catalog) Get(id string) (Recipe, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Recipe{}, false
	}
	return c.recipes[i], true
}

// GetMany resolves ids in order and returns the ids that were not found.
func (c *Catalog) GetMany(ids []string) ([]Recipe, []string) {
	var found []Recipe
	var unknown []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if r, ok := c.Get(id); ok {
			found = append(found, r)
		} else {
			unknown = append(unknown, id)
		}
	}
	return found, unknown
}

// SearchByName returns recipes whose name contains query, ignoring case.
func (c *Catalog) SearchByName(query string) []Recipe {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Recipe
	for _, r := range c.recipes {
		if strings.Contains(strings.ToLower(r.Name), query) {
			out = append(out, r)
		}
	}
	return out
}

// ByCategory returns recipes in category, ignoring case.
func (c *Catalog) ByCategory(category string) []Recipe {
	var out []Recipe
	for _, r := range c.recipes {
		if r.InCategory(category) {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the distinct lower-cased categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	for _, r := range c.recipes {
		seen[strings.ToLower(strings.TrimSpace(r.Category))] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
