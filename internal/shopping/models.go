package shopping

import (
	"sort"
	"strings"
	"time"
)

// Category names in priority order. Other collects anything unmatched.
const (
	CategoryProduce    = "Produce"
	CategoryMeat       = "Meat & Seafood"
	CategoryDairy      = "Dairy & Eggs"
	CategoryGrains     = "Grains & Pasta"
	CategoryCanned     = "Canned & Jarred"
	CategoryCondiments = "Spices & Condiments"
	CategoryOther      = "Other"
)

type categoryRule struct {
	name     string
	keywords []string
}

// rules are tried in order; the first keyword hit wins.
var rules = []categoryRule{
	{CategoryProduce, []string{
		"lettuce", "tomato", "cucumber", "onion", "garlic", "pepper", "carrot",
		"celery", "potato", "broccoli", "spinach", "avocado", "berry", "berries",
		"banana", "lemon", "lime", "apple", "orange", "basil", "cilantro",
		"parsley", "thyme", "rosemary", "ginger",
	}},
	{CategoryMeat, []string{
		"chicken", "beef", "pork", "turkey", "sausage", "salmon", "fish",
		"shrimp", "tuna", "ground",
	}},
	{CategoryDairy, []string{"milk", "cheese", "yogurt", "butter", "cream", "egg"}},
	{CategoryGrains, []string{
		"rice", "pasta", "bread", "quinoa", "oats", "flour", "tortilla", "pita", "ziti",
	}},
	{CategoryCanned, []string{"can", "canned", "beans", "chickpeas", "tomatoes", "broth"}},
	{CategoryCondiments, []string{
		"salt", "pepper", "cumin", "paprika", "oregano", "cinnamon", "oil",
		"vinegar", "sauce", "powder", "extract", "seasoning", "honey", "sugar", "syrup",
	}},
}

// CategoryOrder is the display order of categories.
var CategoryOrder = []string{
	CategoryProduce, CategoryMeat, CategoryDairy, CategoryGrains,
	CategoryCanned, CategoryCondiments, CategoryOther,
}

// Categorize returns the store section for an item name.
func Categorize(item string) string {
	name := strings.ToLower(item)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.name
			}
		}
	}
	return CategoryOther
}

// Contribution is one recipe's need for an item. Amounts are display strings.
type Contribution struct {
	Amount string `json:"amount"`
	Recipe string `json:"recipe"`
}

// Item is a consolidated shopping list line.
type Item struct {
	Name          string         `json:"name"`
	Contributions []Contribution `json:"contributions"`
}

// Amounts returns the non-empty contribution amounts in order.
func (i Item) Amounts() []string {
	var out []string
	for _, c := range i.Contributions {
		if c.Amount != "" {
			out = append(out, c.Amount)
		}
	}
	return out
}

// RecipeNames returns the distinct recipes that need the item, in order.
func (i Item) RecipeNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range i.Contributions {
		if !seen[c.Recipe] {
			seen[c.Recipe] = true
			out = append(out, c.Recipe)
		}
	}
	return out
}

// Category groups items of one store section, sorted by name.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// List is a categorized shopping list. Empty categories are never present.
type List struct {
	Categories []Category `json:"categories"`
}

// Len returns the number of distinct items.
func (l List) Len() int {
	n := 0
	for _, c := range l.Categories {
		n += len(c.Items)
	}
	return n
}

// IsEmpty reports whether the list has no items.
func (l List) IsEmpty() bool {
	return l.Len() == 0
}

// Lookup finds an item by name and returns it with its category.
func (l List) Lookup(name string) (Item, string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range l.Categories {
		for _, it := range c.Items {
			if it.Name == key {
				return it, c.Name, true
			}
		}
	}
	return Item{}, "", false
}

// SimpleList returns every item name sorted alphabetically.
func (l List) SimpleList() []string {
	names := make([]string, 0, l.Len())
	for _, c := range l.Categories {
		for _, it := range c.Items {
			names = append(names, it.Name)
		}
	}
	sort.Strings(names)
	return names
}

// StoredList is a persisted shopping list.
type StoredList struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	MealPlanID string    `json:"meal_plan_id"`
	List       List      `json:"list"`
	CreatedAt  time.Time `json:"created_at"`
}
