package planner

import (
	"time"

	"meal-prep-planner/internal/recipe"
)

// MealType is a slot within a day.
type MealType string

const (
	Breakfast MealType = recipe.CategoryBreakfast
	Lunch     MealType = recipe.CategoryLunch
	Dinner    MealType = recipe.CategoryDinner
	Snack     MealType = recipe.CategorySnack
)

// MealTypes is the fixed fill order within a day.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayLabel returns the display name for a zero-based day index. Labels
// repeat every seven days; the index is the key.
func DayLabel(index int) string {
	return dayNames[index%len(dayNames)]
}

// DayEntry holds the assignments for one plan day. A requested slot whose
// pool was empty has no entry in Meals.
type DayEntry struct {
	Index int                         `json:"index"`
	Label string                      `json:"label"`
	Meals map[MealType]*recipe.Recipe `json:"meals"`
}

// Meal returns the recipe assigned to mt, or nil.
func (d DayEntry) Meal(mt MealType) *recipe.Recipe {
	return d.Meals[mt]
}

// MealPlan is a generated multi-day schedule.
type MealPlan struct {
	ID         string     `json:"id,omitempty"`
	StartDate  time.Time  `json:"start_date"`
	Days       int        `json:"days"`
	DinnerOnly bool       `json:"dinner_only"`
	MealTypes  []MealType `json:"meal_types"`
	Entries    []DayEntry `json:"entries"`
}

// Recipes flattens every filled slot in day and meal order. Repeats are kept.
func (p MealPlan) Recipes() []recipe.Recipe {
	var out []recipe.Recipe
	for _, day := range p.Entries {
		for _, mt := range p.MealTypes {
			if r := day.Meal(mt); r != nil {
				out = append(out, *r)
			}
		}
	}
	return out
}

// UnfilledSlots counts requested slots left empty.
func (p MealPlan) UnfilledSlots() int {
	n := 0
	for _, day := range p.Entries {
		for _, mt := range p.MealTypes {
			if day.Meal(mt) == nil {
				n++
			}
		}
	}
	return n
}

// Options configures GeneratePlan. With no meal type selected the plan is
// dinner-only: one slot per day drawn from the whole working set.
type Options struct {
	Days           int
	Breakfast      bool
	Lunch          bool
	Dinner         bool
	Snack          bool
	Variety        bool
	PreferMealPrep bool
	StartDate      time.Time
}

// DinnerOnly reports whether no meal type was selected.
func (o Options) DinnerOnly() bool {
	return !o.Breakfast && !o.Lunch && !o.Dinner && !o.Snack
}

// Selected returns the requested meal types in fill order.
func (o Options) Selected() []MealType {
	if o.DinnerOnly() {
		return []MealType{Dinner}
	}
	var out []MealType
	for _, mt := range MealTypes {
		if o.includes(mt) {
			out = append(out, mt)
		}
	}
	return out
}

func (o Options) includes(mt MealType) bool {
	switch mt {
	case Breakfast:
		return o.Breakfast
	case Lunch:
		return o.Lunch
	case Dinner:
		return o.Dinner
	case Snack:
		return o.Snack
	}
	return false
}

// GetNextMonday returns midnight of the Monday after t (a week later when t
// is itself a Monday).
func GetNextMonday(t time.Time) time.Time {
	days := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	next := t.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}
