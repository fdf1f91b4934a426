package app

import (
	"fmt"
	"io"
	"strings"

	"meal-prep-planner/internal/ingredient"
	"meal-prep-planner/internal/pantry"
	"meal-prep-planner/internal/planner"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/shopping"
)

var rule = strings.Repeat("=", 70)

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n\n", rule, title, rule)
}

// RenderPantry prints the user's pantry items.
func RenderPantry(w io.Writer, p *pantry.Pantry) {
	heading(w, fmt.Sprintf("YOUR PANTRY (%d items)", p.Len()))
	if p.IsEmpty() {
		fmt.Fprintln(w, "Your pantry is empty. Add items with: pantry add \"eggs, rice\"")
		return
	}
	for _, item := range p.Items() {
		fmt.Fprintf(w, "  - %s\n", item)
	}
	fmt.Fprintf(w, "\nAlways available: %s\n", strings.Join(pantry.Staples, ", "))
}

// RenderRecipeList prints a numbered recipe summary.
func RenderRecipeList(w io.Writer, title string, recipes []recipe.Recipe) {
	heading(w, fmt.Sprintf("%s (%d found)", title, len(recipes)))
	for i, r := range recipes {
		fmt.Fprintf(w, "%d. %s [%s]\n", i+1, r.Name, r.ID)
		fmt.Fprintf(w, "   Category: %s | Time: %d min | Tags: %s\n\n", titleCase(r.Category), r.TotalTime(), tagList(r.Tags))
	}
}

// RenderRecipe prints one recipe with its pantry match.
func RenderRecipe(w io.Writer, d *RecipeDetail) {
	r := d.Recipe
	heading(w, strings.ToUpper(r.Name))
	fmt.Fprintf(w, "ID: %s | Category: %s | Difficulty: %s\n", r.ID, titleCase(r.Category), titleCase(r.Difficulty))
	fmt.Fprintf(w, "Prep: %d min | Cook: %d min | Servings: %d\n", r.PrepTime, r.CookTime, r.Servings)
	fmt.Fprintf(w, "Tags: %s\n", tagList(r.Tags))
	if r.SourceURL != "" {
		fmt.Fprintf(w, "Source: %s\n", r.SourceURL)
	}

	fmt.Fprintln(w, "\nINGREDIENTS:")
	for _, ing := range r.Ingredients {
		if ing.Amount != "" {
			fmt.Fprintf(w, "  - %s %s\n", ing.Amount, ing.Item)
		} else {
			fmt.Fprintf(w, "  - %s\n", ing.Item)
		}
	}
	fmt.Fprintln(w, "\nINSTRUCTIONS:")
	for i, step := range r.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}

	fmt.Fprintf(w, "\nMatch with your pantry: %.0f%%\n", d.Match.Percentage)
	if len(d.Match.Missing) > 0 {
		fmt.Fprintf(w, "Missing ingredients: %s\n", strings.Join(d.Match.Missing, ", "))
	}
}

// RenderMatches prints perfect and almost matches.
func RenderMatches(w io.Writer, m *Matches) {
	heading(w, fmt.Sprintf("RECIPES YOU CAN MAKE NOW (%d found)", len(m.Perfect)))
	if len(m.Perfect) == 0 {
		fmt.Fprintln(w, "No recipes found with current ingredients.")
	}
	for i, r := range m.Perfect {
		fmt.Fprintf(w, "%d. %s [%s]\n", i+1, r.Name, r.ID)
		fmt.Fprintf(w, "   Category: %s | Time: %d min | Tags: %s\n\n", titleCase(r.Category), r.TotalTime(), tagList(r.Tags))
	}

	almost := withMissing(m.Almost)
	heading(w, fmt.Sprintf("RECIPES WITH FEW MISSING INGREDIENTS (%d found)", len(almost)))
	if len(almost) == 0 {
		fmt.Fprintf(w, "No recipes found with %d or fewer missing ingredients.\n", m.MaxMissing)
	}
	for i, r := range almost {
		fmt.Fprintf(w, "%d. %s (%.0f%% match)\n", i+1, r.Name, r.Percentage)
		fmt.Fprintf(w, "   Category: %s | Time: %d min\n", titleCase(r.Category), r.TotalTime())
		fmt.Fprintf(w, "   Missing: %s\n\n", strings.Join(r.Missing, ", "))
	}
}

// withMissing drops perfect matches, which are listed separately.
func withMissing(ranked []ingredient.RankedRecipe) []ingredient.RankedRecipe {
	var out []ingredient.RankedRecipe
	for _, r := range ranked {
		if len(r.Missing) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// RenderPlan prints a meal plan day by day.
func RenderPlan(w io.Writer, plan planner.MealPlan) {
	title := "MEAL PLAN"
	if !plan.StartDate.IsZero() {
		title = fmt.Sprintf("MEAL PLAN (week of %s)", plan.StartDate.Format("Jan 2, 2006"))
	}
	heading(w, title)
	if plan.ID != "" {
		fmt.Fprintf(w, "Plan ID: %s\n\n", plan.ID)
	}

	for _, day := range plan.Entries {
		if plan.DinnerOnly {
			fmt.Fprintf(w, "Day %-2d %-10s: %s\n", day.Index+1, day.Label, mealName(day.Meal(planner.Dinner)))
			continue
		}
		fmt.Fprintf(w, "Day %d - %s\n", day.Index+1, day.Label)
		for _, mt := range plan.MealTypes {
			fmt.Fprintf(w, "  %-10s: %s\n", titleCase(string(mt)), mealName(day.Meal(mt)))
		}
		fmt.Fprintln(w)
	}
	if n := plan.UnfilledSlots(); n > 0 {
		fmt.Fprintf(w, "\n%d slot(s) could not be filled from the available recipes.\n", n)
	}
}

func mealName(r *recipe.Recipe) string {
	if r == nil {
		return "(no recipe available)"
	}
	return fmt.Sprintf("%s (%d min)", r.Name, r.TotalTime())
}

// RenderShoppingList prints a categorized list with checkboxes. The
// recipes needing an item are shown when more than one does.
func RenderShoppingList(w io.Writer, list shopping.List) {
	heading(w, "SHOPPING LIST")
	if list.IsEmpty() {
		fmt.Fprintln(w, "Nothing to buy.")
		return
	}
	for _, cat := range list.Categories {
		fmt.Fprintf(w, "%s:\n%s\n", cat.Name, strings.Repeat("-", 70))
		for _, it := range cat.Items {
			fmt.Fprintf(w, "  [ ] %s\n", titleWords(it.Name))
			fmt.Fprintf(w, "      Amount: %s\n", strings.Join(amountsOrDash(it), ", "))
			if len(it.Contributions) > 1 {
				fmt.Fprintf(w, "      For: %s\n", strings.Join(it.RecipeNames(), ", "))
			}
		}
		fmt.Fprintln(w)
	}
}

func amountsOrDash(it shopping.Item) []string {
	if a := it.Amounts(); len(a) > 0 {
		return a
	}
	return []string{"-"}
}

// RenderSimpleList prints one item name per line, sorted.
func RenderSimpleList(w io.Writer, list shopping.List) {
	for _, name := range list.SimpleList() {
		fmt.Fprintln(w, name)
	}
}

func tagList(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = titleCase(w)
	}
	return strings.Join(words, " ")
}
