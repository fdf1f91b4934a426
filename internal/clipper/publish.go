package clipper

import (
	"context"
	"fmt"
	"html"
	"strings"

	"meal-prep-planner/internal/ghost"
	"meal-prep-planner/internal/planner"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/shopping"
)

// FormatRecipeHTML renders a recipe as post HTML that ExtractRecipe can
// read back.
func FormatRecipeHTML(r recipe.Recipe) string {
	var sb strings.Builder
	if r.SourceURL != "" {
		u := html.EscapeString(r.SourceURL)
		fmt.Fprintf(&sb, "<p><i>Imported from: <a href=\"%s\">%s</a></i></p>", u, u)
	}
	fmt.Fprintf(&sb, "<div class=\"recipe-meta\" data-id=\"%s\" data-category=\"%s\" data-difficulty=\"%s\" data-prep-time=\"%d\" data-cook-time=\"%d\" data-servings=\"%d\" data-tags=\"%s\"></div>",
		html.EscapeString(r.ID), html.EscapeString(r.Category), html.EscapeString(r.Difficulty),
		r.PrepTime, r.CookTime, r.Servings, html.EscapeString(strings.Join(r.Tags, ",")))

	sb.WriteString("<h2>Ingredients</h2><ul class=\"ingredients\">")
	for _, ing := range r.Ingredients {
		if ing.Amount != "" {
			fmt.Fprintf(&sb, "<li><strong>%s</strong> %s</li>", html.EscapeString(ing.Amount), html.EscapeString(ing.Item))
		} else {
			fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(ing.Item))
		}
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h2>Instructions</h2><ol class=\"instructions\">")
	for _, step := range r.Instructions {
		fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(step))
	}
	sb.WriteString("</ol>")

	sb.WriteString("<hr>")
	fmt.Fprintf(&sb, "<p><strong>Prep Time:</strong> %d min | <strong>Cook Time:</strong> %d min | <strong>Servings:</strong> %d</p>",
		r.PrepTime, r.CookTime, r.Servings)

	return sb.String()
}

// FormatPlanHTML renders a meal plan and its shopping list as post HTML.
func FormatPlanHTML(plan planner.MealPlan, list shopping.List) string {
	var sb strings.Builder
	if !plan.StartDate.IsZero() {
		fmt.Fprintf(&sb, "<p><i>Week of %s</i></p>", plan.StartDate.Format("January 2, 2006"))
	}

	sb.WriteString("<h2>Meal Plan</h2>")
	for _, day := range plan.Entries {
		fmt.Fprintf(&sb, "<h3>Day %d: %s</h3><ul>", day.Index+1, html.EscapeString(day.Label))
		for _, mt := range plan.MealTypes {
			name := "<em>nothing available</em>"
			if r := day.Meal(mt); r != nil {
				name = html.EscapeString(r.Name)
			}
			if plan.DinnerOnly {
				fmt.Fprintf(&sb, "<li>%s</li>", name)
			} else {
				fmt.Fprintf(&sb, "<li><strong>%s:</strong> %s</li>", titleCase(string(mt)), name)
			}
		}
		sb.WriteString("</ul>")
	}

	sb.WriteString("<h2>Shopping List</h2>")
	if list.IsEmpty() {
		sb.WriteString("<p>Nothing to buy.</p>")
	}
	for _, cat := range list.Categories {
		fmt.Fprintf(&sb, "<h3>%s</h3><ul>", html.EscapeString(cat.Name))
		for _, it := range cat.Items {
			line := html.EscapeString(it.Name)
			if amounts := it.Amounts(); len(amounts) > 0 {
				line += " (" + html.EscapeString(strings.Join(amounts, ", ")) + ")"
			}
			fmt.Fprintf(&sb, "<li>%s</li>", line)
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}

// PublishPlan posts a plan and its shopping list to Ghost as a draft.
func (c *Clipper) PublishPlan(ctx context.Context, plan planner.MealPlan, list shopping.List) (*ghost.Post, error) {
	if c.ghostClient == nil {
		return nil, fmt.Errorf("ghost client not configured")
	}

	title := fmt.Sprintf("Meal Plan: %d days", plan.Days)
	if !plan.StartDate.IsZero() {
		title = "Meal Plan: week of " + plan.StartDate.Format("Jan 2, 2006")
	}

	post, err := c.ghostClient.CreatePost(ctx, title, FormatPlanHTML(plan, list), false)
	if err != nil {
		return nil, fmt.Errorf("failed to save to ghost: %w", err)
	}
	return post, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
