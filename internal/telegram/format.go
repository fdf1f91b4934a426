package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meal-prep-planner/internal/app"
	"meal-prep-planner/internal/ingredient"
	"meal-prep-planner/internal/planner"
	"meal-prep-planner/internal/shopping"
)

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatPantryMarkdown(items []string) string {
	if len(items) == 0 {
		return "🧺 Your pantry is empty. Add items with /add eggs, rice"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧺 *Your Pantry* (%d items)\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&sb, "• %s\n", escape(item))
	}
	return sb.String()
}

func formatMatchesMarkdown(title string, ranked []ingredient.RankedRecipe) string {
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	if len(ranked) == 0 {
		sb.WriteString("_No recipes found._")
		return sb.String()
	}
	for i, r := range ranked {
		fmt.Fprintf(&sb, "%d. *%s* (%.0f%%) `%s`\n", i+1, escape(r.Name), r.Percentage, r.ID)
		if len(r.Missing) > 0 {
			fmt.Fprintf(&sb, "   _Missing:_ %s\n", escape(strings.Join(r.Missing, ", ")))
		}
	}
	return sb.String()
}

func formatRecipeMarkdown(d *app.RecipeDetail) string {
	r := d.Recipe
	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 *%s*\n", escape(r.Name))
	fmt.Fprintf(&sb, "%s | %d min | serves %d\n\n", escape(r.Category), r.TotalTime(), r.Servings)

	sb.WriteString("*Ingredients*\n")
	for _, ing := range r.Ingredients {
		line := ing.Item
		if ing.Amount != "" {
			line = ing.Amount + " " + ing.Item
		}
		fmt.Fprintf(&sb, "• %s\n", escape(line))
	}
	if len(r.Instructions) > 0 {
		sb.WriteString("\n*Instructions*\n")
		for i, step := range r.Instructions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, escape(step))
		}
	}

	fmt.Fprintf(&sb, "\n✅ %.0f%% in your pantry", d.Match.Percentage)
	if len(d.Match.Missing) > 0 {
		fmt.Fprintf(&sb, "\n🛒 Missing: %s", escape(strings.Join(d.Match.Missing, ", ")))
	}
	return sb.String()
}

func formatPlanMarkdown(plan planner.MealPlan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Meal Plan*")
	if !plan.StartDate.IsZero() {
		fmt.Fprintf(&sb, " (week of %s)", plan.StartDate.Format("Jan 2"))
	}
	sb.WriteString("\n\n")

	for _, day := range plan.Entries {
		if plan.DinnerOnly {
			fmt.Fprintf(&sb, "*%s*: %s\n", day.Label, mealMarkdown(day, planner.Dinner))
			continue
		}
		fmt.Fprintf(&sb, "*Day %d - %s*\n", day.Index+1, day.Label)
		for _, mt := range plan.MealTypes {
			fmt.Fprintf(&sb, "  %s: %s\n", mealLabel(mt), mealMarkdown(day, mt))
		}
		sb.WriteString("\n")
	}
	if n := plan.UnfilledSlots(); n > 0 {
		fmt.Fprintf(&sb, "\n⚠️ %d slot(s) had no recipe available.\n", n)
	}
	return sb.String()
}

func mealLabel(mt planner.MealType) string {
	s := string(mt)
	return strings.ToUpper(s[:1]) + s[1:]
}

func mealMarkdown(day planner.DayEntry, mt planner.MealType) string {
	r := day.Meal(mt)
	if r == nil {
		return "_nothing available_"
	}
	return fmt.Sprintf("%s (%d min)", escape(r.Name), r.TotalTime())
}

func formatShoppingMarkdown(list shopping.List) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if list.IsEmpty() {
		sb.WriteString("_Nothing to buy._")
		return sb.String()
	}
	for _, cat := range list.Categories {
		fmt.Fprintf(&sb, "*%s*\n", escape(cat.Name))
		for _, it := range cat.Items {
			line := it.Name
			if amounts := it.Amounts(); len(amounts) > 0 {
				line += " (" + strings.Join(amounts, ", ") + ")"
			}
			fmt.Fprintf(&sb, "• %s\n", escape(line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
