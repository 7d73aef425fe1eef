package report

import (
	"fmt"
	"strconv"
	"strings"

	"banquet-planner/internal/metrics"
	"banquet-planner/internal/recipe"
)

// Catalog renders recipes as a table, one row per recipe.
func Catalog(recipes []recipe.Recipe) string {
	if len(recipes) == 0 {
		return "No recipes in the catalog.\n"
	}
	t := newTable("Recipe", "Category", "Ingredients", "Allergens").alignRight(2)
	for _, r := range recipes {
		category := r.Category
		if r.Subcategory != "" {
			category += " / " + r.Subcategory
		}
		t.addRow(r.Name, category, strconv.Itoa(len(r.Ingredients)), strings.Join(sortedCopy(r.Allergens), ", "))
	}
	return t.render()
}

// Usage renders daily execution totals, newest first.
func Usage(days []metrics.DailyUsage) string {
	if len(days) == 0 {
		return "No usage recorded.\n"
	}
	t := newTable("Date", "Runs", "Items", "Prompt Tokens", "Completion Tokens").alignRight(1, 2, 3, 4)
	for _, d := range days {
		t.addRow(d.Date,
			strconv.Itoa(d.TotalExecution),
			strconv.Itoa(d.TotalItems),
			fmt.Sprint(d.TotalPrompt),
			fmt.Sprint(d.TotalCompletion))
	}
	return t.render()
}

// Ingredients renders the master ingredient list.
func Ingredients(list []recipe.MasterIngredient) string {
	if len(list) == 0 {
		return "No ingredients found.\n"
	}
	t := newTable("Ingredient", "Category", "Preferred Unit", "Used In", "Last Used").alignRight(3)
	for _, ing := range list {
		lastUsed := ""
		if ing.LastUsed != nil {
			lastUsed = ing.LastUsed.Format("2006-01-02")
		}
		t.addRow(ing.Name, ing.Category, ing.PreferredUnit, strconv.Itoa(ing.Uses), lastUsed)
	}
	return t.render()
}
