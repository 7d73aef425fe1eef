package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"banquet-planner/internal/clipper"
	"banquet-planner/internal/metrics"
	"banquet-planner/internal/recipe"
)

// AddRecipesFromFile validates every recipe in a YAML file and then saves
// them. Ingredient lines without a unit take the ingredient's preferred unit.
// Nothing is saved if any recipe is invalid.
func (a *App) AddRecipesFromFile(ctx context.Context, path string) ([]string, error) {
	recipes, err := recipe.LoadFile(path)
	if err != nil {
		return nil, err
	}
	preferred, err := a.ingredients.PreferredUnits(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range recipes {
		for i, line := range rec.Ingredients {
			if strings.TrimSpace(line.Unit) == "" {
				rec.Ingredients[i].Unit = preferred[line.Name]
			}
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(recipes))
	for _, rec := range recipes {
		if _, err := a.recipeRepo.Save(ctx, rec); err != nil {
			return names, fmt.Errorf("failed to save recipe %q: %w", rec.Name, err)
		}
		a.collector.IncrementImport("file", "ok")
		names = append(names, rec.Name)
	}
	a.logger.Info("added recipes", zap.String("file", path), zap.Int("count", len(names)))
	return names, nil
}

// Usage summarizes recent activity and process health.
type Usage struct {
	Daily  []metrics.DailyUsage
	Health metrics.SysHealth
	Count  int
}

// UsageReport returns the last days of recorded usage.
func (a *App) UsageReport(ctx context.Context, days int) (Usage, error) {
	daily, err := a.metricsStore.GetDailyUsage(ctx, days)
	if err != nil {
		return Usage{}, err
	}
	count, err := a.recipeRepo.Count(ctx)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Daily: daily, Health: metrics.GetSysHealth(a.dataPath), Count: count}, nil
}

// RecipeNames returns catalog recipe names in alphabetical order.
func (a *App) RecipeNames(ctx context.Context) ([]string, error) {
	return a.recipeRepo.Names(ctx)
}

// ListRecipes returns the catalog in alphabetical order.
func (a *App) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return a.recipeRepo.List(ctx)
}

// DeleteRecipe removes a recipe by exact name and reports whether it existed.
func (a *App) DeleteRecipe(ctx context.Context, name string) (bool, error) {
	return a.recipeRepo.Delete(ctx, name)
}

// ListIngredients returns the master ingredient list, optionally filtered by
// a case-insensitive search.
func (a *App) ListIngredients(ctx context.Context, search string) ([]recipe.MasterIngredient, error) {
	return a.ingredients.List(ctx, search)
}

// SaveIngredient adds or updates a master ingredient.
func (a *App) SaveIngredient(ctx context.Context, ing recipe.MasterIngredient) error {
	_, err := a.ingredients.Save(ctx, ing)
	return err
}

// MergeIngredients renames duplicates to primary across every recipe so
// their shopping list entries combine. It returns the number of ingredient
// lines rewritten.
func (a *App) MergeIngredients(ctx context.Context, primary string, duplicates []string) (int64, error) {
	n, err := a.ingredients.Merge(ctx, primary, duplicates)
	if err != nil {
		return 0, err
	}
	a.logger.Info("merged ingredients",
		zap.String("primary", primary),
		zap.Strings("duplicates", duplicates),
		zap.Int64("lines", n),
	)
	return n, nil
}

// ClipURL imports a recipe from a web page.
func (a *App) ClipURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	return a.recipeClipper.ClipURL(ctx, url)
}

// ImportGhost imports every recipe post from Ghost.
func (a *App) ImportGhost(ctx context.Context) (clipper.ImportSummary, error) {
	return a.recipeClipper.ImportGhost(ctx)
}

// CanPublish reports whether orders can be posted to Ghost.
func (a *App) CanPublish() bool {
	return a.ghostClient != nil
}

// CleanupMetrics removes execution metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, days)
}
