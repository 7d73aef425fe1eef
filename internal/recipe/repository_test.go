package recipe

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"banquet-planner/internal/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	rec := validRecipe()

	t.Run("GetByName-NotFound", func(t *testing.T) {
		got, err := repo.GetByName(ctx, rec.Name)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil recipe, got %+v", got)
		}
	})

	var id int64
	t.Run("Save", func(t *testing.T) {
		var err error
		id, err = repo.Save(ctx, rec)
		if err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}
		if id == 0 {
			t.Error("Expected a non-zero ID")
		}
	})

	t.Run("GetByName", func(t *testing.T) {
		got, err := repo.GetByName(ctx, rec.Name)
		if err != nil {
			t.Fatalf("Failed to get recipe: %v", err)
		}
		if got == nil {
			t.Fatal("Expected recipe, got nil")
		}
		if got.ID != id {
			t.Errorf("Expected ID %d, got %d", id, got.ID)
		}
		if !reflect.DeepEqual(got.Ingredients, rec.Ingredients) {
			t.Errorf("Expected ingredients %+v, got %+v", rec.Ingredients, got.Ingredients)
		}
		if !reflect.DeepEqual(got.Allergens, []string{"Dairy", "Eggs"}) {
			t.Errorf("Expected allergens [Dairy Eggs], got %v", got.Allergens)
		}
		if got.Subcategory != "Salads" {
			t.Errorf("Expected subcategory 'Salads', got '%s'", got.Subcategory)
		}
	})

	t.Run("GetByName-CaseSensitive", func(t *testing.T) {
		got, err := repo.GetByName(ctx, "caesar salad")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != nil {
			t.Errorf("Expected no match for a differently cased name, got %+v", got)
		}
	})

	t.Run("Save-Upsert", func(t *testing.T) {
		updated := rec
		updated.Description = "Now with anchovies"
		updated.Ingredients = []IngredientLine{{Name: "Anchovy", Quantity: 2, Unit: "each"}}
		updated.Allergens = []string{"Fish"}

		gotID, err := repo.Save(ctx, updated)
		if err != nil {
			t.Fatalf("Failed to update recipe: %v", err)
		}
		if gotID != id {
			t.Errorf("Expected upsert to keep ID %d, got %d", id, gotID)
		}

		got, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("Failed to get recipe: %v", err)
		}
		if got.Description != "Now with anchovies" {
			t.Errorf("Expected updated description, got '%s'", got.Description)
		}
		if len(got.Ingredients) != 1 || got.Ingredients[0].Name != "Anchovy" {
			t.Errorf("Expected ingredients to be replaced, got %+v", got.Ingredients)
		}
		if !reflect.DeepEqual(got.Allergens, []string{"Fish"}) {
			t.Errorf("Expected allergens [Fish], got %v", got.Allergens)
		}
	})

	t.Run("Save-Invalid", func(t *testing.T) {
		bad := validRecipe()
		bad.Name = "Broken"
		bad.Ingredients[0].Quantity = 0
		if _, err := repo.Save(ctx, bad); err == nil {
			t.Fatal("Expected validation error, got nil")
		}
		if got, _ := repo.GetByName(ctx, "Broken"); got != nil {
			t.Error("Expected invalid recipe not to be stored")
		}
	})

	t.Run("ListNamesCount", func(t *testing.T) {
		other := Recipe{
			Name:        "Arnold Palmer",
			Category:    "Beverages",
			Ingredients: []IngredientLine{{Name: "Iced Tea", Quantity: 8, Unit: "fl oz"}},
		}
		if _, err := repo.Save(ctx, other); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}

		names, err := repo.Names(ctx)
		if err != nil {
			t.Fatalf("Failed to list names: %v", err)
		}
		if !reflect.DeepEqual(names, []string{"Arnold Palmer", "Caesar Salad"}) {
			t.Errorf("Expected alphabetical names, got %v", names)
		}

		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list recipes: %v", err)
		}
		if len(all) != 2 || len(all[0].Ingredients) != 1 {
			t.Errorf("Expected 2 recipes with details loaded, got %+v", all)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count recipes: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected count 2, got %d", count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, rec.Name)
		if err != nil {
			t.Fatalf("Failed to delete recipe: %v", err)
		}
		if !deleted {
			t.Error("Expected recipe to be deleted")
		}

		deleted, err = repo.Delete(ctx, rec.Name)
		if err != nil {
			t.Fatalf("Expected no error deleting a missing recipe, got %v", err)
		}
		if deleted {
			t.Error("Expected second delete to report nothing deleted")
		}

		count, _ := repo.Count(ctx)
		if count != 1 {
			t.Errorf("Expected count 1 after delete, got %d", count)
		}
	})
}
