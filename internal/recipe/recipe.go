package recipe

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// IngredientLine is one measured ingredient of a recipe.
type IngredientLine struct {
	Name     string  `json:"name" yaml:"name"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Unit     string  `json:"unit" yaml:"unit"`
}

// Recipe is a catalog entry that can be ordered on a banquet menu.
type Recipe struct {
	ID          int64            `json:"id" yaml:"-"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description"`
	Category    string           `json:"category,omitempty" yaml:"category"`
	Subcategory string           `json:"subcategory,omitempty" yaml:"subcategory"`
	Ingredients []IngredientLine `json:"ingredients" yaml:"ingredients"`
	Allergens   []string         `json:"allergens,omitempty" yaml:"allergens"`
}

// StandardAllergens are the allergens offered when entering a recipe.
var StandardAllergens = []string{"Dairy", "Eggs", "Peanuts", "Tree Nuts", "Fish", "Shellfish", "Soy", "Wheat"}

// Categories maps each menu category to its subcategories.
var Categories = map[string][]string{
	"Breakfast Table":          {},
	"Build your own Breakfast": {},
	"Breakfast Handhelds":      {},
	"Breakfast Additions":      {},
	"Beverages":                {},
	"Snacks":                   {},
	"Deli Table":               {"Handhelds", "Side Salads"},
	"Reception Displays":       {},
	"A La Carte Appetizers":    {"Warm", "Cold"},
	"Strolling Stations":       {},
	"Plated Dinners":           {"Entrees", "Duets", "Accompaniments", "Salads"},
	"Dinner Buffet":            {"Cold Starters", "Entrees", "Accompaniments", "Desserts"},
	"Dessert Station":          {},
	"Custom Requests":          {},
}

// Validate checks that a recipe can be stored and ordered.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("recipe name is required")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe %q needs at least one ingredient", r.Name)
	}
	for i, line := range r.Ingredients {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("recipe %q ingredient %d: %w", r.Name, i+1, err)
		}
	}
	if err := validateCategory(r.Category, r.Subcategory); err != nil {
		return fmt.Errorf("recipe %q: %w", r.Name, err)
	}
	for _, a := range r.Allergens {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("recipe %q has an empty allergen", r.Name)
		}
	}
	return nil
}

// Validate checks a single ingredient line.
func (l IngredientLine) Validate() error {
	if l.Name == "" {
		return errors.New("ingredient name is required")
	}
	if !(l.Quantity > 0) || math.IsInf(l.Quantity, 0) {
		return fmt.Errorf("invalid quantity %v for %q", l.Quantity, l.Name)
	}
	if strings.TrimSpace(l.Unit) == "" {
		return fmt.Errorf("unit is required for %q", l.Name)
	}
	return nil
}

func validateCategory(category, subcategory string) error {
	if category == "" {
		if subcategory != "" {
			return fmt.Errorf("subcategory %q given without a category", subcategory)
		}
		return nil
	}
	subs, ok := Categories[category]
	if !ok {
		return fmt.Errorf("unknown category %q", category)
	}
	if subcategory == "" {
		return nil
	}
	for _, s := range subs {
		if s == subcategory {
			return nil
		}
	}
	return fmt.Errorf("unknown subcategory %q for category %q", subcategory, category)
}

// LoadFile reads recipe definitions from a YAML file containing either a
// single recipe or a "recipes" list.
func LoadFile(path string) ([]Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}

	var doc struct {
		Recipes []Recipe `yaml:"recipes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse recipe file %s: %w", path, err)
	}
	if len(doc.Recipes) > 0 {
		return doc.Recipes, nil
	}

	var single Recipe
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse recipe file %s: %w", path, err)
	}
	if single.Name == "" {
		return nil, fmt.Errorf("no recipes found in %s", path)
	}
	return []Recipe{single}, nil
}
