// Package shopping scales ordered recipes and merges their ingredients into a
// consolidated shopping list.
package shopping

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"banquet-planner/internal/recipe"
	"banquet-planner/internal/units"
)

// Selection is one ordered menu item: a recipe and the multiplier the
// operator typed for it.
type Selection struct {
	Recipe   recipe.Recipe
	Quantity string
}

// Line is an ingredient line after scaling and unit normalization.
type Line struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Entry is the running total for one ingredient.
type Entry struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// List maps ingredient names to their totals. Names are case-sensitive.
type List map[string]Entry

// Names returns the ingredient names in alphabetical order.
func (l List) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllergenSet is the union of allergens across ordered recipes.
type AllergenSet map[string]struct{}

// Add inserts allergens into the set.
func (s AllergenSet) Add(allergens ...string) {
	for _, a := range allergens {
		s[a] = struct{}{}
	}
}

// Has reports whether allergen is in the set.
func (s AllergenSet) Has(allergen string) bool {
	_, ok := s[allergen]
	return ok
}

// Sorted returns the allergens in alphabetical order.
func (s AllergenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// String joins the sorted allergens with ", ".
func (s AllergenSet) String() string {
	return strings.Join(s.Sorted(), ", ")
}

// MarshalJSON encodes the set as a sorted array.
func (s AllergenSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of allergen names.
func (s *AllergenSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	*s = make(AllergenSet, len(names))
	s.Add(names...)
	return nil
}

// Aggregator turns selections into a shopping list using one conversion table.
// It holds no state between calls and is safe for concurrent use.
type Aggregator struct {
	units *units.Table
}

// NewAggregator creates an Aggregator. A nil table selects units.Default().
func NewAggregator(table *units.Table) *Aggregator {
	if table == nil {
		table = units.Default()
	}
	return &Aggregator{units: table}
}

// ParseMultiplier parses an operator-entered order quantity. Only positive
// integers are accepted.
func ParseMultiplier(recipeName, quantity string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(quantity))
	if err != nil {
		return 0, &ValidationError{Recipe: recipeName, Reason: "invalid quantity " + strconv.Quote(quantity)}
	}
	if n <= 0 {
		return 0, &ValidationError{Recipe: recipeName, Reason: "quantity must be positive, got " + strconv.Itoa(n)}
	}
	return n, nil
}

// Scale multiplies every ingredient line of the selected recipe and
// normalizes its unit. Lines keep recipe order.
func (a *Aggregator) Scale(sel Selection) ([]Line, error) {
	multiplier, err := ParseMultiplier(sel.Recipe.Name, sel.Quantity)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(sel.Recipe.Ingredients))
	for _, in := range sel.Recipe.Ingredients {
		if err := checkLine(sel.Recipe.Name, in); err != nil {
			return nil, err
		}
		scaled := in.Quantity * float64(multiplier)
		if math.IsInf(scaled, 0) {
			return nil, &MalformedLineError{Recipe: sel.Recipe.Name, Ingredient: in.Name, Reason: "scaled quantity overflows"}
		}
		qty, unit := a.units.Normalize(scaled, in.Unit)
		lines = append(lines, Line{Name: in.Name, Quantity: qty, Unit: unit})
	}
	return lines, nil
}

// Aggregate scales every selection in order and merges lines by ingredient
// name. A repeated ingredient adds its quantity to the running total and
// replaces the unit label with its own; the sum is not re-normalized.
// Any invalid selection or line fails the whole call.
func (a *Aggregator) Aggregate(selections []Selection) (List, AllergenSet, error) {
	if len(selections) == 0 {
		return nil, nil, &ValidationError{Reason: "no menu items selected"}
	}

	list := make(List)
	allergens := make(AllergenSet)
	for _, sel := range selections {
		lines, err := a.Scale(sel)
		if err != nil {
			return nil, nil, err
		}
		for _, l := range lines {
			entry := list[l.Name]
			entry.Quantity += l.Quantity
			if math.IsInf(entry.Quantity, 0) {
				return nil, nil, &MalformedLineError{Recipe: sel.Recipe.Name, Ingredient: l.Name, Reason: "total quantity overflows"}
			}
			// Last unit label wins. See DESIGN.md before changing this.
			entry.Unit = l.Unit
			list[l.Name] = entry
		}
		allergens.Add(sel.Recipe.Allergens...)
	}
	return list, allergens, nil
}

func checkLine(recipeName string, in recipe.IngredientLine) error {
	switch {
	case in.Name == "":
		return &MalformedLineError{Recipe: recipeName, Ingredient: in.Name, Reason: "ingredient name is empty"}
	case !(in.Quantity > 0) || math.IsInf(in.Quantity, 0):
		return &MalformedLineError{Recipe: recipeName, Ingredient: in.Name, Reason: "quantity must be positive, got " + strconv.FormatFloat(in.Quantity, 'g', -1, 64)}
	case strings.TrimSpace(in.Unit) == "":
		return &MalformedLineError{Recipe: recipeName, Ingredient: in.Name, Reason: "unit is empty"}
	}
	return nil
}
