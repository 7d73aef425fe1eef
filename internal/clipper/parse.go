package clipper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"banquet-planner/internal/recipe"
)

// DefaultUnit is used for counted ingredients such as "2 lemons".
const DefaultUnit = "each"

// ErrNoQuantity is returned for lines that do not start with an amount, such
// as "salt to taste".
var ErrNoQuantity = errors.New("no leading quantity")

var vulgarFractions = map[rune]float64{
	'¼': 0.25, '½': 0.5, '¾': 0.75,
	'⅓': 1.0 / 3, '⅔': 2.0 / 3,
	'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8,
	'⅙': 1.0 / 6, '⅚': 5.0 / 6,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
}

// unitAliases maps the spellings found in recipes to the units the
// conversion table knows.
var unitAliases = map[string]string{
	"tsp": "tsp", "teaspoon": "tsp",
	"tbsp": "tbsp", "tbs": "tbsp", "tbl": "tbsp", "tablespoon": "tbsp",
	"cup": "cup",
	"oz": "oz", "ounce": "oz",
	"lb": "pound", "pound": "pound",
	"g": "gram", "gr": "gram", "gram": "gram",
	"kg": "kg", "kilogram": "kg",
	"ml": "ml", "milliliter": "ml", "millilitre": "ml",
	"cl": "cl",
	"l": "liter", "liter": "liter", "litre": "liter",
	"qt": "quart", "quart": "quart",
	"pt": "pint", "pint": "pint",
	"gal": "gallon", "gallon": "gallon",
	"stick": "stick", "pinch": "pinch", "dash": "dash",
	"clove": "clove", "head": "head", "bunch": "bunch", "sprig": "sprig",
	"can": "can", "jar": "jar", "bottle": "bottle", "slice": "slice",
	"piece": "piece", "package": "package", "pkg": "package", "case": "case",
	"each": "each", "ea": "each", "whole": "each",
}

// ParseIngredientLine reads lines such as "1 1/2 cups whole milk",
// "½ tsp salt" or "2 lemons, juiced". Lines without a known unit are counted
// in DefaultUnit. Preparation notes after a comma or in parentheses are
// dropped from the name.
func ParseIngredientLine(line string) (recipe.IngredientLine, error) {
	fields := strings.Fields(splitLeadingFraction(line))
	if len(fields) == 0 {
		return recipe.IngredientLine{}, errors.New("empty ingredient line")
	}

	qty, ok := parseAmount(fields[0])
	if !ok {
		return recipe.IngredientLine{}, fmt.Errorf("%q: %w", line, ErrNoQuantity)
	}
	rest := fields[1:]
	if len(rest) > 0 {
		if frac, ok := parseFraction(rest[0]); ok && isWhole(fields[0]) {
			qty += frac
			rest = rest[1:]
		}
	}
	if !(qty > 0) {
		return recipe.IngredientLine{}, fmt.Errorf("%q: quantity must be positive", line)
	}

	unit, rest := parseUnit(rest)
	name := cleanName(strings.Join(rest, " "))
	if name == "" {
		return recipe.IngredientLine{}, fmt.Errorf("%q: missing ingredient name", line)
	}
	return recipe.IngredientLine{Name: name, Quantity: qty, Unit: unit}, nil
}

// splitLeadingFraction separates a unicode fraction glued to a whole number
// ("1½ cups" becomes "1 ½ cups").
func splitLeadingFraction(line string) string {
	var sb strings.Builder
	prevDigit := false
	for _, r := range strings.TrimSpace(line) {
		if _, ok := vulgarFractions[r]; ok && prevDigit {
			sb.WriteRune(' ')
		}
		sb.WriteRune(r)
		prevDigit = unicode.IsDigit(r)
	}
	return sb.String()
}

func isWhole(tok string) bool {
	_, err := strconv.Atoi(tok)
	return err == nil
}

func parseAmount(tok string) (float64, bool) {
	if v, ok := parseFraction(tok); ok {
		return v, true
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFraction(tok string) (float64, bool) {
	if r := []rune(tok); len(r) == 1 {
		v, ok := vulgarFractions[r[0]]
		return v, ok
	}
	num, den, found := strings.Cut(tok, "/")
	if !found {
		return 0, false
	}
	n, err1 := strconv.Atoi(num)
	d, err2 := strconv.Atoi(den)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

func parseUnit(tokens []string) (string, []string) {
	if len(tokens) == 0 {
		return DefaultUnit, tokens
	}
	first := strings.TrimSuffix(strings.ToLower(tokens[0]), ".")

	if len(tokens) > 1 {
		second := strings.TrimSuffix(strings.ToLower(tokens[1]), ".")
		if (first == "fl" || first == "fluid") && lookupUnit(second) == "oz" {
			return "fl oz", tokens[2:]
		}
	}
	if u := lookupUnit(first); u != "" {
		return u, tokens[1:]
	}
	return DefaultUnit, tokens
}

func lookupUnit(tok string) string {
	for _, candidate := range []string{tok, strings.TrimSuffix(tok, "s"), strings.TrimSuffix(tok, "es")} {
		if u, ok := unitAliases[candidate]; ok {
			return u
		}
	}
	return ""
}

func cleanName(name string) string {
	if i := strings.IndexAny(name, ",("); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "of ")
	return strings.TrimSpace(name)
}
