// Package units re-expresses recipe quantities in the next larger unit of the
// same family once a threshold is crossed.
package units

import (
	"fmt"
	"strings"
	"sync"
)

// Rule converts a canonical unit into Target once a quantity reaches Factor.
type Rule struct {
	Factor float64 `yaml:"factor"`
	Target string  `yaml:"target"`
}

// Table is an immutable set of conversion rules keyed by canonical unit.
// It is safe for concurrent use.
type Table struct {
	rules map[string]Rule
}

var defaultRules = map[string]Rule{
	// Volume
	"fl oz": {Factor: 128, Target: "gallon"},
	"oz":    {Factor: 16, Target: "pound"},
	"tsp":   {Factor: 3, Target: "tbsp"},
	"tbsp":  {Factor: 16, Target: "cup"},
	"cup":   {Factor: 4, Target: "quart"},
	"quart": {Factor: 4, Target: "gallon"},
	"ml":    {Factor: 1000, Target: "liter"},
	"cl":    {Factor: 100, Target: "liter"},
	"pint":  {Factor: 2, Target: "quart"},
	// gallon -> quart is a downward step, kept as the kitchen uses it.
	"gallon": {Factor: 4, Target: "quart"},

	// Weight
	"gram": {Factor: 1000, Target: "kg"},
	"kg":   {Factor: 2.205, Target: "pound"},

	// Kitchen measures
	"stick": {Factor: 4, Target: "cup"},
	"pinch": {Factor: 4, Target: "tsp"},
	"dash":  {Factor: 8, Target: "tsp"},
}

// DefaultRules returns a copy of the built-in conversion rules.
func DefaultRules() map[string]Rule {
	out := make(map[string]Rule, len(defaultRules))
	for k, v := range defaultRules {
		out[k] = v
	}
	return out
}

// Default returns the process-wide table built from DefaultRules.
var Default = sync.OnceValue(func() *Table {
	t, err := NewTable(defaultRules)
	if err != nil {
		panic(err)
	}
	return t
})

// NewTable validates rules and freezes them into a Table. Keys are
// canonicalized so "Cups" and "cup" address the same rule.
func NewTable(rules map[string]Rule) (*Table, error) {
	frozen := make(map[string]Rule, len(rules))
	for unit, r := range rules {
		key := Canonical(unit)
		if key == "" {
			return nil, fmt.Errorf("conversion rule has an empty unit")
		}
		if !(r.Factor > 0) {
			return nil, fmt.Errorf("conversion rule for %q: factor must be positive, got %v", unit, r.Factor)
		}
		if strings.TrimSpace(r.Target) == "" {
			return nil, fmt.Errorf("conversion rule for %q: target unit is empty", unit)
		}
		if _, dup := frozen[key]; dup {
			return nil, fmt.Errorf("conversion rule for %q: duplicate canonical unit %q", unit, key)
		}
		frozen[key] = Rule{Factor: r.Factor, Target: strings.TrimSpace(r.Target)}
	}
	return &Table{rules: frozen}, nil
}

// Lookup returns the rule registered for the canonical form of unit.
func (t *Table) Lookup(unit string) (Rule, bool) {
	r, ok := t.rules[Canonical(unit)]
	return r, ok
}

// Len reports the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// Normalize converts quantity at most once, then pluralizes the unit when the
// resulting quantity is greater than one. Callers must pass a positive
// quantity.
func (t *Table) Normalize(quantity float64, unit string) (float64, string) {
	canonical := Canonical(unit)

	// Single step: the target unit is never looked up again.
	if r, ok := t.rules[canonical]; ok && quantity >= r.Factor {
		quantity /= r.Factor
		canonical = r.Target
	}

	return quantity, Pluralize(quantity, canonical)
}

// Canonical lower-cases and trims a unit token, then drops a trailing "es"
// or, failing that, a trailing "s". It is lexical only: "pieces" becomes
// "piec".
func Canonical(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.HasSuffix(u, "es"):
		return u[:len(u)-2]
	case strings.HasSuffix(u, "s"):
		return u[:len(u)-1]
	}
	return u
}

// Pluralize appends "s" to unit when quantity is strictly greater than one.
func Pluralize(quantity float64, unit string) string {
	if quantity > 1 {
		return unit + "s"
	}
	return unit
}
