package units

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk shape of an extra rules file:
//
//	rules:
//	  box:
//	    factor: 12
//	    target: carton
//
// Keys are canonicalized like any unit, so a key only matches plurals that
// canonicalize back to it: "box" matches "boxes", but "case" matches only
// "case" because "cases" becomes "cas".
type rulesFile struct {
	Rules map[string]Rule `yaml:"rules"`
}

// LoadRules reads extra conversion rules from a YAML file.
func LoadRules(path string) (map[string]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit rules file: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse unit rules file %s: %w", path, err)
	}
	return f.Rules, nil
}

// NewTableFromFile builds a table from the default rules overlaid with the
// rules in path. An empty path yields the default table.
func NewTableFromFile(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	extra, err := LoadRules(path)
	if err != nil {
		return nil, err
	}

	rules := DefaultRules()
	for unit, r := range extra {
		// Overrides replace the default entry sharing the canonical key.
		for existing := range rules {
			if Canonical(existing) == Canonical(unit) {
				delete(rules, existing)
			}
		}
		rules[unit] = r
	}
	return NewTable(rules)
}
