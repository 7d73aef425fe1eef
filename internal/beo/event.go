// Package beo turns a banquet event order into scaled menu items and a
// consolidated shopping list.
package beo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the accepted format for Event.Date.
const DateLayout = "2006-01-02"

// Quantity is the multiplier for one menu row as the operator entered it.
// It is kept as text so that bad input reaches the aggregator and is
// reported against the recipe it belongs to.
type Quantity string

// UnmarshalJSON accepts both `"40"` and `40`.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*q = ""
		return nil
	}
	*q = Quantity(b)
	return nil
}

// OrderRow is one line of the menu: a recipe name and how many to prepare.
type OrderRow struct {
	Recipe   string   `json:"recipe" yaml:"recipe"`
	Quantity Quantity `json:"quantity" yaml:"quantity"`
}

// Event describes a banquet and what was ordered for it.
type Event struct {
	Name                string     `json:"name" yaml:"name"`
	Date                string     `json:"date,omitempty" yaml:"date"`
	GuestCount          int        `json:"guest_count" yaml:"guest_count"`
	SpecialRequirements string     `json:"special_requirements,omitempty" yaml:"special_requirements"`
	Items               []OrderRow `json:"items" yaml:"items"`
}

// ParsedDate returns the event date, or the zero time when none was given.
func (e Event) ParsedDate() (time.Time, error) {
	if e.Date == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event date %q, expected YYYY-MM-DD", e.Date)
	}
	return d, nil
}

// LoadEvent reads an event definition from a YAML file.
func LoadEvent(path string) (Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Event{}, fmt.Errorf("failed to read event file: %w", err)
	}
	var ev Event
	if err := yaml.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to parse event file %s: %w", path, err)
	}
	return ev, nil
}
