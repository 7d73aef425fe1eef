package units

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "TBSP", want: "tbsp"},
		{name: "trims whitespace", input: "  cup \t", want: "cup"},
		{name: "strips trailing s", input: "cups", want: "cup"},
		{name: "strips trailing es", input: "boxes", want: "box"},
		{name: "es takes priority over s", input: "pinches", want: "pinch"},
		{name: "lexical only, no irregular plurals", input: "pieces", want: "piec"},
		{name: "multi-word unit kept intact", input: "Fl Oz", want: "fl oz"},
		{name: "single s becomes empty", input: "s", want: ""},
		{name: "empty stays empty", input: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Canonical(tc.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		quantity float64
		unit     string
		wantQty  float64
		wantUnit string
	}{
		{name: "factor boundary converts", quantity: 3, unit: "tsp", wantQty: 1, wantUnit: "tbsp"},
		{name: "below factor stays and pluralizes", quantity: 2, unit: "tsp", wantQty: 2, wantUnit: "tsps"},
		{name: "tbsp below sixteen stays", quantity: 4, unit: "tbsp", wantQty: 4, wantUnit: "tbsps"},
		{name: "plural input is singularized first", quantity: 32, unit: "Tbsps", wantQty: 2, wantUnit: "cups"},
		{name: "ml below factor stays", quantity: 500, unit: "ml", wantQty: 500, wantUnit: "mls"},
		{name: "grams to kg", quantity: 2500, unit: "grams", wantQty: 2.5, wantUnit: "kgs"},
		{name: "fl oz to gallon", quantity: 256, unit: "fl oz", wantQty: 2, wantUnit: "gallons"},
		{name: "ounces to pounds", quantity: 24, unit: "oz", wantQty: 1.5, wantUnit: "pounds"},
		{name: "kg uses fractional factor", quantity: 4.41, unit: "kg", wantQty: 2, wantUnit: "pounds"},
		{name: "sticks to cups", quantity: 4, unit: "sticks", wantQty: 1, wantUnit: "cup"},
		{name: "dashes to tsp", quantity: 8, unit: "dashes", wantQty: 1, wantUnit: "tsp"},
		{name: "pinches to tsp", quantity: 6, unit: "pinches", wantQty: 1.5, wantUnit: "tsps"},
		{name: "pints to quarts", quantity: 3, unit: "pints", wantQty: 1.5, wantUnit: "quarts"},
		{name: "gallons step to quarts", quantity: 8, unit: "gallons", wantQty: 2, wantUnit: "quarts"},
		{name: "exactly one stays singular", quantity: 1, unit: "cups", wantQty: 1, wantUnit: "cup"},
		{name: "fraction below one stays singular", quantity: 0.5, unit: "cups", wantQty: 0.5, wantUnit: "cup"},
		{name: "unknown unit keeps magnitude", quantity: 12, unit: "Cloves", wantQty: 12, wantUnit: "clovs"},
		{name: "unknown unit singular at one", quantity: 1, unit: "each", wantQty: 1, wantUnit: "each"},
	}

	table := Default()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotQty, gotUnit := table.Normalize(tc.quantity, tc.unit)
			assert.InDelta(t, tc.wantQty, gotQty, 1e-9)
			assert.Equal(t, tc.wantUnit, gotUnit)
		})
	}
}

func TestNormalizeDoesNotCascade(t *testing.T) {
	t.Parallel()

	// 96 tsp is 32 tbsp, which would be 2 cups if conversion chained.
	qty, unit := Default().Normalize(96, "tsp")
	assert.Equal(t, 32.0, qty)
	assert.Equal(t, "tbsps", unit)

	// 64 cups is 16 quarts, which would be 4 gallons if conversion chained.
	qty, unit = Default().Normalize(64, "cups")
	assert.Equal(t, 16.0, qty)
	assert.Equal(t, "quarts", unit)
}

func TestNormalizeUnknownUnitsKeepMagnitude(t *testing.T) {
	t.Parallel()

	for _, unit := range []string{"each", "Heads", "bunches", "can", "LB", "slices"} {
		for _, q := range []float64{0.25, 1, 1.01, 7, 1000} {
			gotQty, gotUnit := Default().Normalize(q, unit)
			assert.Equal(t, q, gotQty, "unit %q quantity %v", unit, q)
			assert.Equal(t, Pluralize(q, Canonical(unit)), gotUnit, "unit %q quantity %v", unit, q)
		}
	}
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive factor", func(t *testing.T) {
		t.Parallel()
		_, err := NewTable(map[string]Rule{"box": {Factor: 0, Target: "carton"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "factor must be positive")
	})

	t.Run("rejects empty target", func(t *testing.T) {
		t.Parallel()
		_, err := NewTable(map[string]Rule{"box": {Factor: 12, Target: " "}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target unit is empty")
	})

	t.Run("rejects duplicate canonical keys", func(t *testing.T) {
		t.Parallel()
		_, err := NewTable(map[string]Rule{
			"cup":  {Factor: 4, Target: "quart"},
			"Cups": {Factor: 4, Target: "quart"},
		})
		require.Error(t, err)
	})

	t.Run("copies the input map", func(t *testing.T) {
		t.Parallel()
		rules := map[string]Rule{"box": {Factor: 12, Target: "carton"}}
		table, err := NewTable(rules)
		require.NoError(t, err)

		rules["box"] = Rule{Factor: 1, Target: "nope"}
		r, ok := table.Lookup("boxes")
		require.True(t, ok)
		assert.Equal(t, Rule{Factor: 12, Target: "carton"}, r)
	})

	t.Run("keys match only plurals that canonicalize back", func(t *testing.T) {
		t.Parallel()
		table, err := NewTable(map[string]Rule{"case": {Factor: 12, Target: "flat"}})
		require.NoError(t, err)

		_, ok := table.Lookup("case")
		assert.True(t, ok)
		_, ok = table.Lookup("cases")
		assert.False(t, ok, `"cases" canonicalizes to "cas"`)

		qty, unit := table.Normalize(24, "case")
		assert.Equal(t, 2.0, qty)
		assert.Equal(t, "flats", unit)

		qty, unit = table.Normalize(24, "cases")
		assert.Equal(t, 24.0, qty)
		assert.Equal(t, "cass", unit)
	})
}

func TestDefaultTable(t *testing.T) {
	t.Parallel()

	assert.Same(t, Default(), Default())
	assert.Equal(t, 15, Default().Len())

	// DefaultRules hands out copies.
	rules := DefaultRules()
	delete(rules, "tsp")
	_, ok := Default().Lookup("tsp")
	assert.True(t, ok)
}

func TestNormalizeConcurrentReaders(t *testing.T) {
	t.Parallel()

	table := Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				qty, unit := table.Normalize(3, "tsp")
				assert.Equal(t, 1.0, qty)
				assert.Equal(t, "tbsp", unit)
			}
		}()
	}
	wg.Wait()
}

func TestNewTableFromFile(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses defaults", func(t *testing.T) {
		t.Parallel()
		table, err := NewTableFromFile("")
		require.NoError(t, err)
		assert.Same(t, Default(), table)
	})

	t.Run("extra rules overlay defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "units.yaml")
		content := `
rules:
  box:
    factor: 12
    target: carton
  cups:
    factor: 16
    target: gallon
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		table, err := NewTableFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 16, table.Len())

		qty, unit := table.Normalize(24, "boxes")
		assert.Equal(t, 2.0, qty)
		assert.Equal(t, "cartons", unit)

		qty, unit = table.Normalize(16, "cup")
		assert.Equal(t, 1.0, qty)
		assert.Equal(t, "gallon", unit)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := NewTableFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid rule", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "units.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  box:\n    factor: -1\n    target: carton\n"), 0o644))
		_, err := NewTableFromFile(path)
		require.Error(t, err)
	})
}
