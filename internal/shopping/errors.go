package shopping

import "fmt"

// ValidationError reports operator input that cannot be aggregated: an empty
// selection, a bad multiplier or an unknown recipe.
type ValidationError struct {
	Recipe string // empty when the error is not tied to one recipe
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Recipe == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error: %s for %s", e.Reason, e.Recipe)
}

// MalformedLineError reports an ingredient line in the recipe store that
// cannot be scaled. The source record has to be repaired.
type MalformedLineError struct {
	Recipe     string
	Ingredient string
	Reason     string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed ingredient line %q in recipe %q: %s", e.Ingredient, e.Recipe, e.Reason)
}
