package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrIngredientNotFound is returned when a merge names an ingredient that is
// not in the master list.
var ErrIngredientNotFound = errors.New("ingredient not found")

// MasterIngredient is a known ingredient name with the unit it is usually
// measured in. Recipes register their ingredient names here when saved.
type MasterIngredient struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Category      string     `json:"category,omitempty"`
	PreferredUnit string     `json:"preferred_unit,omitempty"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
	Uses          int        `json:"uses"`
}

// IngredientRepository is a database-backed repository for the master
// ingredient list.
type IngredientRepository struct {
	db *sql.DB
}

// NewIngredientRepository creates a new IngredientRepository.
func NewIngredientRepository(d *sql.DB) *IngredientRepository {
	return &IngredientRepository{db: d}
}

// Save inserts an ingredient or updates the category and preferred unit of
// the one with the same name.
func (r *IngredientRepository) Save(ctx context.Context, ing MasterIngredient) (int64, error) {
	if strings.TrimSpace(ing.Name) == "" {
		return 0, errors.New("ingredient name is required")
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO master_ingredients (name, category, preferred_unit)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			category       = excluded.category,
			preferred_unit = excluded.preferred_unit
		RETURNING id`,
		ing.Name, strings.TrimSpace(ing.Category), strings.TrimSpace(ing.PreferredUnit),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save ingredient %q: %w", ing.Name, err)
	}
	return id, nil
}

// Get retrieves an ingredient by exact, case-sensitive name.
func (r *IngredientRepository) Get(ctx context.Context, name string) (*MasterIngredient, error) {
	rows, err := r.query(ctx, `WHERE m.name = ?`, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil // Ingredient not found
	}
	return &rows[0], nil
}

// List returns ingredients ordered by name. A non-empty search keeps only
// names containing it, ignoring case.
func (r *IngredientRepository) List(ctx context.Context, search string) ([]MasterIngredient, error) {
	if search == "" {
		return r.query(ctx, "")
	}
	return r.query(ctx, `WHERE instr(lower(m.name), lower(?)) > 0`, search)
}

func (r *IngredientRepository) query(ctx context.Context, where string, args ...any) ([]MasterIngredient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.name, m.category, m.preferred_unit, m.last_used,
		       (SELECT COUNT(*) FROM ingredient_lines l WHERE l.name = m.name)
		FROM master_ingredients m `+where+`
		ORDER BY m.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var out []MasterIngredient
	for rows.Next() {
		var ing MasterIngredient
		var lastUsed sql.NullTime
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Category, &ing.PreferredUnit, &lastUsed, &ing.Uses); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			ing.LastUsed = &t
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

// PreferredUnits returns the preferred unit of every ingredient that has one.
func (r *IngredientRepository) PreferredUnits(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, preferred_unit FROM master_ingredients WHERE preferred_unit <> ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferred units: %w", err)
	}
	defer rows.Close()

	units := make(map[string]string)
	for rows.Next() {
		var name, unit string
		if err := rows.Scan(&name, &unit); err != nil {
			return nil, fmt.Errorf("failed to scan preferred unit: %w", err)
		}
		units[name] = unit
	}
	return units, rows.Err()
}

// Merge folds duplicates into primary: every recipe ingredient line named
// after a duplicate is renamed to primary and the duplicates are removed
// from the master list. Blank category or preferred unit on primary is taken
// from the first duplicate that has one. It returns the number of ingredient
// lines rewritten. Nothing changes if any name is unknown.
func (r *IngredientRepository) Merge(ctx context.Context, primary string, duplicates []string) (int64, error) {
	if len(duplicates) == 0 {
		return 0, errors.New("at least one ingredient to merge is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var category, unit string
	err = tx.QueryRowContext(ctx,
		`SELECT category, preferred_unit FROM master_ingredients WHERE name = ?`, primary,
	).Scan(&category, &unit)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrIngredientNotFound, primary)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find ingredient %q: %w", primary, err)
	}

	var rewritten int64
	seen := map[string]bool{primary: true}
	for _, dup := range duplicates {
		if seen[dup] {
			return 0, fmt.Errorf("ingredient %q is listed twice", dup)
		}
		seen[dup] = true

		var dupCategory, dupUnit string
		err := tx.QueryRowContext(ctx,
			`SELECT category, preferred_unit FROM master_ingredients WHERE name = ?`, dup,
		).Scan(&dupCategory, &dupUnit)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %q", ErrIngredientNotFound, dup)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to find ingredient %q: %w", dup, err)
		}
		if category == "" {
			category = dupCategory
		}
		if unit == "" {
			unit = dupUnit
		}

		res, err := tx.ExecContext(ctx, `UPDATE ingredient_lines SET name = ? WHERE name = ?`, primary, dup)
		if err != nil {
			return 0, fmt.Errorf("failed to rename ingredient %q: %w", dup, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to rename ingredient %q: %w", dup, err)
		}
		rewritten += n

		if _, err := tx.ExecContext(ctx, `DELETE FROM master_ingredients WHERE name = ?`, dup); err != nil {
			return 0, fmt.Errorf("failed to delete ingredient %q: %w", dup, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE master_ingredients SET category = ?, preferred_unit = ? WHERE name = ?`,
		category, unit, primary,
	); err != nil {
		return 0, fmt.Errorf("failed to update ingredient %q: %w", primary, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit merge into %q: %w", primary, err)
	}
	return rewritten, nil
}
