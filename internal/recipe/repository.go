package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save validates rec and inserts it, or replaces the recipe with the same
// name together with its ingredients and allergens. Ingredient names are
// added to the master ingredient list. It returns the stored ID.
func (r *Repository) Save(ctx context.Context, rec Recipe) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO recipes (name, description, category, subcategory, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			category    = excluded.category,
			subcategory = excluded.subcategory,
			updated_at  = excluded.updated_at
		RETURNING id`,
		rec.Name, rec.Description, rec.Category, rec.Subcategory, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert recipe %q: %w", rec.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredient_lines WHERE recipe_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to clear ingredients for %q: %w", rec.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM allergens WHERE recipe_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to clear allergens for %q: %w", rec.Name, err)
	}

	for i, line := range rec.Ingredients {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ingredient_lines (recipe_id, position, name, quantity, unit) VALUES (?, ?, ?, ?, ?)`,
			id, i, line.Name, line.Quantity, line.Unit,
		); err != nil {
			return 0, fmt.Errorf("failed to insert ingredient %q for %q: %w", line.Name, rec.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO master_ingredients (name, last_used) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET last_used = excluded.last_used`,
			line.Name, now,
		); err != nil {
			return 0, fmt.Errorf("failed to register ingredient %q: %w", line.Name, err)
		}
	}

	for _, a := range rec.Allergens {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO allergens (recipe_id, allergen) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			id, a,
		); err != nil {
			return 0, fmt.Errorf("failed to insert allergen %q for %q: %w", a, rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit recipe %q: %w", rec.Name, err)
	}
	return id, nil
}

// Get retrieves a recipe by its ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Recipe, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByName retrieves a recipe by exact, case-sensitive name.
func (r *Repository) GetByName(ctx context.Context, name string) (*Recipe, error) {
	return r.getWhere(ctx, "name = ?", name)
}

func (r *Repository) getWhere(ctx context.Context, where string, arg any) (*Recipe, error) {
	var rec Recipe
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, category, subcategory FROM recipes WHERE `+where, arg,
	).Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Category, &rec.Subcategory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := r.loadDetails(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) loadDetails(ctx context.Context, rec *Recipe) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, quantity, unit FROM ingredient_lines WHERE recipe_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load ingredients for %q: %w", rec.Name, err)
	}
	defer rows.Close()

	rec.Ingredients = nil
	for rows.Next() {
		var line IngredientLine
		if err := rows.Scan(&line.Name, &line.Quantity, &line.Unit); err != nil {
			return fmt.Errorf("failed to scan ingredient for %q: %w", rec.Name, err)
		}
		rec.Ingredients = append(rec.Ingredients, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load ingredients for %q: %w", rec.Name, err)
	}

	allergenRows, err := r.db.QueryContext(ctx,
		`SELECT allergen FROM allergens WHERE recipe_id = ? ORDER BY allergen`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load allergens for %q: %w", rec.Name, err)
	}
	defer allergenRows.Close()

	rec.Allergens = nil
	for allergenRows.Next() {
		var a string
		if err := allergenRows.Scan(&a); err != nil {
			return fmt.Errorf("failed to scan allergen for %q: %w", rec.Name, err)
		}
		rec.Allergens = append(rec.Allergens, a)
	}
	return allergenRows.Err()
}

// List retrieves all recipes ordered by name.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, category, subcategory FROM recipes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	var recipes []Recipe
	for rows.Next() {
		var rec Recipe
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Category, &rec.Subcategory); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	// Details are loaded after the cursor is closed to keep one connection busy at a time.
	for i := range recipes {
		if err := r.loadDetails(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

// Names returns every recipe name in alphabetical order.
func (r *Repository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM recipes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan recipe name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

// Delete removes the recipe with the given name. It reports whether a recipe
// was deleted.
func (r *Repository) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM recipes WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find recipe %q: %w", name, err)
	}

	for _, stmt := range []string{
		`DELETE FROM ingredient_lines WHERE recipe_id = ?`,
		`DELETE FROM allergens WHERE recipe_id = ?`,
		`DELETE FROM recipes WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return false, fmt.Errorf("failed to delete recipe %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete of %q: %w", name, err)
	}
	return true, nil
}
