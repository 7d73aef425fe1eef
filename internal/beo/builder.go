package beo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"banquet-planner/internal/recipe"
	"banquet-planner/internal/shopping"
)

// RecipeFinder resolves menu rows against the recipe catalog.
type RecipeFinder interface {
	GetByName(ctx context.Context, name string) (*recipe.Recipe, error)
	Names(ctx context.Context) ([]string, error)
}

// MenuItem is an ordered recipe with its lines scaled for the ordered quantity.
type MenuItem struct {
	Recipe   recipe.Recipe   `json:"recipe"`
	Quantity int             `json:"quantity"`
	Lines    []shopping.Line `json:"lines"`
}

// Order is a built banquet event order.
type Order struct {
	ID           uuid.UUID            `json:"id"`
	Event        Event                `json:"event"`
	Date         time.Time            `json:"date"`
	Items        []MenuItem           `json:"items"`
	ShoppingList shopping.List        `json:"shopping_list"`
	Allergens    shopping.AllergenSet `json:"allergens"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Builder resolves an event's menu and aggregates it.
type Builder struct {
	recipes    RecipeFinder
	aggregator *shopping.Aggregator
	logger     *zap.Logger
	now        func() time.Time
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(recipes RecipeFinder, aggregator *shopping.Aggregator, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		recipes:    recipes,
		aggregator: aggregator,
		logger:     logger,
		now:        time.Now,
	}
}

// Build validates the event, resolves every ordered recipe by exact name and
// produces the order. Rows without a recipe are ignored. Nothing is returned
// unless every row is valid.
func (b *Builder) Build(ctx context.Context, ev Event) (*Order, error) {
	if strings.TrimSpace(ev.Name) == "" || ev.GuestCount <= 0 {
		return nil, &shopping.ValidationError{Reason: "event name and guest count are required"}
	}
	date, err := ev.ParsedDate()
	if err != nil {
		return nil, &shopping.ValidationError{Reason: err.Error()}
	}

	var selections []shopping.Selection
	for _, row := range ev.Items {
		if strings.TrimSpace(row.Recipe) == "" {
			continue
		}
		if strings.TrimSpace(string(row.Quantity)) == "" {
			return nil, &shopping.ValidationError{Recipe: row.Recipe, Reason: "quantity is required"}
		}

		rec, err := b.recipes.GetByName(ctx, row.Recipe)
		if err != nil {
			return nil, fmt.Errorf("failed to look up recipe %q: %w", row.Recipe, err)
		}
		if rec == nil {
			return nil, b.unknownRecipe(ctx, row.Recipe)
		}
		selections = append(selections, shopping.Selection{Recipe: *rec, Quantity: string(row.Quantity)})
	}
	if len(selections) == 0 {
		return nil, &shopping.ValidationError{Reason: "please add at least one menu item with quantity"}
	}

	list, allergens, err := b.aggregator.Aggregate(selections)
	if err != nil {
		return nil, err
	}

	items := make([]MenuItem, 0, len(selections))
	for _, sel := range selections {
		lines, err := b.aggregator.Scale(sel)
		if err != nil {
			return nil, err
		}
		// Already validated by Aggregate.
		n, _ := shopping.ParseMultiplier(sel.Recipe.Name, sel.Quantity)
		items = append(items, MenuItem{Recipe: sel.Recipe, Quantity: n, Lines: lines})
	}

	order := &Order{
		ID:           uuid.New(),
		Event:        ev,
		Date:         date,
		Items:        items,
		ShoppingList: list,
		Allergens:    allergens,
		CreatedAt:    b.now().UTC(),
	}
	b.logger.Info("built banquet event order",
		zap.String("order_id", order.ID.String()),
		zap.String("event", ev.Name),
		zap.Int("menu_items", len(items)),
		zap.Int("ingredients", len(list)),
	)
	return order, nil
}

func (b *Builder) unknownRecipe(ctx context.Context, name string) error {
	reason := "unknown recipe"
	names, err := b.recipes.Names(ctx)
	if err != nil {
		b.logger.Warn("failed to load recipe names for suggestion", zap.Error(err))
	} else if s := Suggest(name, names); s != "" {
		reason = fmt.Sprintf("unknown recipe (did you mean %q?)", s)
	}
	return &shopping.ValidationError{Recipe: name, Reason: reason}
}

// Suggest returns the catalog name closest to name, or "" when nothing is
// close enough to be a likely typo.
func Suggest(name string, candidates []string) string {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return ""
	}

	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(target, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}

	limit := len([]rune(target)) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
