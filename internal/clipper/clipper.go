package clipper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"banquet-planner/internal/ghost"
	"banquet-planner/internal/metrics"
	"banquet-planner/internal/recipe"
	"banquet-planner/internal/shared"
)

// importConcurrency bounds how many Ghost posts are parsed at once.
const importConcurrency = 4

// RecipeSaver stores imported recipes.
type RecipeSaver interface {
	Save(ctx context.Context, rec recipe.Recipe) (int64, error)
}

// Extractor structures ingredient lines the parser could not read.
type Extractor interface {
	Extract(ctx context.Context, recipeName string, lines []string) ([]recipe.IngredientLine, shared.ExecutionMeta, error)
}

// UsageRecorder persists model usage.
type UsageRecorder interface {
	RecordMeta(ctx context.Context, meta shared.ExecutionMeta) error
}

// Clipper imports recipes from web pages and from Ghost into the catalog.
type Clipper struct {
	recipes    RecipeSaver
	ghost      ghost.Client
	extractor  Extractor
	usage      UsageRecorder
	collector  *metrics.Collector
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Clipper.
type Option func(*Clipper)

// WithGhost enables ImportGhost.
func WithGhost(c ghost.Client) Option { return func(cl *Clipper) { cl.ghost = c } }

// WithExtractor enables the LLM fallback for unreadable ingredient lines.
func WithExtractor(e Extractor) Option { return func(cl *Clipper) { cl.extractor = e } }

// WithUsageRecorder records extractor token usage.
func WithUsageRecorder(r UsageRecorder) Option { return func(cl *Clipper) { cl.usage = r } }

// WithCollector counts imports.
func WithCollector(c *metrics.Collector) Option { return func(cl *Clipper) { cl.collector = c } }

// WithHTTPClient overrides the client used by ClipURL.
func WithHTTPClient(c *http.Client) Option { return func(cl *Clipper) { cl.httpClient = c } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(cl *Clipper) { cl.logger = l } }

// NewClipper creates a new Clipper instance.
func NewClipper(recipes RecipeSaver, opts ...Option) *Clipper {
	c := &Clipper{
		recipes:    recipes,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClipURL fetches a recipe page, parses it and saves the recipe.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		c.collector.IncrementImport("url", "error")
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	parsed, err := parseDocument("", doc)
	if err != nil {
		c.collector.IncrementImport("url", "error")
		return nil, err
	}
	rec, err := c.complete(ctx, parsed)
	if err != nil {
		c.collector.IncrementImport("url", "error")
		return nil, err
	}

	if rec.ID, err = c.recipes.Save(ctx, rec); err != nil {
		c.collector.IncrementImport("url", "error")
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	c.collector.IncrementImport("url", "ok")
	c.logger.Info("clipped recipe", zap.String("url", url), zap.String("recipe", rec.Name), zap.Int("ingredients", len(rec.Ingredients)))
	return &rec, nil
}

// ImportSummary reports the outcome of a Ghost import.
type ImportSummary struct {
	Imported []string
	Failed   map[string]string
}

// ImportGhost parses every recipe post concurrently and saves the results in
// post order. Posts that cannot be parsed or saved are logged and skipped.
func (c *Clipper) ImportGhost(ctx context.Context) (ImportSummary, error) {
	if c.ghost == nil {
		return ImportSummary{}, fmt.Errorf("ghost client not configured")
	}
	posts, err := c.ghost.FetchRecipes(ctx)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to fetch posts: %w", err)
	}

	type result struct {
		rec recipe.Recipe
		err error
	}
	results := make([]result, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for i, post := range posts {
		g.Go(func() error {
			parsed, err := ParseRecipeHTML(post.Title, post.HTML)
			if err == nil {
				results[i].rec, err = c.complete(gctx, parsed)
			}
			results[i].err = err
			// Per-post failures are reported, not fatal.
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{Failed: map[string]string{}}
	for i, r := range results {
		title := posts[i].Title
		if r.err == nil {
			_, r.err = c.recipes.Save(ctx, r.rec)
		}
		if r.err != nil {
			c.logger.Warn("skipping ghost post", zap.String("post_id", posts[i].ID), zap.String("title", title), zap.Error(r.err))
			c.collector.IncrementImport("ghost", "error")
			summary.Failed[title] = r.err.Error()
			continue
		}
		c.collector.IncrementImport("ghost", "ok")
		summary.Imported = append(summary.Imported, r.rec.Name)
	}
	c.logger.Info("ghost import finished", zap.Int("imported", len(summary.Imported)), zap.Int("failed", len(summary.Failed)))
	return summary, nil
}

// complete resolves unparsed lines through the extractor and validates the
// recipe.
func (c *Clipper) complete(ctx context.Context, parsed ParsedRecipe) (recipe.Recipe, error) {
	rec := parsed.Recipe
	if len(parsed.Unparsed) > 0 {
		if c.extractor == nil {
			return recipe.Recipe{}, fmt.Errorf("recipe %q has %d unreadable ingredient lines (first: %q) and no extractor is configured",
				rec.Name, len(parsed.Unparsed), parsed.Unparsed[0])
		}
		lines, meta, err := c.extractor.Extract(ctx, rec.Name, parsed.Unparsed)
		if c.usage != nil && meta.Usage.Model != "" {
			if rerr := c.usage.RecordMeta(ctx, meta); rerr != nil {
				c.logger.Warn("failed to record extractor usage", zap.Error(rerr))
			}
		}
		if err != nil {
			return recipe.Recipe{}, fmt.Errorf("failed to extract ingredients for %q: %w", rec.Name, err)
		}
		rec.Ingredients = append(rec.Ingredients, lines...)
	}
	if err := rec.Validate(); err != nil {
		return recipe.Recipe{}, err
	}
	return rec, nil
}

func (c *Clipper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
