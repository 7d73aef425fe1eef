package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"banquet-planner/internal/beo"
	"banquet-planner/internal/clipper"
	"banquet-planner/internal/config"
	"banquet-planner/internal/database"
	"banquet-planner/internal/ghost"
	"banquet-planner/internal/llm"
	"banquet-planner/internal/metrics"
	"banquet-planner/internal/recipe"
	"banquet-planner/internal/shopping"
	"banquet-planner/internal/storage"
	"banquet-planner/internal/units"
)

// App holds the application's dependencies.
type App struct {
	recipeRepo    *recipe.Repository
	ingredients   *recipe.IngredientRepository
	builder       *beo.Builder
	reportStore   *storage.ReportStore
	metricsStore  *metrics.Store
	collector     *metrics.Collector
	recipeClipper *clipper.Clipper
	ghostClient   ghost.Client
	logger        *zap.Logger
	dataPath      string
	sqlDB         *sql.DB

	closers []func() error
}

// NewApp creates and initializes a new App instance. ghostClient may be nil.
func NewApp(
	recipeRepo *recipe.Repository,
	ingredients *recipe.IngredientRepository,
	builder *beo.Builder,
	reportStore *storage.ReportStore,
	metricsStore *metrics.Store,
	collector *metrics.Collector,
	recipeClipper *clipper.Clipper,
	ghostClient ghost.Client,
	logger *zap.Logger,
) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		recipeRepo:    recipeRepo,
		ingredients:   ingredients,
		builder:       builder,
		reportStore:   reportStore,
		metricsStore:  metricsStore,
		collector:     collector,
		recipeClipper: recipeClipper,
		ghostClient:   ghostClient,
		logger:        logger,
	}
}

// Bootstrap wires an App from configuration. Ghost and Gemini are enabled
// only when their settings are present. Metrics are registered with reg.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	table, err := units.NewTableFromFile(cfg.UnitRulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit rules: %w", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closers := []func() error{db.Close}

	reportStore, err := storage.NewReportStore(cfg.ReportDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	recipeRepo := recipe.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
	collector := metrics.NewCollector(reg)
	builder := beo.NewBuilder(recipeRepo, shopping.NewAggregator(table), logger.Named("beo"))

	opts := []clipper.Option{
		clipper.WithCollector(collector),
		clipper.WithUsageRecorder(metricsStore),
		clipper.WithLogger(logger.Named("clipper")),
	}

	var ghostClient ghost.Client
	if cfg.RequireGhost() == nil {
		ghostClient = ghost.NewClient(cfg)
		opts = append(opts, clipper.WithGhost(ghostClient))
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		closers = append(closers, gemini.Close)
		opts = append(opts, clipper.WithExtractor(llm.NewIngredientExtractor(gemini)))
	}

	a := NewApp(recipeRepo, recipe.NewIngredientRepository(db.SQL), builder, reportStore, metricsStore, collector,
		clipper.NewClipper(recipeRepo, opts...), ghostClient, logger)
	a.closers = closers
	a.sqlDB = db.SQL
	a.dataPath = cfg.ReportDir
	logger.Info("application ready",
		zap.String("database", cfg.DatabasePath),
		zap.Int("unit_rules", table.Len()),
		zap.Bool("ghost", ghostClient != nil),
		zap.Bool("extractor", cfg.GeminiAPIKey != ""),
	)
	return a, nil
}

// Close releases resources opened by Bootstrap, in reverse order.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// Recipes exposes the recipe catalog.
func (a *App) Recipes() *recipe.Repository { return a.recipeRepo }

// SQL exposes the database opened by Bootstrap for components that keep
// their own tables, such as bot sessions. It is nil for apps built with NewApp.
func (a *App) SQL() *sql.DB { return a.sqlDB }
