package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"banquet-planner/internal/app"
	"banquet-planner/internal/config"
	"banquet-planner/internal/logging"
)

var (
	logLevel string

	logger      *zap.Logger
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "banquet-planner",
	Short: "Plan banquet event orders and consolidated shopping lists",
	Long: `banquet-planner keeps a catalog of catering recipes and turns an event's
menu into a Banquet Event Order with one consolidated shopping list.

Configuration is read from the environment (DATABASE_PATH, REPORT_DIR,
UNIT_RULES_PATH, GHOST_API_URL, GEMINI_API_KEY, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// The CLI stays quiet unless asked otherwise.
		if cmd.Flags().Changed("log-level") || os.Getenv("LOG_LEVEL") == "" {
			cfg.LogLevel = logLevel
		}

		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		application, err = app.Bootstrap(cmd.Context(), cfg, logger, prometheus.NewRegistry())
		return err
	},
}

// shutdown closes the application opened by the last command, including
// one that failed.
func shutdown() {
	if application != nil {
		if err := application.Close(); err != nil {
			logger.Warn("failed to close application", zap.Error(err))
		}
		application = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(recipesCmd, ingredientsCmd, importCmd, orderCmd, reportsCmd, metricsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	shutdown()
	stop()
	if err != nil {
		os.Exit(1)
	}
}
