// Package api serves the banquet planner over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"banquet-planner/internal/beo"
	"banquet-planner/internal/recipe"
	"banquet-planner/internal/shopping"
)

const requestTimeout = 30 * time.Second

// Service is the part of the application exposed over HTTP.
type Service interface {
	ListRecipes(ctx context.Context) ([]recipe.Recipe, error)
	ShoppingList(ctx context.Context, ev beo.Event) (*beo.Order, error)
}

// Options configures optional routes.
type Options struct {
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	// Webhook receives Telegram updates on POST /webhook. Nil disables the route.
	Webhook http.Handler
	Logger  *zap.Logger
}

// NewRouter wires up all routes with the provided Service.
func NewRouter(svc Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.Webhook != nil {
		r.Method(http.MethodPost, "/webhook", opts.Webhook)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/recipes", handleListRecipes(svc, logger))
		r.Post("/shopping-list", handleShoppingList(svc, logger))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
}

// --- recipes ---

func handleListRecipes(svc Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipes, err := svc.ListRecipes(r.Context())
		if err != nil {
			logger.Error("failed to list recipes", zap.Error(err))
			jsonError(w, "failed to list recipes", http.StatusInternalServerError)
			return
		}
		if recipes == nil {
			recipes = []recipe.Recipe{}
		}
		jsonOK(w, recipes)
	}
}

// --- shopping list ---

func handleShoppingList(svc Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev beo.Event
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ev); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		order, err := svc.ShoppingList(r.Context(), ev)
		if err != nil {
			var verr *shopping.ValidationError
			var merr *shopping.MalformedLineError
			switch {
			case errors.As(err, &verr):
				jsonError(w, verr.Error(), http.StatusBadRequest)
			case errors.As(err, &merr):
				jsonError(w, merr.Error(), http.StatusUnprocessableEntity)
			default:
				logger.Error("failed to build shopping list", zap.String("event", ev.Name), zap.Error(err))
				jsonError(w, "failed to build shopping list", http.StatusInternalServerError)
			}
			return
		}
		jsonOK(w, order)
	}
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
