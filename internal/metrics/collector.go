package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes live counters for the order pipeline.
type Collector struct {
	Aggregations     *prometheus.CounterVec
	AggregateLatency prometheus.Histogram
	LinesScaled      prometheus.Counter
	RecipesImported  *prometheus.CounterVec
}

// NewCollector registers the collector's metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Aggregations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "banquet_aggregations_total",
			Help: "Shopping list aggregations by result",
		}, []string{"result"}), // result: "ok", "invalid", "malformed", "error"

		AggregateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "banquet_aggregation_duration_seconds",
			Help:    "Duration of building an order from an event",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		LinesScaled: f.NewCounter(prometheus.CounterOpts{
			Name: "banquet_ingredient_lines_scaled_total",
			Help: "Ingredient lines scaled across all orders",
		}),

		RecipesImported: f.NewCounterVec(prometheus.CounterOpts{
			Name: "banquet_recipes_imported_total",
			Help: "Recipe imports by source and result",
		}, []string{"source", "result"}),
	}
}

// ObserveAggregation records the outcome of one order build.
func (c *Collector) ObserveAggregation(result string, lines int, d time.Duration) {
	if c == nil {
		return
	}
	c.Aggregations.WithLabelValues(result).Inc()
	c.AggregateLatency.Observe(d.Seconds())
	if lines > 0 {
		c.LinesScaled.Add(float64(lines))
	}
}

// IncrementImport records a recipe import attempt.
func (c *Collector) IncrementImport(source, result string) {
	if c != nil {
		c.RecipesImported.WithLabelValues(source, result).Inc()
	}
}
