package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"banquet-planner/internal/beo"
	"banquet-planner/internal/ghost"
	"banquet-planner/internal/report"
	"banquet-planner/internal/shared"
	"banquet-planner/internal/shopping"
)

// OrderResult is a generated and stored banquet event order.
type OrderResult struct {
	Order      *beo.Order
	Text       string
	ReportPath string
	Post       *ghost.Post
}

// GenerateOrder builds the order for an event, renders it, saves the report
// and records metrics. With publish set the order is also posted to Ghost as
// a draft.
func (a *App) GenerateOrder(ctx context.Context, ev beo.Event, publish bool) (*OrderResult, error) {
	if publish && a.ghostClient == nil {
		return nil, fmt.Errorf("publishing requires Ghost: GHOST_API_URL environment variable not set")
	}

	start := time.Now()
	order, err := a.build(ctx, ev)
	if err != nil {
		return nil, err
	}

	text := report.Text(order)
	path, err := a.reportStore.Save(order, text)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	if err := a.metricsStore.RecordMeta(ctx, shared.ExecutionMeta{
		Name:    "GenerateOrder",
		Items:   len(order.ShoppingList),
		Latency: time.Since(start),
	}); err != nil {
		a.logger.Warn("failed to record order metrics", zap.Error(err))
	}

	result := &OrderResult{Order: order, Text: text, ReportPath: path}
	if publish {
		html, err := report.HTML(order)
		if err != nil {
			return nil, err
		}
		post, err := a.ghostClient.CreatePost(ctx, report.Title(order), html, false)
		if err != nil {
			return nil, fmt.Errorf("failed to publish order: %w", err)
		}
		result.Post = post
	}

	a.logger.Info("generated banquet event order",
		zap.String("order_id", order.ID.String()),
		zap.String("event", ev.Name),
		zap.String("report", path),
	)
	return result, nil
}

// ShoppingList builds an order without saving or publishing it.
func (a *App) ShoppingList(ctx context.Context, ev beo.Event) (*beo.Order, error) {
	return a.build(ctx, ev)
}

// build runs the builder and records the aggregation metrics.
func (a *App) build(ctx context.Context, ev beo.Event) (*beo.Order, error) {
	start := time.Now()
	order, err := a.builder.Build(ctx, ev)
	lines := 0
	if order != nil {
		for _, item := range order.Items {
			lines += len(item.Lines)
		}
	}
	a.collector.ObserveAggregation(resultLabel(err), lines, time.Since(start))
	return order, err
}

func resultLabel(err error) string {
	var verr *shopping.ValidationError
	var merr *shopping.MalformedLineError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &merr):
		return "malformed"
	default:
		return "error"
	}
}

// ListReports returns the file names of saved reports.
func (a *App) ListReports() ([]string, error) {
	return a.reportStore.List()
}

// LoadReport returns the saved text report for an event.
func (a *App) LoadReport(eventName string) (string, error) {
	return a.reportStore.Load(eventName)
}

// PublishReport posts a previously saved order to Ghost as a draft.
func (a *App) PublishReport(ctx context.Context, eventName string) (*ghost.Post, error) {
	if a.ghostClient == nil {
		return nil, fmt.Errorf("publishing requires Ghost: GHOST_API_URL environment variable not set")
	}
	order, err := a.reportStore.LoadOrder(eventName)
	if err != nil {
		return nil, err
	}
	html, err := report.HTML(order)
	if err != nil {
		return nil, err
	}
	post, err := a.ghostClient.CreatePost(ctx, report.Title(order), html, false)
	if err != nil {
		return nil, fmt.Errorf("failed to publish order: %w", err)
	}
	a.logger.Info("published saved order", zap.String("event", eventName), zap.String("post_id", post.ID))
	return post, nil
}
