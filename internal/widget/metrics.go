package widget

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They start as no-ops and are replaced by InitMetrics.
var (
	activeSessions metric.Int64UpDownCounter = noop.Int64UpDownCounter{}
	keysPressed    metric.Int64Counter       = noop.Int64Counter{}
	effectsCounter metric.Int64Counter       = noop.Int64Counter{}
	staleDropped   metric.Int64Counter       = noop.Int64Counter{}
	errorCounter   metric.Int64Counter       = noop.Int64Counter{}
)

// InitMetrics registers the widget's OTel instruments. Call this once at
// startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("widget")

	var err error

	activeSessions, err = meter.Int64UpDownCounter("widget.sessions.active",
		metric.WithDescription("Number of open calculator sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating sessions counter: %w", err)
	}

	keysPressed, err = meter.Int64Counter("widget.keys.total",
		metric.WithDescription("Total number of keys pressed in sessions"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return fmt.Errorf("creating keys counter: %w", err)
	}

	effectsCounter, err = meter.Int64Counter("widget.effects.total",
		metric.WithDescription("Chart and suggestion effects by kind and outcome"),
		metric.WithUnit("{effect}"),
	)
	if err != nil {
		return fmt.Errorf("creating effects counter: %w", err)
	}

	staleDropped, err = meter.Int64Counter("widget.responses.stale",
		metric.WithDescription("Background responses dropped because a newer request superseded them"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return fmt.Errorf("creating stale counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("widget.errors.total",
		metric.WithDescription("Total number of widget errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}
