package observability

import (
	"context"
	"errors"
	"fmt"
)

// Shutdown flushes and stops a telemetry provider.
type Shutdown func(context.Context) error

// Setup starts the OTLP trace, metric and log pipelines when enabled and
// returns one function that shuts all of them down. When disabled the global
// no-op providers stay in place.
func Setup(ctx context.Context, enabled bool, initMeters func() error) (Shutdown, error) {
	var shutdowns []Shutdown

	shutdownAll := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if enabled {
		steps := []struct {
			name string
			init func(context.Context) (func(context.Context) error, error)
		}{
			{"tracing", InitTracing},
			{"metrics", InitMetrics},
			{"logging", InitLogging},
		}
		for _, step := range steps {
			stop, err := step.init(ctx)
			if err != nil {
				_ = shutdownAll(ctx)
				return nil, fmt.Errorf("init %s: %w", step.name, err)
			}
			shutdowns = append(shutdowns, stop)
		}
	}

	if initMeters != nil {
		if err := initMeters(); err != nil {
			_ = shutdownAll(ctx)
			return nil, err
		}
	}

	return shutdownAll, nil
}
