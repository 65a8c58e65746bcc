package main

import (
	"context"
	"net/http"

	"currency-crossover/internal/calculator"
	"currency-crossover/internal/chart"
	"currency-crossover/internal/config"
	"currency-crossover/internal/history"
	"currency-crossover/internal/observability"
	"currency-crossover/internal/quotes"
	"currency-crossover/internal/rates"
	"currency-crossover/internal/suggest"
	"currency-crossover/internal/widget"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// app is the wired service graph.
type app struct {
	cfg      *config.Config
	rates    *rates.Cache
	snapshot *rates.RedisSnapshot
	engine   calculator.Engine
	store    *widget.Store
}

// outboundClient instruments calls to the third-party APIs.
func outboundClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

// newRateCache builds the rate cache, backed by a Redis snapshot when one is
// configured. A Redis that cannot be reached is logged and skipped.
func newRateCache(ctx context.Context, cfg *config.Config) (*rates.Cache, *rates.RedisSnapshot) {
	logger := observability.Logger

	client := rates.NewClient(cfg.Rates.BaseURL, cfg.Rates.APIKey, cfg.Rates.Timeout, &http.Client{
		Timeout:   cfg.Rates.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})

	var snapshot *rates.RedisSnapshot
	if cfg.Cache.Addr != "" {
		s, err := rates.NewRedisSnapshot(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL)
		if err != nil {
			logger.Warn("rate snapshot disabled", zap.String("addr", cfg.Cache.Addr), zap.Error(err))
		} else {
			snapshot = s
		}
	}

	var snap rates.Snapshotter
	if snapshot != nil {
		snap = snapshot
	}
	return rates.NewCache(client, snap, cfg.Rates.BaseCurrency, cfg.Rates.HomeCurrency, logger.Named("rates")), snapshot
}

func newApp(ctx context.Context, cfg *config.Config) *app {
	logger := observability.Logger

	cache, snapshot := newRateCache(ctx, cfg)
	if err := cache.Load(ctx); err != nil {
		logger.Error("initial rate load failed", zap.String("notice", cache.Notice()), zap.Error(err))
	}

	historyClient := history.NewClient(cfg.History.BaseURL, cfg.History.WindowDays, cfg.History.Timeout, &http.Client{
		Timeout:   cfg.History.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	charter := chart.NewCharter(historyClient, chart.NewSVGRenderer(), logger.Named("chart"))

	quoteClient := quotes.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.APIKey, outboundClient())
	suggester := suggest.NewEngine(quoteClient, suggest.Options{
		Symbols:        cfg.Quotes.Symbols,
		CurrencySymbol: cfg.Quotes.CurrencySymbol,
		MaxPicks:       cfg.Quotes.MaxSuggestions,
		MaxConcurrency: cfg.Quotes.MaxConcurrency,
		RequestTimeout: cfg.Quotes.RequestTimeout,
		JoinTimeout:    cfg.Quotes.JoinTimeout,
	}, logger.Named("suggest"))

	engine := calculator.Engine{Rates: cache, HomeCurrency: cfg.Rates.HomeCurrency}

	store := widget.NewStore(widget.Deps{
		Engine:    engine,
		Rates:     cache,
		Charter:   charter,
		Suggester: suggester,
		Logger:    logger.Named("widget"),
	})

	return &app{
		cfg:      cfg,
		rates:    cache,
		snapshot: snapshot,
		engine:   engine,
		store:    store,
	}
}

// close releases the sessions and the Redis connection.
func (a *app) close(ctx context.Context) {
	a.store.Close(ctx)
	if a.snapshot != nil {
		if err := a.snapshot.Close(); err != nil {
			observability.Logger.Warn("closing rate snapshot", zap.Error(err))
		}
	}
}

func (a *app) registerGauges() error {
	if err := observability.RegisterGaugeFunc("sessions_open", "Open calculator sessions.", func() float64 {
		return float64(a.store.Len())
	}); err != nil {
		return err
	}
	return observability.RegisterGaugeFunc("rates_currencies", "Currencies in the loaded rate table.", func() float64 {
		return float64(len(a.rates.Currencies()))
	})
}
