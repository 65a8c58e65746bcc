// Package suggest turns a converted amount into a short list of stocks that
// amount could buy.
package suggest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"currency-crossover/internal/quotes"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fixed texts shown in the suggestion area.
const (
	TextPending     = "Finding investment ideas..."
	TextUnavailable = "Could not fetch investment ideas right now. (API limit may be reached)"
	TextFund        = "This amount could be a great start for a mutual fund!"
)

// QuoteSource prices one symbol; ok=false means no data.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (quotes.Quote, bool, error)
}

// Outcome classifies a suggestion run.
type Outcome int

const (
	// OutcomeUnavailable means no symbol returned a price.
	OutcomeUnavailable Outcome = iota
	// OutcomeFund means nothing was priced below the amount.
	OutcomeFund
	// OutcomePicks means at least one stock is affordable.
	OutcomePicks
)

// Result is the rendered suggestion.
type Result struct {
	Outcome Outcome
	Picks   []quotes.Quote
	Text    string
}

// Options tunes the fan-out.
type Options struct {
	Symbols        []string
	CurrencySymbol string
	MaxPicks       int
	MaxConcurrency int
	RequestTimeout time.Duration
	JoinTimeout    time.Duration
}

// Engine queries every configured symbol and filters the affordable ones.
type Engine struct {
	source QuoteSource
	opts   Options
	logger *zap.Logger
}

func NewEngine(source QuoteSource, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxPicks <= 0 {
		opts.MaxPicks = 3
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = max(len(opts.Symbols), 1)
	}
	return &Engine{source: source, opts: opts, logger: logger}
}

// Suggest prices every symbol concurrently, each request under its own
// timeout, and waits at most JoinTimeout for the lot. Symbols that fail,
// return no price or miss the deadline count as absent.
func (e *Engine) Suggest(ctx context.Context, amount float64) Result {
	found := e.collect(ctx)

	available := make([]quotes.Quote, 0, len(found))
	for _, q := range found {
		if q != nil {
			available = append(available, *q)
		}
	}
	if len(available) == 0 {
		return Result{Outcome: OutcomeUnavailable, Text: TextUnavailable}
	}

	limit := decimal.NewFromFloat(amount)
	var picks []quotes.Quote
	for _, q := range available {
		if q.Price.LessThan(limit) {
			picks = append(picks, q)
		}
		if len(picks) == e.opts.MaxPicks {
			break
		}
	}
	if len(picks) == 0 {
		return Result{Outcome: OutcomeFund, Text: TextFund}
	}

	return Result{Outcome: OutcomePicks, Picks: picks, Text: e.sentence(limit, picks)}
}

// collect returns one slot per symbol in configured order; nil is absent.
func (e *Engine) collect(ctx context.Context) []*quotes.Quote {
	joinCtx, cancel := context.WithTimeout(ctx, e.opts.JoinTimeout)
	defer cancel()

	var mu sync.Mutex
	found := make([]*quotes.Quote, len(e.opts.Symbols))

	g := new(errgroup.Group)
	g.SetLimit(e.opts.MaxConcurrency)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, symbol := range e.opts.Symbols {
			g.Go(func() error {
				reqCtx, cancel := context.WithTimeout(joinCtx, e.opts.RequestTimeout)
				defer cancel()

				q, ok, err := e.source.Quote(reqCtx, symbol)
				if err != nil {
					e.logger.Warn("quote fetch failed", zap.String("symbol", symbol), zap.Error(err))
					return nil
				}
				if !ok {
					e.logger.Debug("quote absent", zap.String("symbol", symbol))
					return nil
				}

				mu.Lock()
				found[i] = &q
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-joinCtx.Done():
		e.logger.Warn("quote join deadline reached", zap.Duration("join_timeout", e.opts.JoinTimeout))
	}

	mu.Lock()
	defer mu.Unlock()
	return slices.Clone(found)
}

func (e *Engine) sentence(amount decimal.Decimal, picks []quotes.Quote) string {
	parts := make([]string, len(picks))
	for i, q := range picks {
		parts[i] = fmt.Sprintf("%s (%s%s)", q.Symbol, e.opts.CurrencySymbol, q.Price.StringFixed(2))
	}
	return fmt.Sprintf("With %s%s, you could invest in: %s.",
		e.opts.CurrencySymbol, amount.StringFixed(2), strings.Join(parts, ", "))
}
