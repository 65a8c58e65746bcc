// Package widget hosts live calculator sessions: one mutable calculator
// state per session, the chart and suggestion outputs its conversions
// produce, and the subscribers watching it.
package widget

import (
	"context"
	"errors"
	"sync"

	"currency-crossover/internal/calculator"
	"currency-crossover/internal/chart"
	"currency-crossover/internal/observability"
	"currency-crossover/internal/suggest"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("widget")

var ErrSessionClosed = errors.New("session closed")

// ChartDrawer renders the history chart for a pair.
type ChartDrawer interface {
	Draw(ctx context.Context, from, to string) (*chart.Chart, error)
}

// Suggester produces the suggestion text for an amount in the home currency.
type Suggester interface {
	Suggest(ctx context.Context, amount float64) suggest.Result
}

// RateStatus is what a new session needs from the rate cache.
type RateStatus interface {
	Defaults() (from, to string)
	Notice() string
}

// Deps are shared by every session.
type Deps struct {
	Engine    calculator.Engine
	Rates     RateStatus
	Charter   ChartDrawer
	Suggester Suggester
	Logger    *zap.Logger
}

// View is a session as the UI renders it.
type View struct {
	ID         string           `json:"id"`
	Display    string           `json:"display"`
	State      calculator.State `json:"state"`
	Chart      *chart.Dataset   `json:"chart,omitempty"`
	Suggestion string           `json:"suggestion"`
}

// Session serialises every event on one calculator. Chart and suggestion
// requests run in the background; each carries a token and its result is
// dropped unless the token is still the latest issued for that output.
type Session struct {
	id     string
	deps   *Deps
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	state        calculator.State
	notice       string
	canvas       chart.Canvas
	suggestion   string
	chartToken   uint64
	suggestToken uint64
	subs         map[int]chan View
	nextSub      int
	closed       bool
}

func newSession(id string, deps *Deps) *Session {
	from, to := deps.Rates.Defaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:     id,
		deps:   deps,
		logger: deps.Logger.With(zap.String("session_id", id)),
		ctx:    ctx,
		cancel: cancel,
		state:  calculator.NewState(from, to),
		notice: deps.Rates.Notice(),
		subs:   make(map[int]chan View),
	}
}

func (s *Session) ID() string { return s.id }

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewLocked()
}

// Press applies keys in order.
func (s *Session) Press(ctx context.Context, keys ...calculator.Key) (View, error) {
	return s.update(ctx, "press", func(st calculator.State) (calculator.State, []calculator.Effect) {
		var all []calculator.Effect
		for _, k := range keys {
			var effects []calculator.Effect
			st, effects = s.deps.Engine.Apply(st, k)
			all = append(all, effects...)
			keysPressed.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", st.Mode.String())))
		}
		return st, all
	})
}

// SetMode toggles currency mode; the calculator and outputs are cleared.
func (s *Session) SetMode(ctx context.Context, currency bool) (View, error) {
	return s.update(ctx, "set_mode", func(st calculator.State) (calculator.State, []calculator.Effect) {
		return s.deps.Engine.SetMode(st, currency)
	})
}

// SelectCurrencies changes the pickers; empty codes are left as they are.
func (s *Session) SelectCurrencies(ctx context.Context, from, to string) (View, error) {
	return s.update(ctx, "select_currencies", func(st calculator.State) (calculator.State, []calculator.Effect) {
		if from != "" {
			st = s.deps.Engine.SelectFrom(st, from)
		}
		if to == "" {
			return st, nil
		}
		return s.deps.Engine.SelectTo(st, to)
	})
}

func (s *Session) update(ctx context.Context, op string, fn func(calculator.State) (calculator.State, []calculator.Effect)) (View, error) {
	_, span := tracer.Start(ctx, "widget."+op, trace.WithAttributes(
		attribute.String("session.id", s.id),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return View{}, ErrSessionClosed
	}

	next, effects := fn(s.state)
	s.state = next
	s.notice = ""
	s.runEffectsLocked(effects)

	span.SetAttributes(
		attribute.String("calculator.mode", next.Mode.String()),
		attribute.Int("widget.effects", len(effects)),
	)

	view := s.viewLocked()
	s.publishLocked(view)
	return view, nil
}

func (s *Session) runEffectsLocked(effects []calculator.Effect) {
	for _, eff := range effects {
		effectsCounter.Add(s.ctx, 1, metric.WithAttributes(
			attribute.String("kind", eff.Kind.String()),
			attribute.String("outcome", "issued"),
		))

		switch eff.Kind {
		case calculator.EffectRenderChart:
			s.chartToken++
			token := s.chartToken
			s.spawn(func() { s.drawChart(token, eff.From, eff.To) })
		case calculator.EffectSuggest:
			s.suggestToken++
			token := s.suggestToken
			s.suggestion = suggest.TextPending
			s.spawn(func() { s.suggest(token, eff.Amount) })
		case calculator.EffectClearSuggestion:
			s.suggestToken++
			s.suggestion = ""
		case calculator.EffectClearOutputs:
			s.chartToken++
			s.suggestToken++
			s.canvas.Clear()
			s.suggestion = ""
		}
	}
}

// spawn runs fn in the background. Callers hold s.mu.
func (s *Session) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Session) drawChart(token uint64, from, to string) {
	ctx, span := tracer.Start(s.ctx, "widget.chart", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.String("chart.from", from),
		attribute.String("chart.to", to),
	))
	defer span.End()

	ch, err := s.deps.Charter.Draw(ctx, from, to)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || token != s.chartToken {
		staleDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "chart")))
		if ch != nil {
			ch.Destroy()
		}
		return
	}
	if err != nil {
		observability.RecordFailure(ctx, span, s.logger, errorCounter, "chart", "chart omitted", err,
			zap.String("from", from), zap.String("to", to))
		return
	}

	s.canvas.Replace(ch)
	effectsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", calculator.EffectRenderChart.String()),
		attribute.String("outcome", "applied"),
	))
	s.publishLocked(s.viewLocked())
}

func (s *Session) suggest(token uint64, amount float64) {
	ctx, span := tracer.Start(s.ctx, "widget.suggest", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.Float64("suggest.amount", amount),
	))
	defer span.End()

	res := s.deps.Suggester.Suggest(ctx, amount)
	span.SetAttributes(attribute.Int("suggest.picks", len(res.Picks)))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || token != s.suggestToken {
		staleDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "suggestion")))
		return
	}

	s.suggestion = res.Text
	effectsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", calculator.EffectSuggest.String()),
		attribute.String("outcome", "applied"),
	))
	s.publishLocked(s.viewLocked())
}

func (s *Session) viewLocked() View {
	v := View{
		ID:         s.id,
		Display:    calculator.Display(s.state),
		State:      s.state,
		Suggestion: s.suggestion,
	}
	if s.notice != "" {
		v.Display = s.notice
	}
	if ch, ok := s.canvas.Current(); ok {
		ds := ch.Dataset
		v.Chart = &ds
	}
	return v
}

// Chart returns the rendered chart currently on screen.
func (s *Session) Chart() (chart.Chart, bool) {
	return s.canvas.Current()
}

// Subscribe streams views after every change. Slow readers only ever see
// the latest view. The channel closes with the session.
func (s *Session) Subscribe() (<-chan View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan View, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

func (s *Session) publishLocked(v View) {
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Close cancels in-flight requests, tears the outputs down and ends every
// subscription.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.canvas.Clear()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Wait blocks until background requests issued so far have finished.
func (s *Session) Wait() {
	s.wg.Wait()
}
