package widget

import (
	"context"
	"errors"
	"sync"

	"currency-crossover/internal/calculator"
	"currency-crossover/internal/chart"
	"currency-crossover/internal/suggest"
)

type rateMap map[string]float64

func (m rateMap) Rate(code string) (float64, bool) {
	r, ok := m[code]
	return r, ok
}

type fakeRates struct {
	from, to string
	notice   string
}

func (f fakeRates) Defaults() (string, string) { return f.from, f.to }
func (f fakeRates) Notice() string             { return f.notice }

var errHistory = errors.New("history unavailable")

// fakeCharter draws instantly unless the pair is gated or marked failing.
type fakeCharter struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	failing map[string]bool
	drawn   []*chart.Chart
}

func newFakeCharter() *fakeCharter {
	return &fakeCharter{gates: map[string]chan struct{}{}, failing: map[string]bool{}}
}

func (f *fakeCharter) gate(from, to string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[from+to] = ch
	return ch
}

func (f *fakeCharter) fail(from, to string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[from+to] = true
}

func (f *fakeCharter) Draw(ctx context.Context, from, to string) (*chart.Chart, error) {
	f.mu.Lock()
	gate := f.gates[from+to]
	failing := f.failing[from+to]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failing {
		return nil, errHistory
	}

	ch := &chart.Chart{
		Dataset:     chart.Dataset{Title: chart.Title(from, to), Labels: []string{"2024-01-01"}, Values: []float64{83}},
		ContentType: "image/svg+xml",
		Body:        []byte("<svg/>"),
	}

	f.mu.Lock()
	f.drawn = append(f.drawn, ch)
	f.mu.Unlock()
	return ch, nil
}

func (f *fakeCharter) charts() []*chart.Chart {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*chart.Chart(nil), f.drawn...)
}

type fakeSuggester struct {
	gate chan struct{}
}

func (f *fakeSuggester) Suggest(ctx context.Context, amount float64) suggest.Result {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return suggest.Result{Outcome: suggest.OutcomeUnavailable, Text: suggest.TextUnavailable}
		}
	}
	return suggest.Result{Outcome: suggest.OutcomeFund, Text: suggest.TextFund}
}

func testDeps(notice string) (Deps, *fakeCharter, *fakeSuggester) {
	charter := newFakeCharter()
	suggester := &fakeSuggester{}
	return Deps{
		Engine:    calculator.Engine{Rates: rateMap{"USD": 1, "INR": 83, "EUR": 0.92}, HomeCurrency: "INR"},
		Rates:     fakeRates{from: "USD", to: "INR", notice: notice},
		Charter:   charter,
		Suggester: suggester,
	}, charter, suggester
}

func mustKeys(texts ...string) []calculator.Key {
	keys := make([]calculator.Key, 0, len(texts))
	for _, text := range texts {
		k, err := calculator.ParseKey(text)
		if err != nil {
			panic(err)
		}
		keys = append(keys, k)
	}
	return keys
}
