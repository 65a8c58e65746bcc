// Package chart turns a rate history into a rendered line chart and keeps
// at most one rendering alive per canvas.
package chart

import (
	"context"
	"fmt"
	"sync"

	"currency-crossover/internal/history"

	"go.uber.org/zap"
)

// Dataset is a single labelled line series.
type Dataset struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Title names the series for a currency pair.
func Title(from, to string) string {
	return fmt.Sprintf("%s to %s Exchange Rate", from, to)
}

// Renderer draws a dataset. Implementations stand in for the charting
// library.
type Renderer interface {
	Render(ds Dataset) ([]byte, error)
	ContentType() string
}

// Chart is one rendered dataset.
type Chart struct {
	Dataset     Dataset `json:"dataset"`
	ContentType string  `json:"content_type"`
	Body        []byte  `json:"-"`

	destroyed bool
}

// Destroy releases the rendering.
func (c *Chart) Destroy() {
	c.Body = nil
	c.destroyed = true
}

// Destroyed reports whether Destroy ran.
func (c *Chart) Destroyed() bool { return c.destroyed }

// Canvas holds the chart currently on screen.
type Canvas struct {
	mu      sync.Mutex
	current *Chart
}

// Replace tears down the current chart before installing next.
func (cv *Canvas) Replace(next *Chart) {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	if cv.current != nil {
		cv.current.Destroy()
	}
	cv.current = next
}

// Clear tears down the current chart.
func (cv *Canvas) Clear() {
	cv.Replace(nil)
}

// Current returns a copy of the chart on screen.
func (cv *Canvas) Current() (Chart, bool) {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	if cv.current == nil {
		return Chart{}, false
	}
	return *cv.current, true
}

// HistorySource returns a pair's trailing series.
type HistorySource interface {
	Fetch(ctx context.Context, from, to string) (history.Series, error)
}

// Charter fetches history and renders it.
type Charter struct {
	history  HistorySource
	renderer Renderer
	logger   *zap.Logger
}

func NewCharter(src HistorySource, renderer Renderer, logger *zap.Logger) *Charter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Charter{history: src, renderer: renderer, logger: logger}
}

// Draw renders the from→to history. Fetch failures are logged and returned
// so that the caller can leave the chart out.
func (c *Charter) Draw(ctx context.Context, from, to string) (*Chart, error) {
	series, err := c.history.Fetch(ctx, from, to)
	if err != nil {
		c.logger.Error("chart data fetch error",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		)
		return nil, err
	}

	ds := Dataset{
		Title:  Title(from, to),
		Labels: series.Dates(),
		Values: series.Rates(),
	}

	body, err := c.renderer.Render(ds)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", ds.Title, err)
	}

	return &Chart{Dataset: ds, ContentType: c.renderer.ContentType(), Body: body}, nil
}
