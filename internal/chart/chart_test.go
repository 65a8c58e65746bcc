package chart

import (
	"context"
	"errors"
	"strings"
	"testing"

	"currency-crossover/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistory struct {
	series history.Series
	err    error
}

func (s stubHistory) Fetch(ctx context.Context, from, to string) (history.Series, error) {
	return s.series, s.err
}

func TestCharterDrawBuildsDataset(t *testing.T) {
	src := stubHistory{series: history.Series{
		{Date: "2026-01-01", Rate: 83.1},
		{Date: "2026-01-02", Rate: 83.4},
	}}
	charter := NewCharter(src, NewSVGRenderer(), nil)

	ch, err := charter.Draw(context.Background(), "USD", "INR")
	require.NoError(t, err)

	assert.Equal(t, "USD to INR Exchange Rate", ch.Dataset.Title)
	assert.Equal(t, []string{"2026-01-01", "2026-01-02"}, ch.Dataset.Labels)
	assert.Equal(t, []float64{83.1, 83.4}, ch.Dataset.Values)
	assert.Equal(t, "image/svg+xml", ch.ContentType)
	assert.Contains(t, string(ch.Body), "<polyline")
}

func TestCharterDrawFetchFailure(t *testing.T) {
	want := errors.New("history down")
	charter := NewCharter(stubHistory{err: want}, NewSVGRenderer(), nil)

	ch, err := charter.Draw(context.Background(), "USD", "INR")
	require.ErrorIs(t, err, want)
	assert.Nil(t, ch)
}

func TestSVGRenderer(t *testing.T) {
	r := NewSVGRenderer()

	t.Run("escapes title and labels", func(t *testing.T) {
		body, err := r.Render(Dataset{Title: "A<B", Labels: []string{"d&1"}, Values: []float64{1}})
		require.NoError(t, err)

		svg := string(body)
		assert.True(t, strings.HasPrefix(svg, "<svg"))
		assert.True(t, strings.HasSuffix(svg, "</svg>"))
		assert.Contains(t, svg, "A&lt;B")
		assert.Contains(t, svg, "d&amp;1")
		assert.NotContains(t, svg, "NaN")
	})

	t.Run("empty dataset", func(t *testing.T) {
		body, err := r.Render(Dataset{Title: "x"})
		require.NoError(t, err)
		assert.Contains(t, string(body), "No data")
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		_, err := r.Render(Dataset{Labels: []string{"a"}})
		require.Error(t, err)
	})
}

func TestCanvasReplaceDestroysPrevious(t *testing.T) {
	var cv Canvas
	first := &Chart{Body: []byte("one")}
	second := &Chart{Body: []byte("two")}

	cv.Replace(first)
	cv.Replace(second)

	assert.True(t, first.Destroyed())
	assert.Nil(t, first.Body)
	cur, ok := cv.Current()
	require.True(t, ok)
	assert.Equal(t, []byte("two"), cur.Body)

	cv.Clear()
	assert.True(t, second.Destroyed())
	_, ok = cv.Current()
	assert.False(t, ok)
}
