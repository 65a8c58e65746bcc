// Package history fetches a currency pair's daily rates over a trailing
// window from the historical-rates collaborator.
package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

var ErrHistory = errors.New("history request failed")

// Point is one day's rate.
type Point struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// Series is ordered ascending by date.
type Series []Point

// Dates returns the labels of s.
func (s Series) Dates() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// Rates returns the values of s.
func (s Series) Rates() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Rate
	}
	return out
}

// Window returns the start and end dates of a days-long window ending on
// now's UTC date.
func Window(now time.Time, days int) (start, end string) {
	now = now.UTC()
	return now.AddDate(0, 0, -days).Format(dateLayout), now.Format(dateLayout)
}

// rangeResponse is the body of GET {base}/{start}..{end}?from=X&to=Y:
//
//	{"base": "USD", "rates": {"2025-01-02": {"INR": 85.6}, ...}}
type rangeResponse struct {
	Base  string                        `json:"base"`
	Rates map[string]map[string]float64 `json:"rates"`
}

// Client talks to the historical-rates collaborator.
type Client struct {
	baseURL string
	days    int
	http    *http.Client
	now     func() time.Time
}

// NewClient creates a client. A nil httpClient gets one with timeout.
func NewClient(baseURL string, days int, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		days:    days,
		http:    httpClient,
		now:     time.Now,
	}
}

// Fetch returns the from→to series over the trailing window.
func (c *Client) Fetch(ctx context.Context, from, to string) (Series, error) {
	start, end := Window(c.now(), c.days)

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	endpoint := fmt.Sprintf("%s/%s..%s?%s", c.baseURL, start, end, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistory, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistory, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrHistory, resp.StatusCode)
	}

	var body rangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrHistory, err)
	}
	if body.Rates == nil {
		return nil, fmt.Errorf("%w: no rates in response", ErrHistory)
	}

	return seriesFor(body.Rates, to), nil
}

func seriesFor(rates map[string]map[string]float64, to string) Series {
	dates := make([]string, 0, len(rates))
	for date := range rates {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	series := make(Series, 0, len(dates))
	for _, date := range dates {
		rate, ok := rates[date][to]
		if !ok {
			continue
		}
		series = append(series, Point{Date: date, Rate: rate})
	}
	return series
}
