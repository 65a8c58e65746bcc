// Package quotes reads single-symbol stock quotes from the quote
// collaborator.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

var ErrQuote = errors.New("quote request failed")

// Quote is a symbol's latest price. Symbol has any exchange suffix removed.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// globalQuoteResponse is the GLOBAL_QUOTE body. Rate-limited or unknown
// symbols come back without "Global Quote" or with it empty.
//
//	{"Global Quote": {"01. symbol": "TCS.BSE", "05. price": "3890.1500"}}
type globalQuoteResponse struct {
	GlobalQuote *struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
}

// Client talks to the quote collaborator.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client. Per-request deadlines come from the caller's
// context; a nil httpClient gets a plain one.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Minute}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Quote fetches symbol. ok is false when the body carries no usable price,
// which is "no data", not an error.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, bool, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return Quote{}, false, fmt.Errorf("%w: %v", ErrQuote, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, false, fmt.Errorf("%w: %s: %v", ErrQuote, symbol, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	var body globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, false, fmt.Errorf("%w: %s: decode body: %v", ErrQuote, symbol, err)
	}

	return parse(body, symbol)
}

func parse(body globalQuoteResponse, requested string) (Quote, bool, error) {
	gq := body.GlobalQuote
	if gq == nil || gq.Price == "" {
		return Quote{}, false, nil
	}

	price, err := decimal.NewFromString(gq.Price)
	if err != nil {
		return Quote{}, false, fmt.Errorf("%w: %s: price %q: %v", ErrQuote, requested, gq.Price, err)
	}

	symbol := gq.Symbol
	if symbol == "" {
		symbol = requested
	}
	return Quote{Symbol: DisplaySymbol(symbol), Price: price}, true, nil
}

// DisplaySymbol drops the exchange suffix: "RELIANCE.BSE" → "RELIANCE".
func DisplaySymbol(symbol string) string {
	name, _, _ := strings.Cut(symbol, ".")
	return name
}

func redact(err error, key string) string {
	if key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), key, "***")
}
