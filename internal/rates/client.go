// Package rates fetches the latest currency rates and keeps them in a
// process-wide table.
package rates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

var (
	// ErrTransport covers network failures and bodies that are not JSON.
	ErrTransport = errors.New("rate request failed")
	// ErrAPI covers API-reported failures and responses of the wrong shape.
	ErrAPI = errors.New("rate api error")
)

// Table maps a three-letter currency code to its rate against the base.
type Table map[string]float64

// latestResponse is the body of GET {base}/{key}/latest/{code}:
//
//	{
//		"result": "success",
//		"base_code": "USD",
//		"conversion_rates": {"USD": 1, "INR": 83.2}
//	}
//
// Failures carry "result": "error" and an "error-type".
type latestResponse struct {
	Result          string             `json:"result" validate:"required,oneof=success error"`
	ErrorType       string             `json:"error-type"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// Client talks to the latest-rates collaborator.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	validate *validator.Validate
}

// NewClient creates a client. A nil httpClient gets one with timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		http:     httpClient,
		validate: validator.New(),
	}
}

// Latest fetches the rate table relative to base.
func (c *Client) Latest(ctx context.Context, base string) (Table, error) {
	endpoint := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode body (status %d): %v", ErrTransport, resp.StatusCode, err)
	}

	return c.parse(body)
}

func (c *Client) parse(body latestResponse) (Table, error) {
	if err := c.validate.Struct(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPI, err)
	}
	if body.Result != "success" {
		return nil, fmt.Errorf("%w: %s", ErrAPI, body.ErrorType)
	}
	if len(body.ConversionRates) == 0 {
		return nil, fmt.Errorf("%w: no conversion rates", ErrAPI)
	}
	if err := c.validate.Var(body.ConversionRates, "dive,keys,len=3,alpha,uppercase,endkeys,gt=0"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPI, err)
	}

	return Table(body.ConversionRates), nil
}

// redact keeps the API key out of logged URLs.
func redact(err error, key string) string {
	if key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), key, "***")
}
