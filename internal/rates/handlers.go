package rates

import (
	"net/http"

	"currency-crossover/internal/handlers"

	"github.com/go-chi/chi/v5"
)

// CurrenciesResponse is the JSON response for GET /currencies.
type CurrenciesResponse struct {
	Base       string   `json:"base"`
	Home       string   `json:"home"`
	Currencies []string `json:"currencies"`
	From       string   `json:"default_from"`
	To         string   `json:"default_to"`
	Notice     string   `json:"notice,omitempty"`
}

// RegisterRoutes mounts GET /currencies.
func RegisterRoutes(c *Cache) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/currencies", c.handleCurrencies)
	}
}

func (c *Cache) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	from, to := c.Defaults()
	currencies := c.Currencies()
	if currencies == nil {
		currencies = []string{}
	}

	handlers.WriteJSON(w, http.StatusOK, CurrenciesResponse{
		Base:       c.Base(),
		Home:       c.Home(),
		Currencies: currencies,
		From:       from,
		To:         to,
		Notice:     c.Notice(),
	})
}
