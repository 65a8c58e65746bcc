package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	start, end := Window(now, 30)

	assert.Equal(t, "2026-02-13", start)
	assert.Equal(t, "2026-03-15", end)
}

func TestFetchSortsAndExtractsTarget(t *testing.T) {
	var gotPath, gotFrom, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		w.Write([]byte(`{"base":"USD","rates":{
			"2026-01-03":{"INR":83.3},
			"2026-01-01":{"INR":83.1},
			"2026-01-02":{"EUR":0.9},
			"2026-01-04":{"INR":83.4}
		}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 30, time.Second, nil)
	client.now = func() time.Time { return time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC) }

	series, err := client.Fetch(context.Background(), "USD", "INR")
	require.NoError(t, err)

	assert.Equal(t, "/2026-01-01..2026-01-31", gotPath)
	assert.Equal(t, "USD", gotFrom)
	assert.Equal(t, "INR", gotTo)
	assert.Equal(t, []string{"2026-01-01", "2026-01-03", "2026-01-04"}, series.Dates())
	assert.Equal(t, []float64{83.1, 83.3, 83.4}, series.Rates())
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "status", status: http.StatusNotFound, body: `{"message":"not found"}`},
		{name: "not json", status: http.StatusOK, body: `nope`},
		{name: "no rates", status: http.StatusOK, body: `{"base":"USD"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, 30, time.Second, nil).Fetch(context.Background(), "USD", "INR")
			require.ErrorIs(t, err, ErrHistory)
		})
	}
}
