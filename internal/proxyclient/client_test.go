package proxyclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/service"
	"github.com/mehrbod2002/coinboard/internal/updater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ updater.Source = (*Client)(nil)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/assets", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "20" || q.Get("sortBy") != "price" || q.Get("sortOrder") != "desc" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad query"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"bitcoin","rank":"1","priceUsd":"64000"},{"id":"ethereum","rank":"2","priceUsd":"3000"}]`))
	})
	mux.HandleFunc("/api/assets/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"bitcoin","priceUsd":"64000.5"}`))
	})
	mux.HandleFunc("/api/assets/noprice", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"noprice","priceUsd":null}`))
	})
	mux.HandleFunc("/api/assets/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Cryptocurrency with ID 'missing' not found"}`))
	})
	mux.HandleFunc("/api/history/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"time":1,"priceUsd":"1","date":"12:00 AM"}]`))
	})
	mux.HandleFunc("/api/history/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch price history data"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ListAssets(t *testing.T) {
	c := New(newServer(t).URL+"/", time.Second)
	assets, err := c.ListAssets(context.Background(), 20, service.SortConfig{SortBy: service.SortByPrice, SortOrder: service.SortDesc})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "ethereum", assets[1].ID)
}

func TestClient_Price(t *testing.T) {
	c := New(newServer(t).URL, time.Second)

	price, err := c.Price(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "64000.5", price)

	price, err = c.Price(context.Background(), "noprice")
	require.NoError(t, err)
	assert.Empty(t, price)
}

func TestClient_Errors(t *testing.T) {
	c := New(newServer(t).URL, time.Second)

	_, err := c.GetAsset(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Contains(t, err.Error(), "Cryptocurrency with ID 'missing' not found")

	_, err = c.History(context.Background(), "broken")
	var upstream *models.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.Status)
	assert.Equal(t, "Failed to fetch price history data", upstream.Err.Error())
	assert.False(t, models.IsNotFound(err))

	points, err := c.History(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, []models.PricePoint{{Time: 1, PriceUsd: "1", Date: "12:00 AM"}}, points)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, time.Second)
	srv.Close()

	_, err := c.GetAsset(context.Background(), "bitcoin")
	var upstream *models.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Zero(t, upstream.Status)
}
