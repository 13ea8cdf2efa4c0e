package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-signal/pkg/logger"
)

const chartPayload = `{"chart":{"result":[{
  "meta":{"symbol":"FPT.VN","currency":"VND"},
  "timestamp":[1709517600,1709604000,1709690400],
  "indicators":{
    "quote":[{"open":[23000,23100,null],"high":[23300,23400,null],"low":[22900,23000,null],"close":[23200,23350,null],"volume":[1200000,900000,null]}],
    "adjclose":[{"adjclose":[23100,23350,null]}]
  }}],"error":null}}`

func TestYahooFinanceRepository_GetDailySeries(t *testing.T) {
	var gotPath, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		_, _ = w.Write([]byte(chartPayload))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.YahooFinance.BaseURL = srv.URL
	repo := NewYahooFinanceRepository(cfg, logger.NewNop())

	points, err := repo.GetDailySeries(context.Background(), "fpt", 120)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/FPT.VN", gotPath)
	assert.Equal(t, "1d", gotInterval)
	require.Len(t, points, 2)
	assert.Equal(t, 23200.0, points[0].Close)
	assert.Equal(t, 23100.0, points[0].AdjustedClose)
	assert.Equal(t, 1200000.0, points[0].Volume)
	assert.True(t, points[0].Date.Before(points[1].Date))
	assert.Zero(t, points[1].Date.Hour())
}

func TestYahooFinanceRepository_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"status", http.StatusTooManyRequests, `{}`, "status 429"},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, "No data found"},
		{"empty", http.StatusOK, `{"chart":{"result":[]}}`, "no result"},
		{"garbage", http.StatusOK, `<html>`, "yahoo decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cfg := testConfig()
			cfg.YahooFinance.BaseURL = srv.URL
			_, err := NewYahooFinanceRepository(cfg, logger.NewNop()).GetDailySeries(context.Background(), "FPT", 30)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestYahooFinanceRepository_TickerSuffix(t *testing.T) {
	repo := &yahooFinanceRepository{cfg: testConfig()}
	assert.Equal(t, "VNM.VN", repo.ticker(" vnm "))
	assert.Equal(t, "VNM.VN", repo.ticker("VNM.VN"))
}
