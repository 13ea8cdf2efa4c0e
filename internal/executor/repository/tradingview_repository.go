package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var tradingViewExchanges = []string{"HOSE", "HNX", "UPCOM"}

type tradingViewRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewTradingViewRepository serves the watch-list from the TradingView Vietnam screener,
// keeping symbols whose technical rating is at least the configured minimum.
func NewTradingViewRepository(cfg *config.Config, log *logger.Logger) WatchlistRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.TradingView.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	return &tradingViewRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		requestLimiter: requestLimiter,
	}
}

func (r *tradingViewRepository) GetCandidates(ctx context.Context, limit int) ([]dto.WatchlistCandidate, error) {
	url := fmt.Sprintf("%s/%s/scan?label-product=screener-stock", r.cfg.TradingView.BaseURL, r.cfg.TradingView.Market)
	payload := dto.TradingViewScanRequest{
		Filter: []dto.TradingViewFilter{
			{Left: "exchange", Operation: "in_range", Right: tradingViewExchanges},
			{Left: "Recommend.All", Operation: "egreater", Right: r.cfg.TradingView.MinTechnicalRating},
		},
		Columns: []string{"Recommend.All"},
		Sort:    dto.TradingViewSort{SortBy: "Recommend.All", SortOrder: "desc"},
		Range:   []int{0, limit},
		Markets: []string{r.cfg.TradingView.Market},
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	body, err := r.sendRequest(ctx, http.MethodPost, url, string(jsonPayload))
	if err != nil {
		return nil, err
	}

	var response dto.TradingViewResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode tradingview response: %w", err)
	}

	var candidates []dto.WatchlistCandidate
	for _, v := range response.Data {
		if limit > 0 && len(candidates) >= limit {
			break
		}
		valueParse := strings.Split(v.StockCode, ":")
		if len(valueParse) < 2 || valueParse[1] == "" {
			continue
		}
		if len(v.Columns) == 0 {
			continue
		}
		if v.Columns[0] < r.cfg.TradingView.MinTechnicalRating {
			continue
		}
		candidates = append(candidates, dto.WatchlistCandidate{
			Symbol: valueParse[1],
			Rating: v.Columns[0],
		})
	}

	r.log.DebugContext(ctx, "TradingView found candidates", logger.IntField("count", len(candidates)))

	return candidates, nil
}

func (r *tradingViewRepository) sendRequest(ctx context.Context, method string, url string, jsonStr string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", url),
		zap.Int("max_request_per_minute", r.cfg.TradingView.MaxRequestPerMinute),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBufferString(jsonStr))
	if err != nil {
		return nil, fmt.Errorf("failed to create tradingview request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to TradingView API", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from TradingView API", fields...)
		return nil, fmt.Errorf("tradingview returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
