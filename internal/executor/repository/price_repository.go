package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/utils"

	"golang.org/x/time/rate"
)

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	now            func() time.Time
}

// NewYahooFinanceRepository reads daily bars from the Yahoo Finance chart API. Vietnamese
// tickers are suffixed with the configured suffix (".VN").
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) PriceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		now:            utils.TimeNowICT,
	}
}

func (r *yahooFinanceRepository) GetDailySeries(ctx context.Context, symbol string, lookbackDays int) ([]dto.PricePoint, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	end := r.now()
	start := end.AddDate(0, 0, -lookbackDays)
	ticker := r.ticker(symbol)

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))
	q.Set("events", "div,splits")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", strings.TrimRight(r.cfg.YahooFinance.BaseURL, "/"), url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Yahoo Finance", logger.ErrorField(err), logger.StringField("symbol", ticker))
		return nil, fmt.Errorf("yahoo fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d for %s", resp.StatusCode, ticker)
	}

	var chart dto.YahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo returned no result for %s", ticker)
	}

	points := chartToPoints(chart.Chart.Result[0])
	r.log.DebugContext(ctx, "Yahoo Finance series fetched", logger.StringField("symbol", ticker), logger.IntField("points", len(points)))
	return points, nil
}

func (r *yahooFinanceRepository) ticker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	suffix := r.cfg.YahooFinance.SymbolSuffix
	if suffix == "" || strings.HasSuffix(symbol, suffix) {
		return symbol
	}
	return symbol + suffix
}

// chartToPoints converts the columnar chart payload into bars. Bars with a null close
// are sessions without trading and are skipped; other nulls become zero and are left
// for series validation to reject.
func chartToPoints(result dto.YahooChartResult) []dto.PricePoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	points := make([]dto.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue
		}
		points = append(points, dto.PricePoint{
			Date:          utils.TradingDay(time.Unix(ts, 0)),
			Open:          deref(at(quote.Open, i)),
			High:          deref(at(quote.High, i)),
			Low:           deref(at(quote.Low, i)),
			Close:         *c,
			AdjustedClose: deref(at(adj, i)),
			Volume:        deref(at(quote.Volume, i)),
		})
	}
	return points
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
