package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/logger"

	"golang.org/x/time/rate"
)

// ratioCodes maps provider item codes onto our ratio codes.
var ratioCodes = map[string]string{
	"PRICE_TO_EARNINGS": dto.RatioPE,
	"PRICE_TO_BOOK":     dto.RatioPB,
	"ROAE_TR_AVG5Q":     dto.RatioROE,
	"ROAA_TR_AVG5Q":     dto.RatioROA,
	"EPS_TR":            dto.RatioEPS,
	dto.RatioPE:         dto.RatioPE,
	dto.RatioPB:         dto.RatioPB,
	dto.RatioROE:        dto.RatioROE,
	dto.RatioROA:        dto.RatioROA,
	dto.RatioEPS:        dto.RatioEPS,
}

// WantedRatios are the codes the classifier scores, plus EPS for the prompt.
var WantedRatios = []string{dto.RatioPE, dto.RatioPB, dto.RatioROE, dto.RatioROA, dto.RatioEPS}

type fundamentalRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

func NewFundamentalRepository(cfg *config.Config, log *logger.Logger) FundamentalRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Fundamental.MaxRequestPerMinute)
	return &fundamentalRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *fundamentalRepository) GetRatios(ctx context.Context, symbol string) (dto.RatioParseResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return dto.RatioParseResult{}, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	endpoint := fmt.Sprintf("%s/ratios/latest?code=%s", strings.TrimRight(r.cfg.Fundamental.BaseURL, "/"), url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return dto.RatioParseResult{}, fmt.Errorf("failed to create ratio request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return dto.RatioParseResult{}, fmt.Errorf("ratio fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return dto.RatioParseResult{}, fmt.Errorf("ratio read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return dto.RatioParseResult{}, fmt.Errorf("ratio provider returned status %d for %s", resp.StatusCode, symbol)
	}

	result, err := ParseRatioPayload(body, WantedRatios)
	if err != nil {
		return dto.RatioParseResult{}, err
	}
	if len(result.Malformed) > 0 {
		r.log.WarnContext(ctx, "Malformed ratio values", logger.StringField("symbol", symbol), logger.StringField("codes", strings.Join(result.Malformed, ",")))
	}
	return result, nil
}

// ParseRatioPayload reads a finfo-style payload. A payload that is not JSON or has no
// data array is a *dto.RatioParseError; individual absent or unusable values are
// reported in Missing and Malformed instead.
func ParseRatioPayload(body []byte, wanted []string) (dto.RatioParseResult, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return dto.RatioParseResult{}, &dto.RatioParseError{Reason: "empty body"}
	}

	var payload dto.RatioResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return dto.RatioParseResult{}, &dto.RatioParseError{Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	if payload.Data == nil {
		return dto.RatioParseResult{}, &dto.RatioParseError{Reason: "missing data array"}
	}

	result := dto.RatioParseResult{Ratios: dto.FundamentalRatios{}}
	malformed := map[string]bool{}
	for _, item := range payload.Data {
		code, ok := ratioCodes[strings.ToUpper(strings.TrimSpace(item.RatioCode))]
		if !ok {
			continue
		}
		if _, seen := result.Ratios[code]; seen || malformed[code] {
			continue
		}
		v, ok := parseRatioValue(item.Value)
		if !ok {
			malformed[code] = true
			result.Malformed = append(result.Malformed, code)
			continue
		}
		result.Ratios[code] = v
	}

	for _, code := range wanted {
		if _, ok := result.Ratios[code]; !ok && !malformed[code] {
			result.Missing = append(result.Missing, code)
		}
	}
	return result, nil
}

func parseRatioValue(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
