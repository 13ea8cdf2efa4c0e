package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ContentGenerator is the part of genai.Models used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	CountTokens(ctx context.Context, model string, contents []*genai.Content, config *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
}

// geminiNarrativeRepository is an implementation of NarrativeRepository backed by Google Gemini.
type geminiNarrativeRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	models         ContentGenerator
}

// NewGeminiNarrativeRepository creates a new instance of geminiNarrativeRepository.
func NewGeminiNarrativeRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (NarrativeRepository, error) {
	if genAiClient == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	return NewGeminiNarrativeRepositoryWithGenerator(cfg, log, genAiClient.Models), nil
}

func NewGeminiNarrativeRepositoryWithGenerator(cfg *config.Config, log *logger.Logger, models ContentGenerator) NarrativeRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	return &geminiNarrativeRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute),
		models:         models,
	}
}

// Assess asks Gemini for a structured narrative of the symbol.
func (r *geminiNarrativeRepository) Assess(ctx context.Context, symbol string, tech dto.TechnicalContext, fund dto.FundamentalContext) (*dto.NarrativeAssessment, error) {
	prompt := BuildAssessmentPrompt(symbol, tech, fund)

	raw, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := parseAssessment(raw)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to unmarshal assessment from Gemini response", logger.ErrorField(err), logger.StringField("response", raw))
		return nil, err
	}
	return result, nil
}

func (r *geminiNarrativeRepository) executeGeminiAIRequest(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	if r.cfg.Gemini.MaxTokenPerMinute > 0 {
		tokenResp, err := r.models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
		if err != nil {
			return "", fmt.Errorf("failed to count tokens: %w", err)
		}
		r.logger.DebugContext(ctx, "Gemini token count",
			logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
			logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
		)
		if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
			return "", fmt.Errorf("failed to wait for token limit: %w", err)
		}
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if r.cfg.Gemini.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(r.cfg.Gemini.Temperature)
	}

	resp, err := r.models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no content found in Gemini response")
	}
	return text, nil
}

func parseAssessment(raw string) (*dto.NarrativeAssessment, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var result dto.NarrativeAssessment
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assessment: %w", err)
	}
	if result.Outlook == "" && result.Recommendation == "" {
		return nil, fmt.Errorf("assessment has neither outlook nor recommendation")
	}
	return &result, nil
}
