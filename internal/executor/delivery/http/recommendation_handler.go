package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/repository"
	"golang-stock-signal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RecommendationHandler serves the read side of persisted recommendations.
type RecommendationHandler struct {
	recommendationRepo repository.RecommendationRepository
	logger             *logger.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommendationRepo repository.RecommendationRepository, logger *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommendationRepo: recommendationRepo, logger: logger}
}

// RegisterRoutes registers the recommendation routes to the Echo group.
func (h *RecommendationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListRecommendations)
	g.GET("/:id", h.GetRecommendationByID)
}

// ListRecommendations godoc
// @Summary List recommendations
// @Description List recommendations, newest first
// @Tags recommendations
// @Produce  json
// @Param   symbol  query    string false    "Ticker symbol"
// @Param   run_id  query    string false    "Run ID"
// @Param   limit   query    int    false    "Max rows (default 50)"
// @Success 200 {array} entity.Recommendation
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /recommendations [get]
func (h *RecommendationHandler) ListRecommendations(c echo.Context) error {
	filter := repository.RecommendationFilter{
		Symbol: strings.ToUpper(strings.TrimSpace(c.QueryParam("symbol"))),
		RunID:  strings.TrimSpace(c.QueryParam("run_id")),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
		}
		filter.Limit = limit
	}

	recs, err := h.recommendationRepo.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list recommendations", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list recommendations"})
	}
	return c.JSON(http.StatusOK, recs)
}

// GetRecommendationByID godoc
// @Summary Get a recommendation by ID
// @Tags recommendations
// @Produce  json
// @Param   id  path    string true    "Recommendation ID"
// @Success 200 {object} entity.Recommendation
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /recommendations/{id} [get]
func (h *RecommendationHandler) GetRecommendationByID(c echo.Context) error {
	rec, err := h.recommendationRepo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Recommendation not found"})
		}
		h.logger.Error("Failed to get recommendation", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get recommendation"})
	}
	return c.JSON(http.StatusOK, rec)
}
