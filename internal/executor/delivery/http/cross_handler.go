package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/service"
	"golang-stock-signal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CrossHandler screens symbols for a golden cross without classifying them.
type CrossHandler struct {
	pipeline service.Pipeline
	logger   *logger.Logger
}

// NewCrossHandler creates a new CrossHandler.
func NewCrossHandler(pipeline service.Pipeline, logger *logger.Logger) *CrossHandler {
	return &CrossHandler{pipeline: pipeline, logger: logger}
}

// RegisterRoutes registers the cross routes to the Echo group.
func (h *CrossHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListCrosses)
}

// ListCrosses godoc
// @Summary Scan for golden crosses
// @Description Report whether the fast average is above the slow one and how old the cross is, for the given symbols or the watch-list
// @Tags signals
// @Produce  json
// @Param   symbols  query    string false    "Comma separated ticker symbols"
// @Success 200 {array} CrossResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /crosses [get]
func (h *CrossHandler) ListCrosses(c echo.Context) error {
	var symbols []string
	if raw := strings.TrimSpace(c.QueryParam("symbols")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if strings.TrimSpace(s) == "" {
				return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Empty symbol in request"})
			}
			symbols = append(symbols, s)
		}
	}
	if len(symbols) > maxRunSymbols {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Too many symbols, max " + strconv.Itoa(maxRunSymbols)})
	}

	candidates, err := h.pipeline.ScanCrosses(c.Request().Context(), symbols)
	if err != nil {
		var upstream *dto.UpstreamFetchError
		if errors.As(err, &upstream) {
			return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to scan crosses", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to scan crosses"})
	}

	resp := make([]CrossResponse, 0, len(candidates))
	for _, cand := range candidates {
		item := CrossResponse{Symbol: cand.Symbol}
		if cand.Err != nil {
			item.Error = cand.Err.Error()
		} else {
			item.Cross = &cand.State
		}
		resp = append(resp, item)
	}
	return c.JSON(http.StatusOK, resp)
}
