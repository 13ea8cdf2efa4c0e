package http

import (
	"errors"
	"net/http"
	"strings"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/service"
	"golang-stock-signal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalHandler evaluates a single symbol on demand without persisting anything.
type SignalHandler struct {
	pipeline service.Pipeline
	logger   *logger.Logger
}

// NewSignalHandler creates a new SignalHandler.
func NewSignalHandler(pipeline service.Pipeline, logger *logger.Logger) *SignalHandler {
	return &SignalHandler{pipeline: pipeline, logger: logger}
}

// RegisterRoutes registers the signal routes to the Echo group.
func (h *SignalHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:symbol", h.GetSignal)
}

// GetSignal godoc
// @Summary Evaluate a symbol
// @Description Classify one symbol with the current data. Nothing is persisted.
// @Tags signals
// @Produce  json
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {object} SignalResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /signals/{symbol} [get]
func (h *SignalHandler) GetSignal(c echo.Context) error {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Symbol is required"})
	}

	result, err := h.pipeline.Evaluate(c.Request().Context(), symbol)
	if err != nil {
		var upstream *dto.UpstreamFetchError
		switch {
		case errors.Is(err, dto.ErrInsufficientData):
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		case errors.As(err, &upstream):
			return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to evaluate symbol", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, SignalResponse{SymbolResult: *result})
}
