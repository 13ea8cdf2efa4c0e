package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/repository"
	"golang-stock-signal/internal/executor/service"
	"golang-stock-signal/pkg/logger"

	"github.com/labstack/echo/v4"
)

const maxRunSymbols = 200

// RunHandler handles HTTP requests for pipeline runs.
type RunHandler struct {
	signalRunService service.SignalRunService
	runRepo          repository.PipelineRunRepository
	logger           *logger.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(signalRunService service.SignalRunService, runRepo repository.PipelineRunRepository, logger *logger.Logger) *RunHandler {
	return &RunHandler{signalRunService: signalRunService, runRepo: runRepo, logger: logger}
}

// RegisterRoutes registers the run routes to the Echo group.
func (h *RunHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.TriggerRun)
	g.GET("/:id", h.GetRunByID)
}

// TriggerRun godoc
// @Summary Trigger a pipeline run
// @Description Queue a run over the given symbols, or over the watch-list when none are given
// @Tags runs
// @Accept  json
// @Produce  json
// @Param   run  body    dto.RunRequest   false    "Symbols to evaluate"
// @Success 202 {object} RunAcceptedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /runs [post]
func (h *RunHandler) TriggerRun(c echo.Context) error {
	var req dto.RunRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		}
	}
	if len(req.Symbols) > maxRunSymbols {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Too many symbols, max " + strconv.Itoa(maxRunSymbols)})
	}
	for _, s := range req.Symbols {
		if strings.TrimSpace(s) == "" {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Empty symbol in request"})
		}
	}
	req.RunID = ""
	req.Source = service.TriggerManual

	runID, err := h.signalRunService.Enqueue(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Failed to enqueue run", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to enqueue run"})
	}
	return c.JSON(http.StatusAccepted, RunAcceptedResponse{RunID: runID, Status: "queued"})
}

// GetRunByID godoc
// @Summary Get a run by ID
// @Description Get the status, counters and report of a run
// @Tags runs
// @Produce  json
// @Param   id  path    string true    "Run ID"
// @Success 200 {object} RunResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /runs/{id} [get]
func (h *RunHandler) GetRunByID(c echo.Context) error {
	run, err := h.runRepo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run not found"})
		}
		h.logger.Error("Failed to get run", logger.ErrorField(err), logger.StringField("run_id", c.Param("id")))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get run"})
	}
	return c.JSON(http.StatusOK, RunResponse{PipelineRun: *run})
}
