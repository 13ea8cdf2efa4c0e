package http

import (
	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunAcceptedResponse is returned once a run has been queued.
type RunAcceptedResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// RunResponse is the stored history of a run with its decoded report.
type RunResponse struct {
	entity.PipelineRun
}

// CrossResponse is one symbol of a cross scan. Cross is nil when Error is set.
type CrossResponse struct {
	Symbol string          `json:"symbol"`
	Cross  *dto.CrossState `json:"cross,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SignalResponse wraps an unpersisted evaluation of one symbol.
type SignalResponse struct {
	dto.SymbolResult
}
