package dto

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientData is matched by DataInsufficientError through errors.Is.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrStaleCurrentPrice marks a series whose latest raw point was rejected, so the last
	// valid close may not be the current price.
	ErrStaleCurrentPrice = errors.New("latest price point rejected, current price may be stale")
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

// DataInsufficientError is returned when a series is shorter than the indicator window.
type DataInsufficientError struct {
	Symbol string
	Have   int
	Need   int
}

func (e *DataInsufficientError) Error() string {
	return fmt.Sprintf("insufficient data for %s: have %d points, need %d", e.Symbol, e.Have, e.Need)
}

func (e *DataInsufficientError) Is(target error) bool {
	return target == ErrInsufficientData
}

// UpstreamFetchError wraps a failed call to a price, ratio or watch-list provider.
type UpstreamFetchError struct {
	Source string
	Symbol string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("fetch %s for %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// EnrichmentTimeoutError is recorded when the narrative call exceeds its deadline.
type EnrichmentTimeoutError struct {
	Symbol  string
	Timeout time.Duration
}

func (e *EnrichmentTimeoutError) Error() string {
	return fmt.Sprintf("enrichment for %s timed out after %s", e.Symbol, e.Timeout)
}

// EnrichmentError is recorded for any other narrative failure.
type EnrichmentError struct {
	Symbol string
	Err    error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrichment for %s failed: %v", e.Symbol, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// ValidationError describes a rejected price point.
type ValidationError struct {
	Symbol string
	Date   time.Time
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid price point %s %s: %s", e.Symbol, e.Date.Format("2006-01-02"), e.Reason)
}

// PersistenceError is fatal for one symbol's recommendation only.
type PersistenceError struct {
	Symbol string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist recommendation for %s: %v", e.Symbol, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
