package dto

import (
	"encoding/json"
	"fmt"
)

const (
	RatioPE  = "PE"
	RatioPB  = "PB"
	RatioROE = "ROE"
	RatioROA = "ROA"
	RatioEPS = "EPS"
)

// FundamentalRatios maps a ratio code to its latest value for one symbol.
type FundamentalRatios map[string]float64

// Get returns the ratio and whether it is present.
func (r FundamentalRatios) Get(code string) (float64, bool) {
	v, ok := r[code]
	return v, ok
}

// RatioParseResult is the successful branch of a ratio payload parse. Missing lists the
// wanted codes absent from the payload, Malformed the codes whose value was unusable.
type RatioParseResult struct {
	Ratios    FundamentalRatios `json:"ratios"`
	Missing   []string          `json:"missing,omitempty"`
	Malformed []string          `json:"malformed,omitempty"`
}

// RatioParseError is the failing branch: the payload as a whole could not be read.
type RatioParseError struct {
	Reason string
}

func (e *RatioParseError) Error() string {
	return fmt.Sprintf("parse ratio payload: %s", e.Reason)
}

// RatioResponse is the finfo-style ratio payload.
type RatioResponse struct {
	Data []RatioItem `json:"data"`
}

// RatioItem keeps the value raw so nulls and strings surface as malformed.
type RatioItem struct {
	RatioCode string          `json:"ratioCode"`
	Value     json.RawMessage `json:"value"`
}
