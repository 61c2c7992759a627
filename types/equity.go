package types

import "time"

// EquityPoint is the mark-to-market portfolio value after a tick.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}
