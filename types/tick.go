package types

import "time"

// MarketTick is a single price observation for one symbol.
type MarketTick struct {
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
}
