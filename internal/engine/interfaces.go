package engine

import (
	"math/rand/v2"
	"tickbacktester/types"
)

// Strategy turns ticks into trade intents. Implementations keep their own
// state and must ignore ticks for symbols they do not trade.
type Strategy interface {
	Name() string
	GenerateSignals(tick types.MarketTick) ([]types.Signal, error)
}

// RandSource draws uniform values in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// Recorder receives run events, typically for metrics export.
type Recorder interface {
	ObserveTick(tick types.MarketTick)
	ObserveOrder(order types.Order)
	ObserveError(kind string)
	ObserveEquity(equity float64)
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type nopRecorder struct{}

func (nopRecorder) ObserveTick(types.MarketTick) {}
func (nopRecorder) ObserveOrder(types.Order)     {}
func (nopRecorder) ObserveError(string)          {}
func (nopRecorder) ObserveEquity(float64)        {}
