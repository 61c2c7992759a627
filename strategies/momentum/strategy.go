// Package momentum implements a lookback-return momentum strategy over a
// single symbol.
package momentum

import (
	"errors"
	"fmt"
	"tickbacktester/internal/ringbuffer"
	"tickbacktester/types"
)

const Name = "momentum"

var (
	ErrInvalidLookback  = errors.New("lookback must be positive")
	ErrInvalidThreshold = errors.New("threshold must be non-negative")
)

type Strategy struct {
	symbol    string
	lookback  int
	threshold float64
	quantity  int

	// lookback+1 prices so the oldest is exactly lookback ticks back
	history *ringbuffer.Ring[float64]
}

func New(symbol string, lookback int, threshold float64, quantity int) (*Strategy, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("lookback=%d: %w", lookback, ErrInvalidLookback)
	}
	if !(threshold >= 0) {
		return nil, fmt.Errorf("threshold=%v: %w", threshold, ErrInvalidThreshold)
	}
	return &Strategy{
		symbol:    symbol,
		lookback:  lookback,
		threshold: threshold,
		quantity:  quantity,
		history:   ringbuffer.New[float64](lookback + 1),
	}, nil
}

func (s *Strategy) Name() string { return Name }

func (s *Strategy) GenerateSignals(tick types.MarketTick) ([]types.Signal, error) {
	if tick.Symbol != s.symbol {
		return nil, nil
	}
	s.history.Push(tick.Price)
	if !s.history.Full() {
		return nil, nil
	}

	past := s.history.Oldest()
	if past <= 0 {
		return nil, nil
	}
	ret := tick.Price/past - 1

	switch {
	case ret >= s.threshold:
		return []types.Signal{types.NewSignal(types.SideTypeBuy, tick.Symbol, s.quantity, tick.Price)}, nil
	case ret <= -s.threshold:
		return []types.Signal{types.NewSignal(types.SideTypeSell, tick.Symbol, s.quantity, tick.Price)}, nil
	}
	return nil, nil
}
