// Package crossover implements a moving-average crossover strategy over a
// single symbol.
package crossover

import (
	"errors"
	"fmt"
	"math"
	"tickbacktester/internal/ringbuffer"
	"tickbacktester/types"

	"github.com/moznion/go-optional"
)

const Name = "ma_crossover"

var ErrInvalidWindows = errors.New("windows must satisfy 0 < fast < slow")

type Strategy struct {
	symbol   string
	fast     int
	slow     int
	quantity int

	history  *ringbuffer.Ring[float64]
	prevDiff optional.Option[float64]
}

func New(symbol string, fast, slow, quantity int) (*Strategy, error) {
	if fast <= 0 || slow <= 0 || fast >= slow {
		return nil, fmt.Errorf("fast=%d slow=%d: %w", fast, slow, ErrInvalidWindows)
	}
	return &Strategy{
		symbol:   symbol,
		fast:     fast,
		slow:     slow,
		quantity: quantity,
		history:  ringbuffer.New[float64](slow),
		prevDiff: optional.None[float64](),
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

	fastSMA := s.mean(s.slow - s.fast)
	slowSMA := s.mean(0)
	if math.IsNaN(fastSMA) || math.IsNaN(slowSMA) {
		return nil, nil
	}
	diff := fastSMA - slowSMA

	var signals []types.Signal
	if s.prevDiff.IsSome() {
		prev := s.prevDiff.Unwrap()
		switch {
		case prev <= 0 && diff > 0:
			signals = append(signals, types.NewSignal(types.SideTypeBuy, tick.Symbol, s.quantity, tick.Price))
		case prev >= 0 && diff < 0:
			signals = append(signals, types.NewSignal(types.SideTypeSell, tick.Symbol, s.quantity, tick.Price))
		}
	}
	s.prevDiff = optional.Some(diff)
	return signals, nil
}

// mean averages the history from index from (oldest is 0) to the newest price.
func (s *Strategy) mean(from int) float64 {
	n := s.history.Len() - from
	var sum float64
	for i := from; i < s.history.Len(); i++ {
		sum += s.history.At(i)
	}
	return sum / float64(n)
}
