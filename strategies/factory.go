// Package strategies builds engine strategies from configuration.
package strategies

import (
	"errors"
	"fmt"
	"tickbacktester/internal/config"
	"tickbacktester/internal/engine"
	"tickbacktester/strategies/crossover"
	"tickbacktester/strategies/momentum"
)

var ErrUnknownStrategy = errors.New("unknown strategy type")

// Build returns a fresh strategy instance for cfg.
func Build(cfg config.StrategyConfig) (engine.Strategy, error) {
	switch cfg.Type {
	case config.StrategyMACrossover:
		s, err := crossover.New(cfg.Symbol, cfg.Fast, cfg.Slow, cfg.Quantity)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StrategyMomentum:
		s, err := momentum.New(cfg.Symbol, cfg.Lookback, cfg.Threshold, cfg.Quantity)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Type)
}

func BuildAll(cfgs []config.StrategyConfig) ([]engine.Strategy, error) {
	out := make([]engine.Strategy, 0, len(cfgs))
	for i, cfg := range cfgs {
		s, err := Build(cfg)
		if err != nil {
			return nil, fmt.Errorf("strategy %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}
