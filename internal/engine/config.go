package engine

import (
	"io"
	"math"

	"go.uber.org/zap"
)

const (
	DefaultInitialCash = 100_000.0
	DefaultFailProb    = 0.01
)

type EngineConfig struct {
	initialCash float64
	failProb    float64
	rng         RandSource
	logger      *zap.Logger
	recorder    Recorder
	progress    io.Writer
}

func NewEngineConfig(initialCash, failProb float64) *EngineConfig {
	return &EngineConfig{
		initialCash: initialCash,
		failProb:    failProb,
	}
}

func DefaultEngineConfig() *EngineConfig {
	return NewEngineConfig(DefaultInitialCash, DefaultFailProb)
}

// WithRand sets the source used for simulated failures. The engine never
// reseeds it.
func (c *EngineConfig) WithRand(rng RandSource) *EngineConfig {
	c.rng = rng
	return c
}

func (c *EngineConfig) WithLogger(logger *zap.Logger) *EngineConfig {
	c.logger = logger
	return c
}

func (c *EngineConfig) WithRecorder(recorder Recorder) *EngineConfig {
	c.recorder = recorder
	return c
}

// WithProgress draws a progress bar on w while ticks are processed.
func (c *EngineConfig) WithProgress(w io.Writer) *EngineConfig {
	c.progress = w
	return c
}

func (c *EngineConfig) InitialCash() float64 { return c.initialCash }
func (c *EngineConfig) FailProb() float64    { return c.failProb }

func (c *EngineConfig) validate() error {
	if !(c.initialCash > 0) || math.IsInf(c.initialCash, 1) {
		return ErrInvalidInitialCash
	}
	if !(c.failProb >= 0 && c.failProb <= 1) {
		return ErrInvalidFailProb
	}
	return nil
}
