package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

const (
	StrategyMACrossover = "ma_crossover"
	StrategyMomentum    = "momentum"
)

// Config is the on-disk description of a backtest run.
type Config struct {
	Engine     EngineConfig     `yaml:"engine" json:"engine"`
	Strategies []StrategyConfig `yaml:"strategies" json:"strategies" validate:"required,min=1,dive" jsonschema:"minItems=1"`
	Data       DataConfig       `yaml:"data" json:"data"`
	Report     ReportConfig     `yaml:"report" json:"report"`
	Log        LogConfig        `yaml:"log" json:"log"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
}

type EngineConfig struct {
	InitialCash float64 `yaml:"initial_cash" json:"initial_cash" validate:"gt=0" jsonschema:"title=Initial Cash,description=Starting cash balance,exclusiveMinimum=0"`
	FailProb    float64 `yaml:"fail_prob" json:"fail_prob" validate:"gte=0,lte=1" jsonschema:"title=Failure Probability,description=Chance that an order fails before settlement,minimum=0,maximum=1"`
	// Seed makes simulated failures reproducible. Unset means unseeded.
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty" jsonschema:"title=Seed"`
}

// StrategyConfig selects one strategy. Fields not used by Type are ignored.
type StrategyConfig struct {
	Type      string  `yaml:"type" json:"type" validate:"required,oneof=ma_crossover momentum" jsonschema:"enum=ma_crossover,enum=momentum"`
	Symbol    string  `yaml:"symbol" json:"symbol" validate:"required"`
	Quantity  int     `yaml:"quantity" json:"quantity"`
	Fast      int     `yaml:"fast,omitempty" json:"fast,omitempty" validate:"required_if=Type ma_crossover,omitempty,gt=0,ltfield=Slow"`
	Slow      int     `yaml:"slow,omitempty" json:"slow,omitempty" validate:"required_if=Type ma_crossover,omitempty,gt=0"`
	Lookback  int     `yaml:"lookback,omitempty" json:"lookback,omitempty" validate:"required_if=Type momentum,omitempty,gt=0"`
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty" validate:"gte=0"`
}

// DataConfig picks the tick source. DatabaseURL wins over CSV when set.
type DataConfig struct {
	CSV         string `yaml:"csv,omitempty" json:"csv,omitempty" jsonschema:"description=Path to a timestamp/symbol/price CSV"`
	DatabaseURL string `yaml:"database_url,omitempty" json:"database_url,omitempty" jsonschema:"description=Postgres URL for the market_ticks table"`
	Symbol      string `yaml:"symbol,omitempty" json:"symbol,omitempty"`
}

type ReportConfig struct {
	OutDir   string `yaml:"outdir" json:"outdir"`
	Separate bool   `yaml:"separate" json:"separate" jsonschema:"description=Also run each strategy on its own"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" json:"addr,omitempty" validate:"omitempty,hostname_port"`
}

// Default mirrors the command line defaults.
func Default() Config {
	return Config{
		Engine: EngineConfig{InitialCash: 100_000, FailProb: 0.01},
		Strategies: []StrategyConfig{
			{Type: StrategyMACrossover, Symbol: "AAPL", Fast: 5, Slow: 20, Quantity: 10},
			{Type: StrategyMomentum, Symbol: "AAPL", Lookback: 10, Threshold: 0.005, Quantity: 5},
		},
		Data:   DataConfig{CSV: "market_data.csv", Symbol: "AAPL"},
		Report: ReportConfig{OutDir: "artifacts"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a YAML config from path on top of Default. A strategies list
// in the file replaces the default list.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	cfg.Strategies = nil

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Strategies == nil {
		cfg.Strategies = Default().Strategies
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config as YAML.
func (c Config) Save(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Schema returns the JSON schema of the config file.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(&Config{})
	return json.MarshalIndent(schema, "", "  ")
}
