package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del controller.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Feed       FeedConfig       `yaml:"feed"`
	Signal     SignalConfig     `yaml:"signal"`
	Gates      GatesConfig      `yaml:"gates"`
	Costs      CostsConfig      `yaml:"costs"`
	Symbols    []SymbolConfig   `yaml:"symbols"`
	API        APIConfig        `yaml:"api"`
	Journal    JournalConfig    `yaml:"journal"`
	Log        LogConfig        `yaml:"log"`
}

// ControllerConfig controla el bucle de decisión.
type ControllerConfig struct {
	IntervalSeconds       int     `yaml:"interval_seconds"`
	DurationMinutes       int     `yaml:"duration_minutes"` // 0 = sin límite
	ResolveTimeoutSeconds int     `yaml:"resolve_timeout_seconds"`
	RequiredCount         int     `yaml:"required_count"` // ciclos consecutivos para persistir
	MinEdge               float64 `yaml:"min_edge"`
	MinNetEdge            float64 `yaml:"min_net_edge"`
	SafetyBuffer          float64 `yaml:"safety_buffer"`
	ExitThresholdSeconds  float64 `yaml:"exit_threshold_seconds"`
	HistorySize           int     `yaml:"history_size"`
}

// FeedConfig controla el buffer de ticks y la reconexión del stream.
type FeedConfig struct {
	WindowSeconds      int `yaml:"window_seconds"` // horizonte de features
	MinSamples         int `yaml:"min_samples"`
	StaleAfterSeconds  int `yaml:"stale_after_seconds"`
	BackoffBaseSeconds int `yaml:"backoff_base_seconds"`
	BackoffMaxSeconds  int `yaml:"backoff_max_seconds"`
}

// SignalConfig son los tunables del modelo de señal.
type SignalConfig struct {
	K        float64 `yaml:"k"`
	VolFloor float64 `yaml:"vol_floor"`
	VolMult  float64 `yaml:"vol_mult"` // multiplicador sobre el vol antes del floor
	ZClamp   float64 `yaml:"z_clamp"`
	PMin     float64 `yaml:"p_min"`
	PMax     float64 `yaml:"p_max"`
}

// GatesConfig son los umbrales de las comprobaciones duras.
type GatesConfig struct {
	SanityTolerance float64 `yaml:"sanity_tolerance"`
	MaxSpread       float64 `yaml:"max_spread"`
	MinDepth        float64 `yaml:"min_depth"`
	MinTimeSeconds  float64 `yaml:"min_time_seconds"`
}

// CostsConfig parametriza el modelo de costes.
type CostsConfig struct {
	FeeRate     float64 `yaml:"fee_rate"`
	Exponent    float64 `yaml:"exponent"`
	SlipPerUnit float64 `yaml:"slip_per_unit"`
	SlipMax     float64 `yaml:"slip_max"`
}

// SymbolConfig asocia un símbolo con su stream de feed y su familia de slugs.
type SymbolConfig struct {
	Symbol     string `yaml:"symbol"`      // "BTC"
	FeedStream string `yaml:"feed_stream"` // "btcusdt"
	SlugPrefix string `yaml:"slug_prefix"` // "bitcoin-up-or-down"
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
}

// JournalConfig controla dónde se persisten los logs durables y el snapshot.
type JournalConfig struct {
	DecisionPath string `yaml:"decision_path"`
	ProposalPath string `yaml:"proposal_path"`
	SnapshotPath string `yaml:"snapshot_path"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// Sin archivo de config el binario arranca con los defaults;
		// los overrides de entorno siguen aplicando.
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve la configuración por defecto sin leer ningún archivo.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// CycleInterval devuelve el intervalo del bucle como time.Duration.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Controller.IntervalSeconds) * time.Second
}

// RunDuration devuelve la duración total del run, 0 si no hay límite.
func (c *Config) RunDuration() time.Duration {
	return time.Duration(c.Controller.DurationMinutes) * time.Minute
}

// ResolveTimeout devuelve el timeout por llamada de red dentro de un ciclo.
func (c *Config) ResolveTimeout() time.Duration {
	return time.Duration(c.Controller.ResolveTimeoutSeconds) * time.Second
}

// TrackedSymbols devuelve los símbolos en el orden del config.
func (c *Config) TrackedSymbols() []string {
	symbols := make([]string, len(c.Symbols))
	for i, s := range c.Symbols {
		symbols[i] = s.Symbol
	}
	return symbols
}

// FeedStreams devuelve el mapa símbolo → stream de Binance.
func (c *Config) FeedStreams() map[string]string {
	m := make(map[string]string, len(c.Symbols))
	for _, s := range c.Symbols {
		m[s.Symbol] = s.FeedStream
	}
	return m
}

// SlugPrefixes devuelve el mapa símbolo → prefijo de slug de Polymarket.
func (c *Config) SlugPrefixes() map[string]string {
	m := make(map[string]string, len(c.Symbols))
	for _, s := range c.Symbols {
		m[s.Symbol] = s.SlugPrefix
	}
	return m
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CLOB_BASE"); v != "" {
		cfg.API.CLOBBase = v
	}
	if v := os.Getenv("GAMMA_BASE"); v != "" {
		cfg.API.GammaBase = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Controller.IntervalSeconds <= 0 {
		cfg.Controller.IntervalSeconds = 15
	}
	if cfg.Controller.ResolveTimeoutSeconds <= 0 {
		cfg.Controller.ResolveTimeoutSeconds = 10
	}
	if cfg.Controller.RequiredCount <= 0 {
		cfg.Controller.RequiredCount = 3
	}
	if cfg.Controller.MinEdge <= 0 {
		cfg.Controller.MinEdge = 0.02
	}
	if cfg.Controller.MinNetEdge <= 0 {
		cfg.Controller.MinNetEdge = 0.01
	}
	if cfg.Controller.SafetyBuffer <= 0 {
		cfg.Controller.SafetyBuffer = 0.02
	}
	if cfg.Controller.ExitThresholdSeconds <= 0 {
		cfg.Controller.ExitThresholdSeconds = 120
	}
	if cfg.Controller.HistorySize <= 0 {
		cfg.Controller.HistorySize = 20
	}

	if cfg.Feed.WindowSeconds <= 0 {
		cfg.Feed.WindowSeconds = 60
	}
	if cfg.Feed.MinSamples <= 0 {
		cfg.Feed.MinSamples = 30
	}
	if cfg.Feed.StaleAfterSeconds <= 0 {
		cfg.Feed.StaleAfterSeconds = 20
	}
	if cfg.Feed.BackoffBaseSeconds <= 0 {
		cfg.Feed.BackoffBaseSeconds = 1
	}
	if cfg.Feed.BackoffMaxSeconds <= 0 {
		cfg.Feed.BackoffMaxSeconds = 30
	}

	if cfg.Signal.K <= 0 {
		cfg.Signal.K = 1.0
	}
	if cfg.Signal.VolFloor <= 0 {
		cfg.Signal.VolFloor = 0.0002
	}
	if cfg.Signal.VolMult <= 0 {
		cfg.Signal.VolMult = 1.0
	}
	if cfg.Signal.ZClamp <= 0 {
		cfg.Signal.ZClamp = 4.0
	}
	if cfg.Signal.PMin <= 0 {
		cfg.Signal.PMin = 0.01
	}
	if cfg.Signal.PMax <= 0 {
		cfg.Signal.PMax = 0.99
	}

	if cfg.Gates.SanityTolerance <= 0 {
		cfg.Gates.SanityTolerance = 0.05
	}
	if cfg.Gates.MaxSpread <= 0 {
		cfg.Gates.MaxSpread = 0.10
	}
	if cfg.Gates.MinDepth <= 0 {
		cfg.Gates.MinDepth = 50
	}
	if cfg.Gates.MinTimeSeconds <= 0 {
		cfg.Gates.MinTimeSeconds = 60
	}

	if cfg.Costs.FeeRate <= 0 {
		cfg.Costs.FeeRate = 0.25
	}
	if cfg.Costs.Exponent <= 0 {
		cfg.Costs.Exponent = 1.0
	}
	if cfg.Costs.SlipPerUnit <= 0 {
		cfg.Costs.SlipPerUnit = 0.25
	}
	if cfg.Costs.SlipMax <= 0 {
		cfg.Costs.SlipMax = 0.01
	}

	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []SymbolConfig{
			{Symbol: "BTC", FeedStream: "btcusdt", SlugPrefix: "bitcoin-up-or-down"},
			{Symbol: "ETH", FeedStream: "ethusdt", SlugPrefix: "ethereum-up-or-down"},
		}
	}

	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}

	if cfg.Journal.DecisionPath == "" {
		cfg.Journal.DecisionPath = "data/decisions.jsonl"
	}
	if cfg.Journal.ProposalPath == "" {
		cfg.Journal.ProposalPath = "data/proposals.jsonl"
	}
	if cfg.Journal.SnapshotPath == "" {
		cfg.Journal.SnapshotPath = "data/state.json"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
