package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/util"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Otel     OtelConfig     `mapstructure:"otel"`
}

// ServerConfig configures the web server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// RateLimit caps calculation requests per second across all clients; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// DatabaseConfig configures readout storage. An empty URL means the local
// database file under the XDG data directory.
type DatabaseConfig struct {
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
	Disabled  bool   `mapstructure:"disabled"`
}

// AnalysisConfig holds the Monte Carlo and decision settings.
type AnalysisConfig struct {
	SampleSize      int     `mapstructure:"sample_size"`
	BinSize         float64 `mapstructure:"bin_size"`
	CurvePoints     int     `mapstructure:"curve_points"`
	ControlSeed     uint64  `mapstructure:"control_seed"`
	ExperimentSeed  uint64  `mapstructure:"experiment_seed"`
	WinProbability  float64 `mapstructure:"win_probability"`
	LoseProbability float64 `mapstructure:"lose_probability"`
}

// OtelConfig configures the OTLP metrics exporter.
type OtelConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// Seeds returns the configured random seeds.
func (a AnalysisConfig) Seeds() domain.Seeds {
	return domain.Seeds{Control: a.ControlSeed, Experiment: a.ExperimentSeed}
}

// Bounds returns the configured decision bounds.
func (a AnalysisConfig) Bounds() domain.DecisionBounds {
	return domain.DecisionBounds{Win: a.WinProbability, Lose: a.LoseProbability}
}

// Options converts the settings into analysis options.
func (a AnalysisConfig) Options() []domain.LiftOption {
	return []domain.LiftOption{
		domain.WithSampleSize(a.SampleSize),
		domain.WithBinSize(a.BinSize),
		domain.WithCurvePoints(a.CurvePoints),
		domain.WithDecisionBounds(a.Bounds()),
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, RateLimit: 20, RateBurst: 40},
		Log:    LogConfig{Level: "info", Format: "console"},
		Analysis: AnalysisConfig{
			SampleSize:      domain.DefaultSampleSize,
			BinSize:         domain.DefaultBinSize,
			CurvePoints:     domain.DefaultCurvePoints,
			ControlSeed:     domain.DefaultSeeds.Control,
			ExperimentSeed:  domain.DefaultSeeds.Experiment,
			WinProbability:  domain.DefaultDecisionBounds.Win,
			LoseProbability: domain.DefaultDecisionBounds.Lose,
		},
	}
}

// Load reads config.yaml from the working directory or the XDG config
// directory (both optional) and BAYESAB_-prefixed environment variables on
// top of the defaults.
func Load() (*Config, error) {
	return load(viper.New(), ".", util.GetXDGConfigDir())
}

func load(v *viper.Viper, dirs ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("BAYESAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_burst", d.Server.RateBurst)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("database.url", "")
	v.SetDefault("database.auth_token", "")
	v.SetDefault("database.disabled", false)
	v.SetDefault("analysis.sample_size", d.Analysis.SampleSize)
	v.SetDefault("analysis.bin_size", d.Analysis.BinSize)
	v.SetDefault("analysis.curve_points", d.Analysis.CurvePoints)
	v.SetDefault("analysis.control_seed", d.Analysis.ControlSeed)
	v.SetDefault("analysis.experiment_seed", d.Analysis.ExperimentSeed)
	v.SetDefault("analysis.win_probability", d.Analysis.WinProbability)
	v.SetDefault("analysis.lose_probability", d.Analysis.LoseProbability)
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.insecure", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	a := cfg.Analysis
	switch {
	case a.SampleSize <= 0:
		return nil, eris.Errorf("config: analysis.sample_size must be positive (got %d)", a.SampleSize)
	case !(a.BinSize > 0):
		return nil, eris.Errorf("config: analysis.bin_size must be positive (got %g)", a.BinSize)
	case a.CurvePoints < 2:
		return nil, eris.Errorf("config: analysis.curve_points must be at least 2 (got %d)", a.CurvePoints)
	}

	if !cfg.Analysis.Bounds().Valid() {
		return nil, eris.Errorf("config: decision bounds win=%g lose=%g must satisfy 0 < lose < win < 1",
			cfg.Analysis.WinProbability, cfg.Analysis.LoseProbability)
	}

	if cfg.Server.RateLimit < 0 || (cfg.Server.RateLimit > 0 && cfg.Server.RateBurst < 1) {
		return nil, eris.Errorf("config: rate_limit %g needs a positive rate_burst (got %d)",
			cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
