package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Assign   AssignConfig   `yaml:"assign" mapstructure:"assign"`
	Coverage CoverageConfig `yaml:"coverage" mapstructure:"coverage"`
	Import   ImportConfig   `yaml:"import" mapstructure:"import"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// AssignConfig configures district assignment runs.
type AssignConfig struct {
	MaxConcurrentCities int `yaml:"max_concurrent_cities" mapstructure:"max_concurrent_cities"`
}

// CoverageConfig configures coverage analysis defaults.
type CoverageConfig struct {
	DefaultRadiusMeters float64 `yaml:"default_radius_meters" mapstructure:"default_radius_meters"`
}

// ImportConfig configures default CSV column names for point imports.
type ImportConfig struct {
	NameColumn string `yaml:"name_column" mapstructure:"name_column"`
	LatColumn  string `yaml:"lat_column" mapstructure:"lat_column"`
	LngColumn  string `yaml:"lng_column" mapstructure:"lng_column"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STADTATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "stadtatlas.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("assign.max_concurrent_cities", 4)
	v.SetDefault("coverage.default_radius_meters", 500)
	v.SetDefault("import.name_column", "name")
	v.SetDefault("import.lat_column", "lat")
	v.SetDefault("import.lng_column", "lng")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command depends on before it runs.
func (c *Config) Validate() error {
	var problems []string
	if c.Store.Path == "" {
		problems = append(problems, "store.path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Assign.MaxConcurrentCities < 1 || c.Assign.MaxConcurrentCities > 32 {
		problems = append(problems, "assign.max_concurrent_cities must be between 1 and 32")
	}
	if c.Coverage.DefaultRadiusMeters < 0 {
		problems = append(problems, "coverage.default_radius_meters must be >= 0")
	}
	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
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
