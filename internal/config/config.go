package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the boundary datasets. The format is chosen by
// extension: .shp, .geojson, or record JSON.
type DataConfig struct {
	DongPath string `yaml:"dong_path" mapstructure:"dong_path"`
	GuPath   string `yaml:"gu_path" mapstructure:"gu_path"`
}

// MapConfig configures the initial camera and query jump levels.
type MapConfig struct {
	CenterLat       float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLng       float64 `yaml:"center_lng" mapstructure:"center_lng"`
	Level           int     `yaml:"level" mapstructure:"level"`
	MinLevel        int     `yaml:"min_level" mapstructure:"min_level"`
	MaxLevel        int     `yaml:"max_level" mapstructure:"max_level"`
	DongQueryLevel  int     `yaml:"dong_query_level" mapstructure:"dong_query_level"`
	GuQueryLevel    int     `yaml:"gu_query_level" mapstructure:"gu_query_level"`
	LoadTimeoutSecs int     `yaml:"load_timeout_secs" mapstructure:"load_timeout_secs"`
	LoadAttempts    int     `yaml:"load_attempts" mapstructure:"load_attempts"`
	LoadBackoffMs   int     `yaml:"load_backoff_ms" mapstructure:"load_backoff_ms"`
}

// LoadTimeout returns the engine load timeout.
func (m MapConfig) LoadTimeout() time.Duration {
	return time.Duration(m.LoadTimeoutSecs) * time.Second
}

// LoadBackoff returns the delay before the first engine load retry.
func (m MapConfig) LoadBackoff() time.Duration {
	return time.Duration(m.LoadBackoffMs) * time.Millisecond
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	MaxSessions    int      `yaml:"max_sessions" mapstructure:"max_sessions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. Variables in an
// optional .env file are exported first; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISTRICTMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dong_path", "data/dong.json")
	v.SetDefault("data.gu_path", "data/gu.json")
	v.SetDefault("map.center_lat", 37.532527)
	v.SetDefault("map.center_lng", 126.99049)
	v.SetDefault("map.level", 6)
	v.SetDefault("map.min_level", 1)
	v.SetDefault("map.max_level", 14)
	v.SetDefault("map.dong_query_level", 5)
	v.SetDefault("map.gu_query_level", 7)
	v.SetDefault("map.load_timeout_secs", 10)
	v.SetDefault("map.load_attempts", 3)
	v.SetDefault("map.load_backoff_ms", 250)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.max_sessions", 500)
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

// Validate checks the settings a command needs. Mode is "serve" for the HTTP
// server or "data" for commands that only read the datasets.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Data.DongPath == "" {
		problems = append(problems, "data.dong_path is required")
	}
	if c.Data.GuPath == "" {
		problems = append(problems, "data.gu_path is required")
	}

	switch mode {
	case "data":
	case "serve":
		problems = append(problems, c.Map.problems()...)
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS < 0 {
			problems = append(problems, "server.rate_limit_rps must be >= 0")
		}
		if c.Server.MaxSessions < 0 {
			problems = append(problems, "server.max_sessions must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (m MapConfig) problems() []string {
	var p []string
	if m.MinLevel < 1 || m.MaxLevel < m.MinLevel {
		p = append(p, fmt.Sprintf("map levels must satisfy 1 <= min_level <= max_level (got %d, %d)", m.MinLevel, m.MaxLevel))
		return p
	}
	for name, lvl := range map[string]int{
		"map.level":            m.Level,
		"map.dong_query_level": m.DongQueryLevel,
		"map.gu_query_level":   m.GuQueryLevel,
	} {
		if lvl < m.MinLevel || lvl > m.MaxLevel {
			p = append(p, fmt.Sprintf("%s must be between %d and %d", name, m.MinLevel, m.MaxLevel))
		}
	}
	if m.CenterLat < -90 || m.CenterLat > 90 || m.CenterLng < -180 || m.CenterLng > 180 {
		p = append(p, "map center is out of range")
	}
	if m.LoadTimeoutSecs <= 0 {
		p = append(p, "map.load_timeout_secs must be > 0")
	}
	if m.LoadAttempts < 1 {
		p = append(p, "map.load_attempts must be >= 1")
	}
	return p
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
