package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/fabianabeda/datadriven-back/internal/domain"
)

const (
	// ConfigPathEnvVar points at an optional YAML config file.
	ConfigPathEnvVar  = "DATADRIVEN_CONFIG"
	defaultConfigPath = "config.yaml"
	envPrefix         = "DATADRIVEN_"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	MongoDB MongoConfig   `koanf:"mongodb"`
	Log     LogConfig     `koanf:"log"`
	Reports ReportsConfig `koanf:"reports"`
	Breaker BreakerConfig `koanf:"breaker"`
	CORS    CORSConfig    `koanf:"cors"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	GinMode         string        `koanf:"gin_mode" validate:"omitempty,oneof=debug release test"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type MongoConfig struct {
	URL            string        `koanf:"url" validate:"required"`
	Database       string        `koanf:"database" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	QueryTimeout   time.Duration `koanf:"query_timeout"`
	MaxPoolSize    uint64        `koanf:"max_pool_size"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

type ReportsConfig struct {
	Source        string              `koanf:"source" validate:"oneof=normalized unified"`
	Years         []int               `koanf:"years" validate:"min=1,dive,gt=0"`
	YearBreakdown YearBreakdownConfig `koanf:"year_breakdown"`
}

type YearBreakdownConfig struct {
	RestrictYears bool `koanf:"restrict_years"`
	MinCount      int  `koanf:"min_count" validate:"min=0"`
}

type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3333",
			ReadTimeout:     20 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		MongoDB: MongoConfig{
			Database:       "licitacao_db",
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   30 * time.Second,
			MaxPoolSize:    50,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Reports: ReportsConfig{
			Source: string(domain.SourceUnified),
			Years:  []int{2023, 2024},
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
		},
	}
}

// Unprefixed variables kept for deployments that predate the DATADRIVEN_ prefix.
var legacyEnv = map[string]string{
	"MONGODB_URL":          "mongodb.url",
	"MONGODB_DATABASE":     "mongodb.database",
	"GIN_MODE":             "server.gin_mode",
	"CORS_ALLOWED_ORIGINS": "cors.allowed_origins",
}

// Comma separated when coming from the environment.
var sliceKeys = []string{"cors.allowed_origins", "reports.years"}

// Load layers defaults, the optional YAML file and the environment, then validates.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := configPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", legacyTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	// DATADRIVEN_SERVER_ADDR -> server.addr, DATADRIVEN_REPORTS_YEAR_BREAKDOWN_MIN_COUNT -> reports.year_breakdown.min_count
	if err := k.Load(env.Provider(envPrefix, ".", prefixedTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	for _, key := range sliceKeys {
		if raw, ok := k.Get(key).(string); ok {
			if err := k.Set(key, splitList(raw)); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", key, err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ReportOptions converts the reports section for the domain layer.
func (c *Config) ReportOptions() domain.ReportOptions {
	return domain.ReportOptions{
		Years: append([]int(nil), c.Reports.Years...),
		YearBreakdown: domain.YearBreakdownPolicy{
			RestrictYears: c.Reports.YearBreakdown.RestrictYears,
			MinCount:      c.Reports.YearBreakdown.MinCount,
		},
	}
}

func configPath() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

func legacyTransform(key string) string {
	return legacyEnv[key]
}

// Env section prefixes and their koanf paths. Longer prefixes come first;
// underscores after the section belong to the key.
var sections = []struct{ env, path string }{
	{"reports_year_breakdown_", "reports.year_breakdown."},
	{"reports_", "reports."},
	{"server_", "server."},
	{"mongodb_", "mongodb."},
	{"log_", "log."},
	{"breaker_", "breaker."},
	{"cors_", "cors."},
}

func prefixedTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s.env); ok && rest != "" {
			return s.path + rest
		}
	}
	return ""
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
