// Package config loads nodelyzer configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/nodelyzer/pkg/advisor"
	"github.com/dd0wney/nodelyzer/pkg/validation"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var drivers = []string{DriverMemory, DriverFile, DriverSQLite, DriverPostgres}

// Config is the full process configuration
type Config struct {
	Server  ServerConfig       `yaml:"server"`
	Store   StoreConfig        `yaml:"store"`
	Advisor advisor.Thresholds `yaml:"advisor"`
	Events  EventsConfig       `yaml:"events"`
	Source  SourceConfig       `yaml:"source"`
	Logging LoggingConfig      `yaml:"logging"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// StoreConfig selects the analysis record backend
type StoreConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	DataDir string `yaml:"data_dir"`
}

// EventsConfig enables the NNG publisher when NNGAddr is set
type EventsConfig struct {
	NNGAddr string `yaml:"nng_addr"`
}

// SourceConfig tunes remote dump loading
type SourceConfig struct {
	MaxBytes   int64  `yaml:"max_bytes"`
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`
	// static credentials for S3-compatible stores; empty uses the AWS chain
	S3AccessKeyID string        `yaml:"s3_access_key_id"`
	S3SecretKey   string        `yaml:"s3_secret_key"`
	Timeout       time.Duration `yaml:"timeout"`
}

// LoggingConfig sets the root logger
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a config that runs with no file and no environment
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    32 << 20,
		},
		Store:   StoreConfig{Driver: DriverMemory, DataDir: "./data/nodelyzer"},
		Advisor: advisor.DefaultThresholds(),
		Source: SourceConfig{
			MaxBytes: 64 << 20,
			Timeout:  30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path (optional) over the defaults, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up via lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("NODELYZER_ADDR", &c.Server.Addr)
	str("NODELYZER_STORE_DRIVER", &c.Store.Driver)
	str("NODELYZER_DATA_DIR", &c.Store.DataDir)
	str("NODELYZER_NNG_ADDR", &c.Events.NNGAddr)
	str("NODELYZER_S3_ENDPOINT", &c.Source.S3Endpoint)
	str("AWS_REGION", &c.Source.S3Region)
	str("NODELYZER_S3_ACCESS_KEY_ID", &c.Source.S3AccessKeyID)
	str("NODELYZER_S3_SECRET_KEY", &c.Source.S3SecretKey)
	str("LOG_LEVEL", &c.Logging.Level)

	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Store.DSN = v
		if c.Store.Driver == DriverMemory {
			c.Store.Driver = DriverPostgres
		}
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.Server.CORSOrigins = origins
	}
	if v, ok := lookup("NODELYZER_MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("NODELYZER_MAX_BODY_BYTES: %w", err)
		}
		c.Server.MaxBodyBytes = n
	}
	return nil
}

// Validate checks every section and reports all problems at once
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("Config")

	cv.HostPort("server.addr", c.Server.Addr).
		RangeDuration("server.read_timeout", c.Server.ReadTimeout, time.Second, 10*time.Minute).
		RangeDuration("server.write_timeout", c.Server.WriteTimeout, time.Second, 30*time.Minute).
		RangeDuration("server.shutdown_timeout", c.Server.ShutdownTimeout, 0, 5*time.Minute).
		PositiveInt64("server.max_body_bytes", c.Server.MaxBodyBytes)

	cv.OneOf("store.driver", c.Store.Driver, drivers).
		When(c.Store.Driver == DriverFile || c.Store.Driver == DriverSQLite, func(v *validation.ConfigValidator) {
			v.Required("store.data_dir", c.Store.DataDir)
		}).
		When(c.Store.Driver == DriverPostgres, func(v *validation.ConfigValidator) {
			v.Required("store.dsn", c.Store.DSN)
		})

	th := c.Advisor
	cv.RangeFloat("advisor.loss_warn_pct", th.LossWarnPct, 0, 100).
		RangeFloat("advisor.max_gini", th.MaxGini, 0, 1).
		RangeFloat("advisor.max_country_share", th.MaxCountryShare, 0, 1).
		RangeFloat("advisor.max_provider_share", th.MaxProviderShare, 0, 1).
		Positive("advisor.min_nakamoto", th.MinNakamoto)

	cv.When(c.Events.NNGAddr != "", func(v *validation.ConfigValidator) {
		v.URL("events.nng_addr", c.Events.NNGAddr, "tcp", "ipc", "inproc")
	})

	cv.PositiveInt64("source.max_bytes", c.Source.MaxBytes).
		When(c.Source.S3Endpoint != "", func(v *validation.ConfigValidator) {
			v.URL("source.s3_endpoint", c.Source.S3Endpoint, "http", "https")
		}).
		When(c.Source.S3AccessKeyID != "", func(v *validation.ConfigValidator) {
			v.Required("source.s3_secret_key", c.Source.S3SecretKey)
		})

	cv.OneOf("logging.level", strings.ToUpper(strings.TrimSpace(c.Logging.Level)), []string{"DEBUG", "INFO", "WARN", "WARNING", "ERROR"})

	return cv.Validate()
}
