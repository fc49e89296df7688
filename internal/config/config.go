package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mgreer/custodian/internal/domain/similarity"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Transport  TransportConfig  `yaml:"transport"`
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Thresholds ThresholdConfig  `yaml:"thresholds"`
	Report     ReportConfig     `yaml:"report"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SimilarityConfig struct {
	Weights similarity.Weights `yaml:"weights"`
}

type ThresholdConfig struct {
	Duplicate   float64 `yaml:"duplicate"`
	FAQMatch    float64 `yaml:"faq_match"`
	NeglectDays int     `yaml:"neglect_days"`
}

type ReportConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	IntelPath       string `yaml:"intel_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "custodian.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Similarity: SimilarityConfig{
			Weights: similarity.DefaultWeights(),
		},
		Thresholds: ThresholdConfig{
			Duplicate:   0.6,
			FAQMatch:    0.5,
			NeglectDays: 7,
		},
		Report: ReportConfig{
			IntervalSeconds: 604800, // weekly
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables, then validates it. Invalid values are fatal at startup;
// nothing else in the service treats configuration as recoverable.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CUSTODIAN_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("CUSTODIAN_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CUSTODIAN_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CUSTODIAN_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("CUSTODIAN_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("CUSTODIAN_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("CUSTODIAN_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values.
func (c Config) Validate() error {
	if c.Transport.Mode != "stdio" && c.Transport.Mode != "http" {
		return fmt.Errorf("transport.mode must be \"stdio\" or \"http\" (got %q)", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	if err := c.Similarity.Weights.Validate(); err != nil {
		return err
	}
	if c.Thresholds.Duplicate < 0 || c.Thresholds.Duplicate > 1 {
		return fmt.Errorf("thresholds.duplicate must be in [0,1] (got %v)", c.Thresholds.Duplicate)
	}
	if c.Thresholds.FAQMatch < 0 || c.Thresholds.FAQMatch > 1 {
		return fmt.Errorf("thresholds.faq_match must be in [0,1] (got %v)", c.Thresholds.FAQMatch)
	}
	if c.Thresholds.NeglectDays <= 0 {
		return fmt.Errorf("thresholds.neglect_days must be positive (got %d)", c.Thresholds.NeglectDays)
	}
	if c.Report.IntervalSeconds <= 0 {
		return fmt.Errorf("report.interval_seconds must be positive (got %d)", c.Report.IntervalSeconds)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
