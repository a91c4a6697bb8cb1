package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Telegram struct {
		APIID       int      `yaml:"api_id"`
		APIHash     string   `yaml:"api_hash"`
		Phone       string   `yaml:"phone"`
		SessionFile string   `yaml:"session_file"`
		Channels    []string `yaml:"channels"`
		// MessageLimit caps how many messages are fetched per channel per run.
		MessageLimit int `yaml:"message_limit"`
	} `yaml:"telegram"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Scraper struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"scraper"`
	Detector struct {
		URL                 string  `yaml:"url"`
		Enabled             bool    `yaml:"enabled"`
		ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	} `yaml:"detector"`
	Pipeline struct {
		// Interval between runs, e.g. "24h". Empty means run once and exit.
		Interval string `yaml:"interval"`
	} `yaml:"pipeline"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	applyDefaults(config)

	return config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Telegram.SessionFile == "" {
		cfg.Telegram.SessionFile = "session.json"
	}
	if cfg.Telegram.MessageLimit <= 0 {
		cfg.Telegram.MessageLimit = 1500
	}
	if cfg.Scraper.DataDir == "" {
		cfg.Scraper.DataDir = "data/raw"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8000"
	}
}
