// backend/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// IngestConfig controls the download-and-ingest loop.
type IngestConfig struct {
	DownloadDir         string `yaml:"download_dir"`
	DownloadTimeoutSecs int    `yaml:"download_timeout_seconds"`
	PollIntervalMillis  int    `yaml:"poll_interval_millis"`
	BatchSize           int    `yaml:"batch_size"`
	SkipModelFilter     bool   `yaml:"skip_model_filter"`
	BlockOnUnmappedSite bool   `yaml:"block_on_unmapped_site"`
	SourceSystem        string `yaml:"source_system"`

	DownloadTimeout time.Duration `yaml:"-"` // parsed from DownloadTimeoutSecs
	PollInterval    time.Duration `yaml:"-"` // parsed from PollIntervalMillis
}

// ScrapeTarget is one vendor site the browser automation cycles through.
// The automation itself is external; the backend only needs the site name
// (the provenance tag) and whether the model filter applies to its category.
type ScrapeTarget struct {
	Site            string `yaml:"site"`
	Category        string `yaml:"category"`
	SkipModelFilter bool   `yaml:"skip_model_filter"`
}

// ValueRemap replaces one exact exported value with a canonical one, scoped
// to a (site, source system, column) triple. Some vendors emit garbled
// destination strings that have a known correction.
type ValueRemap struct {
	Site   string `yaml:"site"`
	System string `yaml:"system"`
	Column string `yaml:"column"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// ReferenceConfig points at the exports the reference tables are rebuilt
// from. URLs are optional; when empty the admin refresh endpoint expects the
// files to already exist at the local paths.
type ReferenceConfig struct {
	ModelSeriesURL  string `yaml:"model_series_url"`
	ModelSeriesPath string `yaml:"model_series_path"`
	SiteMappingURL  string `yaml:"site_mapping_url"`
	SiteMappingPath string `yaml:"site_mapping_path"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Targets   []ScrapeTarget  `yaml:"targets"`
	Remaps    []ValueRemap    `yaml:"remaps"`
	Reference ReferenceConfig `yaml:"reference"`
}

var AppConfig Config

// LoadConfig reads the YAML config and overlays DB credentials from the
// environment. A .env file is loaded first if present, so the password does
// not have to live in the YAML.
func LoadConfig(configPath string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, &AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if v := os.Getenv("DB_USER"); v != "" {
		AppConfig.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		AppConfig.Database.Password = v
	}

	applyDefaults(&AppConfig)

	if AppConfig.Ingest.DownloadDir != "" {
		if err := os.MkdirAll(AppConfig.Ingest.DownloadDir, 0755); err != nil {
			return fmt.Errorf("failed to create download directory %s: %w", AppConfig.Ingest.DownloadDir, err)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Ingest.DownloadTimeoutSecs <= 0 {
		cfg.Ingest.DownloadTimeoutSecs = 60
	}
	if cfg.Ingest.PollIntervalMillis <= 0 {
		cfg.Ingest.PollIntervalMillis = 1000
	}
	if cfg.Ingest.BatchSize <= 0 {
		cfg.Ingest.BatchSize = 5000
	}
	if cfg.Ingest.SourceSystem == "" {
		cfg.Ingest.SourceSystem = "NERP"
	}
	cfg.Ingest.DownloadTimeout = time.Duration(cfg.Ingest.DownloadTimeoutSecs) * time.Second
	cfg.Ingest.PollInterval = time.Duration(cfg.Ingest.PollIntervalMillis) * time.Millisecond
}
