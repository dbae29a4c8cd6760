package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultRefreshInterval = 5 * time.Minute
	defaultStatePath       = "dnsmanagersync.db"
	defaultPageSize        = 50
	defaultPersistDebounce = 2 * time.Second
	defaultSearchDebounce  = 400 * time.Millisecond
	defaultMetricsAddr     = ":9090"
)

type Config struct {
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	StatePath       string        `yaml:"statePath"`
	PageSize        int           `yaml:"pageSize"`
	PersistDebounce time.Duration `yaml:"persistDebounce"`
	SearchDebounce  time.Duration `yaml:"searchDebounce"`
	MetricsAddr     string        `yaml:"metricsAddr"`
	Log             Log           `yaml:"log"`
	Metadata        Metadata      `yaml:"metadata"`
	Accounts        []Account     `yaml:"accounts"`
}

type Log struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

type Metadata struct {
	BaseURL string `yaml:"baseUrl"`
	Token   string `yaml:"token"`
}

// Account is one configured credential set for a DNS provider. Which
// credential fields apply depends on the provider.
type Account struct {
	ID       string `yaml:"id"`
	Provider string `yaml:"provider"`

	// cloudflare
	Token string `yaml:"token"`

	// route53
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	Region          string `yaml:"region"`
}

func Load(path string) (*Config, error) {
	configFile := true
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Default().Warn("fail find config file, proceeding", "path", path)
		configFile = false
	}

	var cfg Config
	if configFile {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
		if err := f.Close(); err != nil {
			slog.Default().Warn("fail close config file", "path", path, "error", err)
		}
	}

	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.StatePath == "" {
		cfg.StatePath = defaultStatePath
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PersistDebounce == 0 {
		cfg.PersistDebounce = defaultPersistDebounce
	}
	if cfg.SearchDebounce == 0 {
		cfg.SearchDebounce = defaultSearchDebounce
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = defaultMetricsAddr
	}

	// Set log defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Env == "" {
		cfg.Log.Env = "prod"
	}

	// Override from environment if set
	if statePath := os.Getenv("DNS_MANAGER_STATE_PATH"); statePath != "" {
		cfg.StatePath = statePath
	}
	if refreshInterval := os.Getenv("DNS_MANAGER_REFRESH_INTERVAL"); refreshInterval != "" {
		if interval, err := time.ParseDuration(refreshInterval); err == nil {
			cfg.RefreshInterval = interval
		} else {
			slog.Default().Warn("fail parse refresh interval to duration from string", "interval", refreshInterval, "error", err)
		}
	}
	if pageSize := os.Getenv("DNS_MANAGER_PAGE_SIZE"); pageSize != "" {
		if size, err := strconv.Atoi(pageSize); err == nil {
			cfg.PageSize = size
		} else {
			slog.Default().Warn("fail parse page size to int from string", "page_size", pageSize, "error", err)
		}
	}
	if metaURL := os.Getenv("DNS_MANAGER_METADATA_URL"); metaURL != "" {
		cfg.Metadata.BaseURL = metaURL
	}
	if metaToken := os.Getenv("DNS_MANAGER_METADATA_TOKEN"); metaToken != "" {
		cfg.Metadata.Token = metaToken
	}
	if metricsAddr := os.Getenv("DNS_MANAGER_METRICS_ADDR"); metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if loglevel := os.Getenv("DNS_MANAGER_LOG_LEVEL"); loglevel != "" {
		cfg.Log.Level = loglevel
	}
	if logenv := os.Getenv("DNS_MANAGER_LOG_ENV"); logenv != "" {
		cfg.Log.Env = logenv
	}
	return &cfg, nil
}
