package crawl

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dreamerjackson/ghcrawler/engine"
	"github.com/dreamerjackson/ghcrawler/limiter"
	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
)

type Config struct {
	LogLevel string
	LogFile  string

	Timeout   time.Duration
	Workers   int
	Retries   int
	UserAgent string
	Limits    []limiter.Config

	StorageType string
	SQLURL      string
	Table       string
	BatchCount  int

	MetricsAddr string
}

// LoadConfig reads a toml file. A missing file leaves every key at its default.
func LoadConfig(path string) (Config, error) {
	enc := toml.NewEncoder()
	cfg, err := config.NewConfig(config.WithReader(json.NewReader(reader.WithEncoder(enc))))
	if err != nil {
		return Config{}, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			err = cfg.Load(file.NewSource(
				file.WithPath(path),
				source.WithEncoder(enc),
			))
			if err != nil {
				return Config{}, fmt.Errorf("load config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	c := Config{
		LogLevel:    cfg.Get("logLevel").String("info"),
		LogFile:     cfg.Get("logFile").String(""),
		Timeout:     time.Duration(cfg.Get("fetcher", "timeout").Int(5000)) * time.Millisecond,
		Workers:     cfg.Get("fetcher", "workers").Int(engine.DefaultWorkCount),
		Retries:     cfg.Get("fetcher", "retries").Int(0),
		UserAgent:   cfg.Get("fetcher", "userAgent").String(""),
		StorageType: cfg.Get("storage", "type").String(""),
		SQLURL:      cfg.Get("storage", "sqlURL").String(""),
		Table:       cfg.Get("storage", "table").String(""),
		BatchCount:  cfg.Get("storage", "batchCount").Int(100),
		MetricsAddr: cfg.Get("metrics", "addr").String(""),
	}

	if err := cfg.Get("fetcher", "limits").Scan(&c.Limits); err != nil {
		return Config{}, fmt.Errorf("fetcher.limits: %w", err)
	}

	return c, nil
}
