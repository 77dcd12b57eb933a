// Package config loads and validates driver configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobwire/boardcrawler/internal/htmldoc"
	"github.com/jobwire/boardcrawler/internal/logging"
	"github.com/jobwire/boardcrawler/internal/scraper"
)

// Config captures everything a driver binary needs to run one site.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	DB        DBConfig        `mapstructure:"db"`
	Logging   logging.Config  `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Snapshots SnapshotConfig  `mapstructure:"snapshots"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
}

// SiteConfig describes the target board and crawl behavior.
type SiteConfig struct {
	Name               string   `mapstructure:"name"`
	BaseURL            string   `mapstructure:"base_url"`
	Categories         []string `mapstructure:"categories"`
	LinksQuery         string   `mapstructure:"links_query"`
	ValidationQuery    string   `mapstructure:"validation_query"`
	PageURLTemplate    string   `mapstructure:"page_url"`
	PostingURLTemplate string   `mapstructure:"posting_url"`
	Proxies            []string `mapstructure:"proxies"`
	WaitMinSeconds     int      `mapstructure:"wait_min_seconds"`
	WaitMaxSeconds     int      `mapstructure:"wait_max_seconds"`
	SkipAfterFailed    int      `mapstructure:"skip_after_failed"`
	LookbackDays       int      `mapstructure:"lookback_days"`
}

// ExtractorConfig maps posting fields to XPath expressions.
type ExtractorConfig struct {
	Fields   map[string]string `mapstructure:"fields"`
	Required []string          `mapstructure:"required"`
}

// HTTPConfig controls the transport layer.
type HTTPConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DBConfig controls posting persistence. An empty DSN selects the in-memory
// store, useful for selector dry runs.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// MetricsConfig enables the ops HTTP endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// SnapshotConfig selects where invalid-page snapshots land. Empty disables
// snapshotting; a gs://bucket value selects GCS, anything else is a local
// directory.
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// PubSubConfig enables posting events when both values are set.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// Load builds a Config from the given file plus environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOARDCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.wait_min_seconds", 4)
	v.SetDefault("site.wait_max_seconds", 8)
	v.SetDefault("site.skip_after_failed", 5)
	v.SetDefault("site.lookback_days", 7)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
}

// Validate enforces required values beyond what scraper.Config checks.
func (c Config) Validate() error {
	if err := c.ScraperConfig().Validate(); err != nil {
		return err
	}
	if err := htmldoc.CheckExpr(c.Site.LinksQuery); err != nil {
		return fmt.Errorf("site.links_query: %w", err)
	}
	if err := htmldoc.CheckExpr(c.Site.ValidationQuery); err != nil {
		return fmt.Errorf("site.validation_query: %w", err)
	}
	if len(c.Extractor.Fields) == 0 {
		return fmt.Errorf("extractor.fields must define at least one field")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if (c.PubSub.ProjectID == "") != (c.PubSub.TopicID == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_id must be set together")
	}
	return nil
}

// ScraperConfig converts the site section into the engine's configuration.
func (c Config) ScraperConfig() scraper.Config {
	return scraper.Config{
		Site:               c.Site.Name,
		BaseURL:            c.Site.BaseURL,
		Categories:         c.Site.Categories,
		LinksQuery:         c.Site.LinksQuery,
		ValidationQuery:    c.Site.ValidationQuery,
		PageURLTemplate:    c.Site.PageURLTemplate,
		PostingURLTemplate: c.Site.PostingURLTemplate,
		ProxyURLs:          c.Site.Proxies,
		WaitWindow: scraper.Window{
			Min: time.Duration(c.Site.WaitMinSeconds) * time.Second,
			Max: time.Duration(c.Site.WaitMaxSeconds) * time.Second,
		},
		SkipAfterFailed: c.Site.SkipAfterFailed,
		LookbackDays:    c.Site.LookbackDays,
	}
}
