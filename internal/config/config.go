// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/trendwatch/internal/trends"
)

// Store drivers accepted by store.driver.
const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Browser BrowserConfig `mapstructure:"browser"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Lookup  LookupConfig  `mapstructure:"lookup"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	RefreshSeconds int `mapstructure:"refresh_seconds"`
	// ResetPerMinute throttles /fetch_again; zero disables the limiter.
	ResetPerMinute int `mapstructure:"reset_per_minute"`
}

// BrowserConfig configures the remote browser session.
type BrowserConfig struct {
	Headless              bool   `mapstructure:"headless"`
	NoSandbox             bool   `mapstructure:"no_sandbox"`
	Proxy                 string `mapstructure:"proxy"`
	UserAgent             string `mapstructure:"user_agent"`
	StartupTimeoutSeconds int    `mapstructure:"startup_timeout_seconds"`
	WindowWidth           int    `mapstructure:"window_width"`
	WindowHeight          int    `mapstructure:"window_height"`
}

// ScrapeConfig describes the scrape target and its locators.
type ScrapeConfig struct {
	LoginURL              string `mapstructure:"login_url"`
	Username              string `mapstructure:"username"`
	Password              string `mapstructure:"password"`
	UsernameXPath         string `mapstructure:"username_xpath"`
	PasswordXPath         string `mapstructure:"password_xpath"`
	TrendsXPath           string `mapstructure:"trends_xpath"`
	TopicSelector         string `mapstructure:"topic_selector"`
	ElementTimeoutSeconds int    `mapstructure:"element_timeout_seconds"`
	FetchTimeoutSeconds   int    `mapstructure:"fetch_timeout_seconds"`
	MaxTopics             int    `mapstructure:"max_topics"`
}

// LookupConfig configures the public address lookup.
type LookupConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StoreConfig selects and configures the durable record store.
type StoreConfig struct {
	Driver              string `mapstructure:"driver"`
	URI                 string `mapstructure:"uri"`
	Database            string `mapstructure:"database"`
	Collection          string `mapstructure:"collection"`
	Table               string `mapstructure:"table"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// legacyEnv maps config keys to the env names used by earlier deployments.
var legacyEnv = map[string]string{
	"server.port":      "PORT",
	"browser.proxy":    "PROXY",
	"scrape.username":  "TWITTER_USERNAME",
	"scrape.password":  "TWITTER_PASSWORD",
	"store.uri":        "MONGO_URI",
	"store.database":   "DB_NAME",
	"store.collection": "COLLECTION_NAME",
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRENDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "TRENDS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

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
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.refresh_seconds", 5)
	v.SetDefault("server.reset_per_minute", 0)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.startup_timeout_seconds", 30)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("scrape.login_url", "https://twitter.com/login")
	v.SetDefault("scrape.username_xpath",
		`//*[@id="layers"]/div/div/div/div/div/div/div[2]/div[2]/div/div/div[2]/div[2]/div/div/div/div[4]/label/div/div[2]/div/input`)
	v.SetDefault("scrape.password_xpath",
		`//*[@id="layers"]/div/div/div/div/div/div/div[2]/div[2]/div/div/div[2]/div[2]/div[1]/div/div/div[3]/div/label/div/div[2]/div[1]/input`)
	v.SetDefault("scrape.trends_xpath",
		`//*[@id="react-root"]/div/div/div[2]/main/div/div/div/div[2]/div/div[2]/div/div/div/div[4]/section/div`)
	v.SetDefault("scrape.topic_selector", "span")
	v.SetDefault("scrape.element_timeout_seconds", 30)
	v.SetDefault("scrape.fetch_timeout_seconds", 150)
	v.SetDefault("scrape.max_topics", 5)
	v.SetDefault("lookup.url", "https://api.ipify.org")
	v.SetDefault("lookup.timeout_seconds", 10)
	v.SetDefault("store.driver", StoreDriverMongo)
	v.SetDefault("store.uri", "mongodb://localhost:27017")
	v.SetDefault("store.database", "stirTech")
	v.SetDefault("store.collection", "twitterTrends")
	v.SetDefault("store.table", "trend_records")
	v.SetDefault("store.write_timeout_seconds", 10)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RefreshSeconds <= 0 {
		return fmt.Errorf("server.refresh_seconds must be > 0")
	}
	if c.Server.ResetPerMinute < 0 {
		return fmt.Errorf("server.reset_per_minute must be >= 0")
	}
	if c.Browser.StartupTimeoutSeconds <= 0 {
		return fmt.Errorf("browser.startup_timeout_seconds must be > 0")
	}
	if c.Scrape.LoginURL == "" {
		return fmt.Errorf("scrape.login_url is required")
	}
	if c.Scrape.ElementTimeoutSeconds <= 0 {
		return fmt.Errorf("scrape.element_timeout_seconds must be > 0")
	}
	if c.Scrape.FetchTimeoutSeconds < c.Scrape.ElementTimeoutSeconds {
		return fmt.Errorf("scrape.fetch_timeout_seconds must be >= scrape.element_timeout_seconds")
	}
	if c.Scrape.MaxTopics <= 0 || c.Scrape.MaxTopics > trends.MaxTopics {
		return fmt.Errorf("scrape.max_topics must be between 1 and %d", trends.MaxTopics)
	}
	if c.Lookup.URL == "" {
		return fmt.Errorf("lookup.url is required")
	}
	switch c.Store.Driver {
	case StoreDriverMongo:
		if c.Store.URI == "" || c.Store.Database == "" || c.Store.Collection == "" {
			return fmt.Errorf("store.uri, store.database and store.collection are required for mongo")
		}
	case StoreDriverPostgres:
		if c.Store.URI == "" {
			return fmt.Errorf("store.uri is required for postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

// ElementTimeout is the bound applied to each element wait.
func (c Config) ElementTimeout() time.Duration {
	return time.Duration(c.Scrape.ElementTimeoutSeconds) * time.Second
}

// FetchTimeout is the hard bound on one background fetch.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Scrape.FetchTimeoutSeconds) * time.Second
}

// StoreWriteTimeout bounds one persistence call.
func (c Config) StoreWriteTimeout() time.Duration {
	return time.Duration(c.Store.WriteTimeoutSeconds) * time.Second
}
