package config

import (
	"strings"
	"time"

	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	DatabasePath      string         `mapstructure:"database_path"`
	Log               logging.Config `mapstructure:"log"`
	MetricsPort       string         `mapstructure:"metrics_port"`
	ListenAddr        string         `mapstructure:"listen_addr"`
	Catalog           CatalogConfig  `mapstructure:"catalog"`
	Proxy             *ProxyConfig   `mapstructure:"proxy"`
	Selectors         Selectors      `mapstructure:"selectors"`
	LazyMargin        int            `mapstructure:"lazy_margin"`
	RetryDelay        time.Duration  `mapstructure:"retry_delay"`
	UnicodeShortcodes bool           `mapstructure:"unicode_shortcodes"`
}

// CatalogConfig controls how the emote catalog is queried.
type CatalogConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	Categories        []string      `mapstructure:"categories"`
	MaxPages          int           `mapstructure:"max_pages"` // per category, page 1 included
	PerPage           int           `mapstructure:"per_page"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"` // serve mode only, 0 disables
}

// ProxyConfig describes an optional outbound proxy for catalog requests.
type ProxyConfig struct {
	Type     string `mapstructure:"type"` // http, https, socks5
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Selectors locate the host chat structure inside a document.
type Selectors struct {
	Container string `mapstructure:"container"`
	Message   string `mapstructure:"message"`
	Text      string `mapstructure:"text"`
	Input     string `mapstructure:"input"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*AppConfig, error) {
	var cfg AppConfig

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.lounge-emotes")
		v.AddConfigPath("/etc/lounge-emotes/")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("LOUNGE_EMOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Proxy != nil && cfg.Proxy.Address == "" {
		cfg.Proxy = nil
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *AppConfig {
	v := viper.New()
	setDefaults(v)
	var cfg AppConfig
	// Defaults only contain plain values, decoding cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "./lounge_emotes.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.format", "pretty")
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("metrics_port", ":9090")
	v.SetDefault("listen_addr", ":8080")

	v.SetDefault("catalog.endpoint", "https://7tv.io/v4/gql")
	v.SetDefault("catalog.categories", []string{
		"TOP_ALL_TIME",
		"TRENDING_WEEKLY",
		"TRENDING_MONTHLY",
		"TRENDING_DAILY",
		"UPLOAD_DATE",
	})
	v.SetDefault("catalog.max_pages", 2)
	v.SetDefault("catalog.per_page", 150)
	v.SetDefault("catalog.requests_per_second", 10.0)
	v.SetDefault("catalog.burst", 10)
	v.SetDefault("catalog.timeout", 30*time.Second)
	v.SetDefault("catalog.user_agent", "lounge-emotes/1.0")
	v.SetDefault("catalog.refresh_interval", 6*time.Hour)

	v.SetDefault("selectors.container", ".chat-content > .chat > .messages")
	v.SetDefault("selectors.message", `div[id^="msg-"]`)
	v.SetDefault("selectors.text", "span.content")
	v.SetDefault("selectors.input", "#input")

	v.SetDefault("lazy_margin", 250)
	v.SetDefault("retry_delay", 5*time.Second)
	v.SetDefault("unicode_shortcodes", false)
}
