package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Feed     FeedConfig     `mapstructure:"feed"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type FeedConfig struct {
	REST RESTConfig `mapstructure:"rest"`
	WS   WSConfig   `mapstructure:"ws"`
}

type RESTConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WSConfig struct {
	URL           string        `mapstructure:"url"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"` // fixed backoff between reconnect attempts
}

// ChartConfig controls the headless chart engine: canvas size, the cadence of
// frame composition, and the symbol to preselect at startup (the deep-link
// parameter of the web UI, expressed as config).
type ChartConfig struct {
	Symbol        string        `mapstructure:"symbol"`         // optional startup symbol
	Width         int           `mapstructure:"width"`          // canvas width in pixels
	Height        int           `mapstructure:"height"`         // canvas height in pixels
	FrameInterval time.Duration `mapstructure:"frame_interval"` // how often a frame is composed
	StatsWindow   int           `mapstructure:"stats_window"`   // rolling window for volume stats (bars)
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	// TODO: env path
	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	// Support environment variables with dot notation (e.g., FEED_WS_URL, CHART_SYMBOL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("chart.width", 1600)
	v.SetDefault("chart.height", 900)
	v.SetDefault("chart.frame_interval", "250ms")
	v.SetDefault("chart.stats_window", 200)
	v.SetDefault("feed.ws.reconnect_wait", "2s")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
