package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"signal_go/internal/signal"
)

// Config holds all application settings. Values missing from the YAML file
// fall back to defaults so the process runs with no config file at all;
// deploy-time fields can be overridden through environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Stream struct {
		WSURL               string   `yaml:"ws_url"`
		Coins               []string `yaml:"coins"`
		HeartbeatSec        int      `yaml:"heartbeat_sec"`
		HeartbeatTimeoutSec int      `yaml:"heartbeat_timeout_sec"`
		BackoffInitialSec   float64  `yaml:"backoff_initial_sec"`
		BackoffMaxSec       float64  `yaml:"backoff_max_sec"`
	} `yaml:"stream"`

	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`

	Signal struct {
		WindowCap  int                `yaml:"window_cap"`
		Thresholds *signal.Thresholds `yaml:"thresholds"`
	} `yaml:"signal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file. A missing file is not an
// error: defaults plus environment overrides apply.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// run on defaults
	default:
		return nil, err
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "signal_go"
	}
	if c.Stream.WSURL == "" {
		c.Stream.WSURL = "wss://api.hyperliquid.xyz/ws"
	}
	if len(c.Stream.Coins) == 0 {
		c.Stream.Coins = []string{"BTC", "ETH", "SOL"}
	}
	if c.Stream.HeartbeatSec <= 0 {
		c.Stream.HeartbeatSec = 20
	}
	if c.Stream.HeartbeatTimeoutSec <= 0 {
		c.Stream.HeartbeatTimeoutSec = 10
	}
	if c.Stream.BackoffInitialSec <= 0 {
		c.Stream.BackoffInitialSec = 1.5
	}
	if c.Stream.BackoffMaxSec <= 0 {
		c.Stream.BackoffMaxSec = 30.0
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1:8000"
	}
	if c.Signal.WindowCap <= 0 {
		c.Signal.WindowCap = 120
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	for i, coin := range c.Stream.Coins {
		c.Stream.Coins[i] = strings.ToUpper(strings.TrimSpace(coin))
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !hasPrefix(c.Stream.WSURL, "ws://") && !hasPrefix(c.Stream.WSURL, "wss://") {
		return fmt.Errorf("invalid stream WS URL: %s", c.Stream.WSURL)
	}
	if len(c.Stream.Coins) == 0 {
		return fmt.Errorf("at least one coin is required")
	}
	if c.Stream.BackoffInitialSec > c.Stream.BackoffMaxSec {
		return fmt.Errorf("backoff initial %.2fs exceeds max %.2fs",
			c.Stream.BackoffInitialSec, c.Stream.BackoffMaxSec)
	}
	return nil
}

// Thresholds returns the classifier tuning, defaulted when not configured.
func (c *Config) Thresholds() signal.Thresholds {
	if c.Signal.Thresholds != nil {
		return *c.Signal.Thresholds
	}
	return signal.DefaultThresholds()
}

// HeartbeatInterval returns the heartbeat period.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Stream.HeartbeatSec) * time.Second
}

// HeartbeatTimeout returns how long a heartbeat may go unacknowledged.
func (c *Config) HeartbeatTimeout() time.Duration {
	return time.Duration(c.Stream.HeartbeatTimeoutSec) * time.Second
}

// BackoffInitial returns the first reconnect delay.
func (c *Config) BackoffInitial() time.Duration {
	return time.Duration(c.Stream.BackoffInitialSec * float64(time.Second))
}

// BackoffMax returns the reconnect delay cap.
func (c *Config) BackoffMax() time.Duration {
	return time.Duration(c.Stream.BackoffMaxSec * float64(time.Second))
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv applies environment variables over the file values.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("SIGNAL_WS_URL"); url != "" {
		cfg.Stream.WSURL = url
	}
	if coins := os.Getenv("SIGNAL_COINS"); coins != "" {
		parts := strings.Split(coins, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			cfg.Stream.Coins = out
		}
	}
	if addr := os.Getenv("SIGNAL_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if level := os.Getenv("SIGNAL_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
