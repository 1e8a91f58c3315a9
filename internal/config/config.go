package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the client configuration, loaded from an optional YAML
// file and overridden by environment variables.
type AppConfig struct {
	BrokerWSURL string `yaml:"broker_ws_url"`
	APIBaseURL  string `yaml:"api_base_url"`
	DataDir     string `yaml:"data_dir"`

	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`

	LobbyPageSize int `yaml:"lobby_page_size"`

	// DefaultHostColor is the side offered when creating a game without
	// an explicit choice: "white", "black" or "random".
	DefaultHostColor string `yaml:"default_host_color"`
}

// Load reads CHESSMATE_CONFIG (default chessmate.yaml) if it exists,
// then applies environment overrides and validates.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		DataDir:           ".chessmate",
		ReconnectAttempts: 5,
		ReconnectDelay:    time.Second,
		LobbyPageSize:     10,
		DefaultHostColor:  "random",
	}

	path := strings.TrimSpace(os.Getenv("CHESSMATE_CONFIG"))
	if path == "" {
		path = "chessmate.yaml"
	}
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if v := strings.TrimSpace(os.Getenv("CHESSMATE_WS_URL")); v != "" {
		cfg.BrokerWSURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATE_API_URL")); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATE_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATE_RECONNECT_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ReconnectAttempts = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATE_RECONNECT_DELAY")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReconnectDelay = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATE_LOBBY_PAGE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LobbyPageSize = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHESSMATE_DEFAULT_HOST_COLOR")); v != "" {
		cfg.DefaultHostColor = v
	}

	cfg.DefaultHostColor = strings.ToLower(strings.TrimSpace(cfg.DefaultHostColor))
	switch cfg.DefaultHostColor {
	case "white", "black", "random":
	default:
		return nil, fmt.Errorf("config: invalid default host color %q", cfg.DefaultHostColor)
	}

	if cfg.BrokerWSURL == "" {
		return nil, errors.New("config: broker websocket URL is required (broker_ws_url / CHESSMATE_WS_URL)")
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("config: API base URL is required (api_base_url / CHESSMATE_API_URL)")
	}

	return cfg, nil
}
