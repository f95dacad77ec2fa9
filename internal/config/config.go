// Package config holds configuration for the tabampctl developer tool.
// Values come from an optional TOML file, then a .env file, then
// TABAMP_* environment variables, highest last.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	extension "github.com/simukka/tabamp/config"
)

// Tool is the tabampctl configuration.
type Tool struct {
	// ExtensionDir is the unpacked extension directory served, watched
	// and assembled by the subcommands.
	ExtensionDir string `toml:"extension_dir"`

	// BindAddr is the devserver listen address.
	BindAddr string `toml:"bind_addr"`

	// CDPAddress and CDPPort locate a Chrome started with
	// --remote-debugging-port for the inspect subcommand.
	CDPAddress string `toml:"cdp_address"`
	CDPPort    int    `toml:"cdp_port"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	// Timings overrides the extension's timing defaults; pack emits
	// them as timings.json alongside the manifest.
	Timings extension.Timings `toml:"timings"`
}

// Default returns the configuration used when nothing is set.
func Default() Tool {
	return Tool{
		ExtensionDir: "./dist",
		BindAddr:     "127.0.0.1:8710",
		CDPAddress:   "127.0.0.1",
		CDPPort:      9222,
		LogLevel:     "info",
		Timings:      extension.Default().Timings,
	}
}

// Load builds the effective configuration. path may be empty; a missing
// file is not an error, a malformed one is.
func Load(path string) (Tool, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()

	cfg.ExtensionDir = envOr("TABAMP_EXTENSION_DIR", cfg.ExtensionDir)
	cfg.BindAddr = envOr("TABAMP_BIND_ADDR", cfg.BindAddr)
	cfg.CDPAddress = envOr("TABAMP_CDP_ADDRESS", cfg.CDPAddress)
	cfg.CDPPort = envIntOr("TABAMP_CDP_PORT", cfg.CDPPort)
	cfg.LogLevel = envOr("TABAMP_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = envOr("TABAMP_LOG_FILE", cfg.LogFile)

	return cfg, nil
}

// CDPURL returns the endpoint for the chromedp remote allocator.
func (t Tool) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", t.CDPAddress, t.CDPPort)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
