// Package config collects the tunable timings and limits shared by the
// extension contexts. Values are milliseconds because they feed
// setTimeout/setInterval directly. The packer can emit these as
// timings.json so a build can override them without recompiling.
package config

import "encoding/json"

// Timings holds every debounce, sweep and retry interval in one place.
type Timings struct {
	// Background side.
	RemovalDebounceMs int `json:"removalDebounceMs"` // silent inactive tab -> removal from the audio list
	NotifyDebounceMs  int `json:"notifyDebounceMs"`  // coalescing window for audioStatusChanged broadcasts
	SweepIntervalMs   int `json:"sweepIntervalMs"`   // reconcile records against chrome.tabs.query

	// Content side.
	RescanIntervalMs   int `json:"rescanIntervalMs"`   // periodic media element scan
	NavigationPollMs   int `json:"navigationPollMs"`   // SPA route change detection via href compare
	AutoplayRetryMs    int `json:"autoplayRetryMs"`    // interval between context resume attempts
	AutoplayWindowMs   int `json:"autoplayWindowMs"`   // how long resume attempts keep running
	NotifyAudioDelayMs int `json:"notifyAudioDelayMs"` // settle delay before reporting discovered media
}

// Limits bounds unbounded page content.
type Limits struct {
	// MaxTrackedElements caps how many media elements one page may bind.
	// Hostile pages can create elements in a loop; beyond the cap new
	// elements are ignored rather than growing the binding map forever.
	MaxTrackedElements int `json:"maxTrackedElements"`
}

// Config is the root of the shared extension configuration.
type Config struct {
	Timings Timings `json:"timings"`
	Limits  Limits  `json:"limits"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timings: Timings{
			RemovalDebounceMs:  5000,
			NotifyDebounceMs:   200,
			SweepIntervalMs:    30000,
			RescanIntervalMs:   10000,
			NavigationPollMs:   1000,
			AutoplayRetryMs:    3000,
			AutoplayWindowMs:   120000,
			NotifyAudioDelayMs: 500,
		},
		Limits: Limits{
			MaxTrackedElements: 64,
		},
	}
}

// Parse reads a JSON override (timings.json) on top of the defaults.
// Unknown fields are ignored; a broken file returns the defaults along
// with the error so callers can keep running.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}
