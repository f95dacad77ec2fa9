// Package pack assembles the unpacked extension directory: the
// manifest, the popup page and the timing overrides, next to the
// gopherjs-compiled scripts.
package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	extension "github.com/simukka/tabamp/config"
)

// Scripts the build step is expected to have compiled into the
// extension directory before packing.
var compiledScripts = []string{"background.js", "content.js", "popup.js"}

// Manifest is the WebExtension manifest, version 2: gopherjs output is
// a single classic script per context, which MV2 loads directly.
type Manifest struct {
	ManifestVersion int      `json:"manifest_version"`
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	Description     string   `json:"description"`
	Permissions     []string `json:"permissions"`
	Background      struct {
		Scripts    []string `json:"scripts"`
		Persistent bool     `json:"persistent"`
	} `json:"background"`
	ContentScripts []ContentScript `json:"content_scripts"`
	BrowserAction  struct {
		DefaultPopup string `json:"default_popup"`
		DefaultTitle string `json:"default_title"`
	} `json:"browser_action"`
}

// ContentScript is one content_scripts manifest entry.
type ContentScript struct {
	Matches   []string `json:"matches"`
	JS        []string `json:"js"`
	RunAt     string   `json:"run_at"`
	AllFrames bool     `json:"all_frames"`
}

// DefaultManifest returns the extension manifest.
func DefaultManifest(version string) Manifest {
	m := Manifest{
		ManifestVersion: 2,
		Name:            "tabamp",
		Version:         version,
		Description:     "Per-tab volume control with amplification up to 500%",
		Permissions:     []string{"tabs", "storage", "<all_urls>"},
	}
	m.Background.Scripts = []string{"background.js"}
	m.Background.Persistent = true
	m.ContentScripts = []ContentScript{{
		Matches:   []string{"<all_urls>"},
		JS:        []string{"content.js"},
		RunAt:     "document_start",
		AllFrames: true,
	}}
	m.BrowserAction.DefaultPopup = "popup.html"
	m.BrowserAction.DefaultTitle = "tabamp"
	return m
}

const popupHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { width: 320px; margin: 0; padding: 12px; font: 13px system-ui, sans-serif; }
.row { margin-bottom: 10px; }
#volume-slider { width: 240px; vertical-align: middle; }
#volume-value { display: inline-block; width: 48px; text-align: right; }
.preset { margin-right: 4px; }
#tab-list { list-style: none; margin: 0; padding: 0; border-top: 1px solid #ddd; }
#tab-list li { display: flex; align-items: center; gap: 6px; padding: 4px 0; }
#tab-list .title { flex: 1; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
#tab-list li.audible .title { font-weight: 600; }
</style>
</head>
<body>
<script src="popup.js"></script>
</body>
</html>
`

// Assemble writes the static artifacts into dir. missing lists compiled
// scripts not found in dir; their absence is reported, not fatal, so
// pack can run before the first gopherjs build.
func Assemble(dir, version string, timings extension.Timings) (missing []string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	manifest, err := json.MarshalIndent(DefaultManifest(version), "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), append(manifest, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "popup.html"), []byte(popupHTML), 0o644); err != nil {
		return nil, fmt.Errorf("write popup.html: %w", err)
	}

	tj, err := json.MarshalIndent(timings, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "timings.json"), append(tj, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write timings.json: %w", err)
	}

	for _, script := range compiledScripts {
		if _, err := os.Stat(filepath.Join(dir, script)); err != nil {
			missing = append(missing, script)
		}
	}
	return missing, nil
}
