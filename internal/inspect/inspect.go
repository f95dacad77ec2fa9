// Package inspect attaches to a running Chrome over the DevTools
// protocol and reports each page's media state. It exists to cross-check
// the extension's audio-tab list against ground truth while developing:
// what the coordinator believes should match what the pages contain.
package inspect

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// TabReport is one page's media state as seen over CDP.
type TabReport struct {
	TargetID   string `json:"targetId"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	MediaCount int    `json:"mediaCount"`
	Playing    int    `json:"playing"`
	ProbeError string `json:"probeError,omitempty"`
}

type mediaProbe struct {
	Count   int `json:"count"`
	Playing int `json:"playing"`
}

// mediaProbeJS mirrors the agent's discovery scan closely enough to
// compare: media elements in the document, and how many are playing.
const mediaProbeJS = `(() => {
	const els = Array.from(document.querySelectorAll("audio,video"));
	return {
		count: els.length,
		playing: els.filter(e => !e.paused && !e.ended).length,
	};
})()`

// Tabs connects to cdpURL and probes every ordinary page target.
func Tabs(ctx context.Context, cdpURL string, probeTimeout time.Duration) ([]TabReport, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, cdpURL)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("enumerate targets: %w", err)
	}

	var reports []TabReport
	for _, t := range FilterPages(targets) {
		rep := TabReport{TargetID: string(t.TargetID), URL: t.URL, Title: t.Title}

		tabCtx, cancelTab := chromedp.NewContext(browserCtx, chromedp.WithTargetID(t.TargetID))
		probeCtx, cancelProbe := context.WithTimeout(tabCtx, probeTimeout)
		var probe mediaProbe
		if err := chromedp.Run(probeCtx, chromedp.Evaluate(mediaProbeJS, &probe)); err != nil {
			rep.ProbeError = err.Error()
		} else {
			rep.MediaCount = probe.Count
			rep.Playing = probe.Playing
		}
		cancelProbe()
		cancelTab()

		reports = append(reports, rep)
	}
	return reports, nil
}

// FilterPages keeps ordinary web pages: no extension contexts, no
// devtools, no blank targets.
func FilterPages(targets []*target.Info) []*target.Info {
	var pages []*target.Info
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		switch {
		case strings.HasPrefix(t.URL, "chrome-extension://"),
			strings.HasPrefix(t.URL, "moz-extension://"),
			strings.HasPrefix(t.URL, "devtools://"),
			t.URL == "about:blank",
			t.URL == "":
			continue
		}
		pages = append(pages, t)
	}
	return pages
}

// WriteTable renders the reports for the terminal.
func WriteTable(w io.Writer, reports []TabReport) {
	fmt.Fprintf(w, "%-8s %-6s %-7s %s\n", "TARGET", "MEDIA", "PLAYING", "URL")
	for _, r := range reports {
		id := r.TargetID
		if len(id) > 8 {
			id = id[:8]
		}
		if r.ProbeError != "" {
			fmt.Fprintf(w, "%-8s %-6s %-7s %s (probe failed: %s)\n", id, "?", "?", r.URL, r.ProbeError)
			continue
		}
		fmt.Fprintf(w, "%-8s %-6d %-7d %s\n", id, r.MediaCount, r.Playing, r.URL)
	}
}
