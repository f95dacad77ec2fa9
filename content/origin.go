package content

import (
	"errors"
	"net/url"
	"strings"
)

var errBrokenPipeline = errors.New("content: amplification pipeline unavailable")

// crossOriginLikely predicts whether connecting an element with these
// source URLs to the audio graph would fail the browser's same-origin
// check. Predicting up front lets the agent choose the native-volume
// fallback immediately instead of trying, failing and glitching the
// audio on the way.
//
// pageOrigin is "scheme://host[:port]" of the hosting page.
func crossOriginLikely(pageOrigin string, srcs []string) bool {
	for _, s := range srcs {
		if s == "" {
			continue
		}
		u, err := url.Parse(s)
		if err != nil {
			// Unparseable sources go to the connect attempt; the
			// failure path marks the element ineligible anyway.
			continue
		}
		switch strings.ToLower(u.Scheme) {
		case "":
			// Relative URL: same origin by construction.
			continue
		case "blob", "data", "mediastream":
			// Same-origin-ish schemes MediaElementSource accepts.
			continue
		}
		if !strings.EqualFold(u.Scheme+"://"+u.Host, pageOrigin) {
			return true
		}
	}
	return false
}
