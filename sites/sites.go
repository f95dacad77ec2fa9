// Package sites is the per-hostname adaptation layer. A handful of
// sites ship custom players that resist the generic agent: they reset
// volume on internal events, wrap cross-origin DRM streams that corrupt
// under amplification, or bury their media elements in app containers.
// A Handler encapsulates those exceptions; everything else gets the
// wildcard default.
package sites

import "strings"

// Handler customizes the Page Audio Agent for one site.
type Handler interface {
	// Name identifies the handler in logs.
	Name() string
	// DiscoveryRoots returns CSS selectors to scope media discovery.
	// Empty means scan the whole document.
	DiscoveryRoots() []string
	// MaxPercent caps the volume applied on this site. Zero means no
	// cap beyond the global maximum.
	MaxPercent() int
	// ReportsAudio post-processes the generic "page has media" answer
	// for sites that are eager or shy about it.
	ReportsAudio(found bool) bool
}

type rule struct {
	pattern string
	handler Handler
}

// rules are checked in order; first match wins. The trailing wildcard
// is the standard generic behavior.
var rules = []rule{
	{"www.youtube.com", scoped("youtube", "#movie_player")},
	{"music.youtube.com", scoped("youtube-music", "ytmusic-player-bar, #movie_player")},
	{"soundcloud.com", eager("soundcloud")},
	{"www.netflix.com", capped("netflix")},
	{"open.spotify.com", capped("spotify")},
	{"tv.apple.com", capped("apple-tv")},
	{"*", Default{}},
}

// ForHostname selects the handler for a hostname. Selection never
// fails: anything unmatched, including the empty hostname, falls back
// to the default handler.
func ForHostname(host string) Handler {
	for _, r := range rules {
		if match(r.pattern, host) {
			return r.handler
		}
	}
	return Default{}
}

// match supports exact hostnames, "*.suffix" patterns and the bare "*"
// wildcard.
func match(pattern, host string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*."):
		suffix := pattern[1:] // keep the dot
		return strings.HasSuffix(host, suffix) || host == pattern[2:]
	default:
		return pattern == host
	}
}

// Default is the standard generic behavior: whole-document discovery,
// no cap, trust the generic media scan.
type Default struct{}

func (Default) Name() string             { return "default" }
func (Default) DiscoveryRoots() []string { return nil }
func (Default) MaxPercent() int          { return 0 }
func (Default) ReportsAudio(found bool) bool {
	return found
}

// cappedHandler pins a site to the native ceiling. Amplifying these
// players' DRM streams is known to corrupt playback, so the gain
// pipeline is never engaged for them.
type cappedHandler struct{ name string }

func capped(name string) Handler { return cappedHandler{name: name} }

func (h cappedHandler) Name() string                 { return h.name }
func (h cappedHandler) DiscoveryRoots() []string     { return nil }
func (h cappedHandler) MaxPercent() int              { return 100 }
func (h cappedHandler) ReportsAudio(found bool) bool { return found }

// scopedHandler narrows discovery to the site's player container so the
// agent does not bind preview thumbnails and ad slots.
type scopedHandler struct {
	name  string
	roots []string
}

func scoped(name string, roots ...string) Handler {
	return scopedHandler{name: name, roots: roots}
}

func (h scopedHandler) Name() string                 { return h.name }
func (h scopedHandler) DiscoveryRoots() []string     { return h.roots }
func (h scopedHandler) MaxPercent() int              { return 0 }
func (h scopedHandler) ReportsAudio(found bool) bool { return found }

// eagerHandler always reports audio: the site keeps a persistent player
// that materializes its media element lazily, after the coordinator
// usually asks.
type eagerHandler struct{ name string }

func eager(name string) Handler { return eagerHandler{name: name} }

func (h eagerHandler) Name() string             { return h.name }
func (h eagerHandler) DiscoveryRoots() []string { return nil }
func (h eagerHandler) MaxPercent() int          { return 0 }
func (h eagerHandler) ReportsAudio(bool) bool   { return true }
