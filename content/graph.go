// Package content implements the Page Audio Agent: the per-tab,
// in-page side of the extension. It discovers media elements on
// arbitrary pages, routes them through a shared gain stage when
// amplification beyond the native 100% ceiling is requested, and
// reports audio presence back to the coordinator.
//
// The agent core is written against the small interfaces below so the
// volume policy and pipeline lifecycle run under native tests; the
// GopherJS implementations over Web Audio and the DOM live in
// webaudio.go, element.go and watcher.go.
package content

// GainStage is a page's single shared amplification stage.
type GainStage interface {
	SetGain(value float64)
}

// Graph abstracts the page's Web Audio graph.
type Graph interface {
	// CreateStage builds the gain stage wired to the page's audio
	// destination. ok is false when Web Audio is unavailable, in which
	// case the page permanently falls back to native-volume control.
	CreateStage() (GainStage, bool)
	// Connect routes el through the gain stage and returns a
	// disconnect for the element's source node. A source node is
	// single-use: after disconnect the element can never be
	// reconnected, which is why pipelines are rebuilt, not reused.
	Connect(el MediaElement) (disconnect func(), err error)
	// Suspended reports whether the context is blocked by the
	// browser's autoplay policy.
	Suspended() bool
	// Resume asks a suspended context to start running.
	Resume(cb func(resumed bool))
	// Close tears the whole graph down. Used on navigation.
	Close()
}

// MediaElement is one audio/video element discovered on the page.
type MediaElement interface {
	// Tracked and MarkTracked dedupe rediscovery of the same element
	// across scans.
	Tracked() bool
	MarkTracked()
	// SetNativeVolume assigns the element's own volume property,
	// which saturates at 1.0.
	SetNativeVolume(fraction float64)
	// SourceURLs returns the element's src, currentSrc and the hrefs
	// of its <source> children, for cross-origin prediction.
	SourceURLs() []string
	// Playing reports whether the element is playing right now.
	Playing() bool
	// InDocument reports whether the element is still attached to the
	// document.
	InDocument() bool
	// OnPlay and OnEnded register playback edge callbacks.
	OnPlay(fn func())
	OnEnded(fn func())
}

// Watcher produces the stream of discovered media elements for one
// page lifetime. The interception mechanics (mutation observation,
// constructor patching, capture-phase play events) stay behind it.
type Watcher interface {
	Start(onElement func(MediaElement))
	Stop()
}

// NotifyFunc reports audio presence to the coordinator.
type NotifyFunc func(hasActiveAudio bool)
