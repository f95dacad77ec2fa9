package content

import (
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/config"
	"github.com/simukka/tabamp/sites"
	"github.com/simukka/tabamp/volume"
	"github.com/simukka/tabamp/weblog"
)

// State is the agent's per-page-load lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateScanning
	StateActive
)

// Binding tracks one media element's relationship to the pipeline.
// Ephemeral: a binding never outlives the document it was created in.
type Binding struct {
	connected   bool
	ineligible  bool // cross-origin or connect-failed: native fallback only
	lastApplied volume.Percent
}

// Agent is the Page Audio Agent for one tab.
type Agent struct {
	graph   Graph
	watcher Watcher
	notify  NotifyFunc
	sched   chromeapi.Scheduler
	cfg     config.Config
	handler sites.Handler
	origin  string

	state    State
	vol      volume.Percent
	pipeline *Pipeline
	bindings map[MediaElement]*Binding
	resume   *resumer

	notifyPending chromeapi.CancelFunc
	lastNotified  *bool
}

// NewAgent builds an agent for a page. origin is the page's
// "scheme://host[:port]"; handler is the site adaptation selected for
// the page's hostname.
func NewAgent(graph Graph, watcher Watcher, notify NotifyFunc, sched chromeapi.Scheduler, cfg config.Config, handler sites.Handler, origin string) *Agent {
	if handler == nil {
		handler = sites.Default{}
	}
	return &Agent{
		graph:    graph,
		watcher:  watcher,
		notify:   notify,
		sched:    sched,
		cfg:      cfg,
		handler:  handler,
		origin:   origin,
		vol:      volume.DefaultPercent,
		bindings: make(map[MediaElement]*Binding),
	}
}

// Start begins discovery. Safe to call once per page load.
func (a *Agent) Start() {
	if a.state != StateUninitialized {
		return
	}
	a.state = StateScanning
	weblog.Debug("agent starting, handler:", a.handler.Name())
	a.watcher.Start(a.handleElement)
	a.sched.Every(a.cfg.Timings.RescanIntervalMs, a.cleanup)
	a.state = StateActive
}

// State returns the agent lifecycle state.
func (a *Agent) State() State { return a.state }

// Volume returns the page's last-applied volume. The UI concept is
// "this tab's volume", so there is no per-element answer.
func (a *Agent) Volume() volume.Percent { return a.vol }

// HasAudio reports whether the page currently contains tracked media,
// filtered through the site handler.
func (a *Agent) HasAudio() bool {
	return a.handler.ReportsAudio(len(a.bindings) > 0)
}

// SetVolume applies a volume to the whole page.
//
// Within the native ceiling and before any element has been wired into
// the pipeline, the volume is applied as plain element volume: zero
// audio-graph cost, and the page's own volume UI stays truthful. Once
// amplification is requested (or an element is already connected), the
// pipeline is built lazily and elements are connected one by one; a
// per-element failure marks only that element ineligible and clamps it
// at the ceiling, leaving the rest of the page amplifiable.
func (a *Agent) SetVolume(p volume.Percent) {
	p = volume.Clamp(p)
	if cap := a.handler.MaxPercent(); cap > 0 && p > volume.Percent(cap) {
		p = volume.Percent(cap)
	}
	a.vol = p

	if !p.NeedsAmplification() && !a.pipelineEngaged() {
		a.applyNativeAll(p)
		return
	}

	a.ensurePipeline()
	if a.pipeline.Broken() {
		a.applyNativeAll(p)
		return
	}
	a.pipeline.SetGain(p.Fraction())
	if a.resume != nil {
		a.resume.start()
	}
	for el, b := range a.bindings {
		a.applyToElement(el, b)
	}
}

// PokeResume is a user-interaction hint for the autoplay resumer.
func (a *Agent) PokeResume() {
	if a.resume != nil {
		a.resume.poke()
	}
}

// Reset tears down all page-scoped audio state on SPA navigation. The
// pipeline and bindings are discarded wholesale: source nodes from the
// previous document are permanently unusable.
func (a *Agent) Reset() {
	if a.pipeline != nil {
		a.pipeline.Close()
		a.pipeline = nil
	}
	if a.resume != nil {
		a.resume.finish()
		a.resume = nil
	}
	a.bindings = make(map[MediaElement]*Binding)
	a.lastNotified = nil
	// The watcher keeps running; the new document's elements flow in
	// through the same discovery stream.
	a.state = StateActive
}

// handleElement ingests one discovered media element.
func (a *Agent) handleElement(el MediaElement) {
	if el == nil || el.Tracked() {
		return
	}
	if len(a.bindings) >= a.cfg.Limits.MaxTrackedElements {
		return
	}
	el.MarkTracked()
	b := &Binding{}
	a.bindings[el] = b
	el.OnPlay(func() {
		a.PokeResume()
		a.reportAudio()
	})
	el.OnEnded(func() {
		a.reportAudio()
	})
	a.applyToElement(el, b)
	a.reportAudio()
}

// applyNativeAll pushes a native-only volume to every element.
func (a *Agent) applyNativeAll(p volume.Percent) {
	for el, b := range a.bindings {
		el.SetNativeVolume(p.NativeFraction())
		b.lastApplied = p
	}
}

// pipelineEngaged reports whether any element is already amplified, in
// which case even sub-ceiling volumes keep flowing through the stage.
func (a *Agent) pipelineEngaged() bool {
	return a.pipeline != nil && !a.pipeline.Broken() && a.pipeline.HasConnections()
}

// ensurePipeline lazily builds the page's single pipeline. Idempotent:
// repeated amplification requests reuse the same stage.
func (a *Agent) ensurePipeline() {
	if a.pipeline != nil {
		return
	}
	a.pipeline = newPipeline(a.graph)
	if !a.pipeline.Broken() {
		a.resume = newResumer(a.graph, a.sched, a.cfg)
		a.resume.start()
	}
}

// applyToElement applies the current volume to one element, connecting
// it to the pipeline when amplification calls for it.
func (a *Agent) applyToElement(el MediaElement, b *Binding) {
	p := a.vol
	wantPipeline := a.pipeline != nil && !a.pipeline.Broken() &&
		(p.NeedsAmplification() || b.connected)

	if !wantPipeline || b.ineligible {
		el.SetNativeVolume(p.NativeFraction())
		b.lastApplied = p
		return
	}

	if !b.connected {
		if crossOriginLikely(a.origin, el.SourceURLs()) {
			b.ineligible = true
			el.SetNativeVolume(p.NativeFraction())
			b.lastApplied = p
			return
		}
		if err := a.pipeline.Connect(el); err != nil {
			weblog.Debug("element connect failed, clamping to native:", err)
			b.ineligible = true
			el.SetNativeVolume(p.NativeFraction())
			b.lastApplied = p
			return
		}
		b.connected = true
	}
	// The stage owns loudness now; the element contributes unity.
	el.SetNativeVolume(1.0)
	b.lastApplied = p
}

// cleanup drops bindings whose elements left the document and
// disconnects their source nodes.
func (a *Agent) cleanup() {
	removed := false
	for el, b := range a.bindings {
		if el.InDocument() {
			continue
		}
		if b.connected && a.pipeline != nil {
			a.pipeline.Disconnect(el)
		}
		delete(a.bindings, el)
		removed = true
	}
	if removed {
		a.reportAudio()
	}
}

// reportAudio notifies the coordinator about audio presence, debounced
// so a burst of discoveries collapses into one message. The value is
// recomputed at fire time.
func (a *Agent) reportAudio() {
	if a.notify == nil || a.notifyPending != nil {
		return
	}
	a.notifyPending = a.sched.After(a.cfg.Timings.NotifyAudioDelayMs, func() {
		a.notifyPending = nil
		has := a.HasAudio()
		if a.lastNotified != nil && *a.lastNotified == has {
			return
		}
		a.lastNotified = &has
		a.notify(has)
	})
}
