package content

import (
	"errors"

	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/config"
	"github.com/simukka/tabamp/sites"
)

// The fakes run every callback synchronously, mirroring the page's
// single-threaded event loop.

type fakeTimer struct {
	due       int
	every     int
	fn        func()
	cancelled bool
	fired     bool
}

type fakeScheduler struct {
	now    int
	timers []*fakeTimer
}

func (s *fakeScheduler) After(ms int, fn func()) chromeapi.CancelFunc {
	t := &fakeTimer{due: s.now + ms, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

func (s *fakeScheduler) Every(ms int, fn func()) chromeapi.CancelFunc {
	t := &fakeTimer{due: s.now + ms, every: ms, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

func (s *fakeScheduler) Advance(ms int) {
	target := s.now + ms
	for {
		var next *fakeTimer
		for _, t := range s.timers {
			if t.cancelled || t.fired || t.due > target {
				continue
			}
			if next == nil || t.due < next.due {
				next = t
			}
		}
		if next == nil {
			break
		}
		s.now = next.due
		if next.every > 0 {
			next.due += next.every
		} else {
			next.fired = true
		}
		next.fn()
	}
	s.now = target
}

type fakeStage struct {
	gain float64
	sets int
}

func (s *fakeStage) SetGain(v float64) {
	s.gain = v
	s.sets++
}

// fakeGraph simulates the page's audio graph.
type fakeGraph struct {
	stage        *fakeStage
	stageFails   bool
	stagesMade   int
	suspended    bool
	resumeWorks  bool
	resumeCalls  int
	closed       bool
	connected    map[*fakeElement]bool
	connectCalls int
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{resumeWorks: true, connected: make(map[*fakeElement]bool)}
}

func (g *fakeGraph) CreateStage() (GainStage, bool) {
	if g.stageFails {
		return nil, false
	}
	g.stagesMade++
	g.stage = &fakeStage{}
	return g.stage, true
}

func (g *fakeGraph) Connect(el MediaElement) (func(), error) {
	g.connectCalls++
	fe := el.(*fakeElement)
	if fe.connectErr != nil {
		return nil, fe.connectErr
	}
	g.connected[fe] = true
	return func() { delete(g.connected, fe) }, nil
}

func (g *fakeGraph) Suspended() bool { return g.suspended }

func (g *fakeGraph) Resume(cb func(bool)) {
	g.resumeCalls++
	if g.resumeWorks {
		g.suspended = false
	}
	cb(!g.suspended)
}

func (g *fakeGraph) Close() { g.closed = true }

// fakeElement is one page media element.
type fakeElement struct {
	tracked    bool
	volume     float64
	srcs       []string
	playing    bool
	inDocument bool
	connectErr error

	onPlay  func()
	onEnded func()
}

func newFakeElement(srcs ...string) *fakeElement {
	return &fakeElement{volume: 1.0, inDocument: true, srcs: srcs}
}

func (e *fakeElement) Tracked() bool                    { return e.tracked }
func (e *fakeElement) MarkTracked()                     { e.tracked = true }
func (e *fakeElement) SetNativeVolume(fraction float64) { e.volume = fraction }
func (e *fakeElement) SourceURLs() []string             { return e.srcs }
func (e *fakeElement) Playing() bool                    { return e.playing }
func (e *fakeElement) InDocument() bool                 { return e.inDocument }
func (e *fakeElement) OnPlay(fn func())                 { e.onPlay = fn }
func (e *fakeElement) OnEnded(fn func())                { e.onEnded = fn }

type fakeWatcher struct {
	started   bool
	stopped   bool
	onElement func(MediaElement)
}

func (w *fakeWatcher) Start(onElement func(MediaElement)) {
	w.started = true
	w.onElement = onElement
}

func (w *fakeWatcher) Stop() { w.stopped = true }

// discover feeds an element through the discovery stream.
func (w *fakeWatcher) discover(el MediaElement) { w.onElement(el) }

var errConnectRefused = errors.New("MediaElementAudioSource outputs zeroes due to CORS")

// agentHarness wires an Agent to the fakes.
type agentHarness struct {
	graph    *fakeGraph
	watcher  *fakeWatcher
	sched    *fakeScheduler
	notified []bool
	agent    *Agent
}

func newAgentHarness(handler sites.Handler) *agentHarness {
	h := &agentHarness{
		graph:   newFakeGraph(),
		watcher: &fakeWatcher{},
		sched:   &fakeScheduler{},
	}
	notify := func(has bool) { h.notified = append(h.notified, has) }
	h.agent = NewAgent(h.graph, h.watcher, notify, h.sched, config.Default(), handler, "https://example.com")
	h.agent.Start()
	return h
}
