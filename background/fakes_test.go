package background

import (
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/config"
	"github.com/simukka/tabamp/protocol"
)

// The fakes run every callback synchronously on the test goroutine,
// mirroring the single-threaded event loop the real code runs on.

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

// Advance moves the fake clock forward, firing due timers in order.
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

type sentTabMsg struct {
	tabID int
	msg   protocol.Message
}

type fakeTabs struct {
	tabs   map[int]chromeapi.TabInfo
	agents map[int]func(protocol.Message) protocol.Message
	sent   []sentTabMsg

	onUpdated   func(int, chromeapi.TabChange, chromeapi.TabInfo)
	onRemoved   func(int)
	onActivated func(int)
}

func newFakeTabs() *fakeTabs {
	return &fakeTabs{
		tabs:   make(map[int]chromeapi.TabInfo),
		agents: make(map[int]func(protocol.Message) protocol.Message),
	}
}

func (f *fakeTabs) Query(cb func([]chromeapi.TabInfo)) {
	out := make([]chromeapi.TabInfo, 0, len(f.tabs))
	for _, t := range f.tabs {
		out = append(out, t)
	}
	cb(out)
}

func (f *fakeTabs) Get(id int, cb func(chromeapi.TabInfo, bool)) {
	t, ok := f.tabs[id]
	cb(t, ok)
}

func (f *fakeTabs) SendMessage(id int, msg protocol.Message, cb func(protocol.Message, bool)) {
	f.sent = append(f.sent, sentTabMsg{tabID: id, msg: msg})
	agent, ok := f.agents[id]
	if !ok {
		if cb != nil {
			cb(protocol.Message{}, false)
		}
		return
	}
	reply := agent(msg)
	if cb != nil {
		cb(reply, true)
	}
}

func (f *fakeTabs) OnUpdated(fn func(int, chromeapi.TabChange, chromeapi.TabInfo)) { f.onUpdated = fn }
func (f *fakeTabs) OnRemoved(fn func(int))                                         { f.onRemoved = fn }
func (f *fakeTabs) OnActivated(fn func(int))                                       { f.onActivated = fn }

// sentTo returns the messages of the given type forwarded to a tab.
func (f *fakeTabs) sentTo(id int, t protocol.MessageType) []protocol.Message {
	var out []protocol.Message
	for _, s := range f.sent {
		if s.tabID == id && s.msg.Type == t {
			out = append(out, s.msg)
		}
	}
	return out
}

type fakeRuntime struct {
	handler    func(protocol.Message, chromeapi.Sender, func(protocol.Message)) bool
	broadcasts []protocol.Message
}

func (f *fakeRuntime) OnMessage(fn func(protocol.Message, chromeapi.Sender, func(protocol.Message)) bool) {
	f.handler = fn
}

func (f *fakeRuntime) SendMessage(msg protocol.Message, cb func(protocol.Message, bool)) {
	f.broadcasts = append(f.broadcasts, msg)
	if cb != nil {
		cb(protocol.Message{}, false)
	}
}

type fakeStorage struct {
	data     map[string]string
	failSets bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string]string)}
}

func (f *fakeStorage) Get(key string, cb func(string, bool)) {
	v, ok := f.data[key]
	cb(v, ok)
}

func (f *fakeStorage) Set(key, value string, cb func(bool)) {
	if f.failSets {
		if cb != nil {
			cb(false)
		}
		return
	}
	f.data[key] = value
	if cb != nil {
		cb(true)
	}
}

func (f *fakeStorage) Remove(key string) { delete(f.data, key) }

// harness wires a Coordinator to the fakes.
type harness struct {
	tabs  *fakeTabs
	rt    *fakeRuntime
	st    *fakeStorage
	sched *fakeScheduler
	c     *Coordinator
}

func newHarness() *harness {
	h := &harness{
		tabs:  newFakeTabs(),
		rt:    &fakeRuntime{},
		st:    newFakeStorage(),
		sched: &fakeScheduler{},
	}
	h.c = New(h.tabs, h.rt, h.st, h.sched, config.Default())
	return h
}

func (h *harness) start() { h.c.Start() }

// addTab registers a tab with the fake browser.
func (h *harness) addTab(t chromeapi.TabInfo) { h.tabs.tabs[t.ID] = t }

// audible flips a tab's audible flag and fires tabs.onUpdated.
func (h *harness) audible(id int, on bool) {
	t := h.tabs.tabs[id]
	t.Audible = on
	h.tabs.tabs[id] = t
	h.tabs.onUpdated(id, chromeapi.TabChange{Audible: &on}, t)
}

// navigate changes a tab's URL and fires tabs.onUpdated.
func (h *harness) navigate(id int, rawURL string) {
	t := h.tabs.tabs[id]
	t.URL = rawURL
	h.tabs.tabs[id] = t
	h.tabs.onUpdated(id, chromeapi.TabChange{URL: &rawURL}, t)
}

// activate makes a tab active and fires tabs.onActivated.
func (h *harness) activate(id int) {
	for tid, t := range h.tabs.tabs {
		t.Active = tid == id
		h.tabs.tabs[tid] = t
	}
	h.tabs.onActivated(id)
}

// closeTab removes a tab and fires tabs.onRemoved.
func (h *harness) closeTab(id int) {
	delete(h.tabs.tabs, id)
	h.tabs.onRemoved(id)
}

// popupSend injects a popup-originated runtime message and returns the
// response, if any.
func (h *harness) popupSend(msg protocol.Message) (protocol.Message, bool) {
	var reply protocol.Message
	got := false
	handled := h.rt.handler(msg, chromeapi.Sender{}, func(m protocol.Message) {
		reply = m
		got = true
	})
	return reply, handled && got
}

// agentSend injects a content-script-originated runtime message.
func (h *harness) agentSend(tabID int, msg protocol.Message) {
	h.rt.handler(msg, chromeapi.Sender{TabID: tabID}, func(protocol.Message) {})
}

// audioTabIDs returns the ids currently in the popup-facing list.
func (h *harness) audioTabIDs() []int {
	var ids []int
	h.c.AudioTabs(func(tabs []protocol.TabStatus) {
		for _, t := range tabs {
			ids = append(ids, t.ID)
		}
	})
	return ids
}
