// Package background implements the Tab Coordinator: the single source
// of truth for which tabs have audio and at what volume.
//
// Everything here runs on the background page's single-threaded event
// loop, so the maps need no locking; cross-context interaction is
// asynchronous message passing only. Message sends to tabs are
// fire-and-forget: an agent that is not loaded yet is a normal
// condition, not an error.
package background

import (
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/config"
	"github.com/simukka/tabamp/protocol"
	"github.com/simukka/tabamp/volume"
	"github.com/simukka/tabamp/weblog"
)

// Coordinator owns cross-tab state and relays commands between the
// popup and each tab's content script agent.
type Coordinator struct {
	tabs    chromeapi.Tabs
	runtime chromeapi.Runtime
	storage chromeapi.Storage
	sched   chromeapi.Scheduler
	cfg     config.Config

	records map[int]*record
	volumes map[int]volume.Percent
	hosts   map[int]string
	domains *DomainStore

	activeTabID   int
	notifyPending chromeapi.CancelFunc
	stopSweep     chromeapi.CancelFunc
}

// New builds a Coordinator. Call Start to register listeners and
// rehydrate persisted state.
func New(tabs chromeapi.Tabs, rt chromeapi.Runtime, st chromeapi.Storage, sched chromeapi.Scheduler, cfg config.Config) *Coordinator {
	return &Coordinator{
		tabs:    tabs,
		runtime: rt,
		storage: st,
		sched:   sched,
		cfg:     cfg,
		records: make(map[int]*record),
		volumes: make(map[int]volume.Percent),
		hosts:   make(map[int]string),
		domains: NewDomainStore(st),
	}
}

// Start registers browser listeners, rehydrates persisted state and
// kicks off the periodic reconciliation sweep.
func (c *Coordinator) Start() {
	c.runtime.OnMessage(c.handleMessage)
	c.tabs.OnUpdated(c.handleTabUpdated)
	c.tabs.OnRemoved(c.handleTabRemoved)
	c.tabs.OnActivated(c.handleTabActivated)

	c.domains.Load(nil)
	c.loadSnapshot(func() {
		// Reconcile rehydrated state against what is actually open.
		c.sweep()
	})

	c.stopSweep = c.sched.Every(c.cfg.Timings.SweepIntervalMs, c.sweep)
}

// GetVolume returns the stored volume for a tab, or the default for
// tabs never set.
func (c *Coordinator) GetVolume(tabID int) volume.Percent {
	if p, ok := c.volumes[tabID]; ok {
		return volume.Clamp(p)
	}
	return volume.DefaultPercent
}

// SetVolume stores the volume, forwards it to the tab's agent
// best-effort, and optionally remembers it for the tab's hostname.
func (c *Coordinator) SetVolume(tabID int, p volume.Percent, applyToDomain bool) {
	p = volume.Clamp(p)
	c.volumes[tabID] = p
	c.pushVolume(tabID, p)

	if applyToDomain {
		if host := c.hosts[tabID]; host != "" {
			c.domains.Set(host, p)
		} else {
			// Hostname not cached yet; look the tab up first.
			c.tabs.Get(tabID, func(t chromeapi.TabInfo, ok bool) {
				if !ok {
					return
				}
				host := hostnameOf(t.URL)
				c.hosts[tabID] = host
				c.domains.Set(host, p)
			})
		}
	}
	c.saveSnapshot()
}

// AudioTabs collects the popup's tab list: every open tab the
// coordinator believes has audio, enriched with live metadata. Audible
// tabs the coordinator somehow missed are adopted on the way through.
func (c *Coordinator) AudioTabs(cb func([]protocol.TabStatus)) {
	c.tabs.Query(func(tabs []chromeapi.TabInfo) {
		out := make([]protocol.TabStatus, 0, len(c.records))
		for _, t := range tabs {
			rec := c.records[t.ID]
			if rec == nil && t.Audible {
				rec = c.adopt(t)
			}
			// A record's existence is membership: records are only
			// created on audio signals and only destroyed by the
			// removal policy, so a tab inside its debounce window
			// stays listed here.
			if rec == nil {
				continue
			}
			rec.isAudible = t.Audible
			c.applyMeta(t.ID, rec, t)
			out = append(out, protocol.TabStatus{
				ID:         t.ID,
				Title:      t.Title,
				Volume:     c.GetVolume(t.ID),
				FavIconURL: t.FavIconURL,
				Audible:    t.Audible,
			})
		}
		cb(out)
	})
}

// ApplyToAllTabs sets every currently tracked audio tab to p.
func (c *Coordinator) ApplyToAllTabs(p volume.Percent) {
	p = volume.Clamp(p)
	for id := range c.records {
		c.SetVolume(id, p, false)
	}
}

// ResetAllTabs returns every tracked audio tab to the default volume.
func (c *Coordinator) ResetAllTabs() {
	c.ApplyToAllTabs(volume.DefaultPercent)
}

// pushVolume forwards a volume to the tab's agent, fire-and-forget.
func (c *Coordinator) pushVolume(tabID int, p volume.Percent) {
	msg := protocol.New(protocol.MsgSetVolume, protocol.SetVolumeRequest{Volume: p})
	c.tabs.SendMessage(tabID, msg, nil)
}

// queryHasAudio asks the tab's agent whether the page has media. ok is
// false when the agent did not answer.
func (c *Coordinator) queryHasAudio(tabID int, cb func(has bool, ok bool)) {
	c.tabs.SendMessage(tabID, protocol.New(protocol.MsgCheckForAudio, nil),
		func(reply protocol.Message, ok bool) {
			if !ok {
				cb(false, false)
				return
			}
			var resp protocol.HasAudioResponse
			if err := reply.Decode(&resp); err != nil {
				cb(false, false)
				return
			}
			cb(resp.HasAudio, true)
		})
}

// --- browser event ingestion ---

func (c *Coordinator) handleTabUpdated(id int, change chromeapi.TabChange, tab chromeapi.TabInfo) {
	if change.URL != nil {
		c.handleNavigation(id, *change.URL)
	}
	if change.Audible != nil {
		if *change.Audible {
			c.markAudible(id, tab)
		} else {
			c.handleSilence(id)
		}
	}
	if rec := c.records[id]; rec != nil {
		c.applyMeta(id, rec, tab)
	}
	if change.Status != nil && *change.Status == "complete" {
		c.handleLoadComplete(id, tab)
	}
}

func (c *Coordinator) handleTabRemoved(id int) {
	rec := c.records[id]
	if rec != nil {
		rec.cancelRemoval()
		delete(c.records, id)
		c.scheduleNotify()
	}
	delete(c.volumes, id)
	delete(c.hosts, id)
	c.saveSnapshot()
}

// handleTabActivated re-evaluates whether the newly active tab belongs
// in the audio set. A single signal is not enough: paused videos,
// OS-muted tabs and tabs whose agent has not loaded yet each need a
// different inference, hence the ordered fallback.
func (c *Coordinator) handleTabActivated(id int) {
	c.activeTabID = id
	if rec := c.records[id]; rec != nil {
		rec.cancelRemoval()
	}
	c.tabs.Get(id, func(t chromeapi.TabInfo, ok bool) {
		if !ok {
			return
		}
		c.hosts[id] = hostnameOf(t.URL)
		rec := c.records[id]
		switch {
		case t.Audible:
			// (1) Browser says it is making sound right now.
			c.markAudible(id, t)
		case !c.GetVolume(id).IsDefault():
			// (2) A non-default volume signals prior user intent.
			r, created := c.ensureRecord(id)
			r.hasAudioCapability = true
			c.applyMeta(id, r, t)
			if created {
				c.scheduleNotify()
			}
		case rec != nil:
			// (3) Known tab at default volume: ask the agent.
			c.queryHasAudio(id, func(has bool, answered bool) {
				if !answered {
					return
				}
				if has {
					rec.hasAudioCapability = true
				} else if !rec.isAudible {
					c.dropRecord(id)
				}
			})
		default:
			// (4) Never seen before: ask the agent.
			c.queryHasAudio(id, func(has bool, answered bool) {
				if answered && has {
					r, _ := c.ensureRecord(id)
					r.hasAudioCapability = true
					c.applyMeta(id, r, t)
					c.scheduleNotify()
				}
			})
		}
	})
}

// handleNavigation resets the tab's volume when the hostname changes,
// unless a domain record for the new hostname overrides it.
func (c *Coordinator) handleNavigation(id int, rawURL string) {
	host := hostnameOf(rawURL)
	prev := c.hosts[id]
	c.hosts[id] = host
	if rec := c.records[id]; rec != nil {
		rec.hostname = host
	}
	if host == prev || host == "" {
		return
	}
	vol, remembered := c.domains.Get(host)
	if !remembered {
		vol = volume.DefaultPercent
	}
	if vol.IsDefault() {
		delete(c.volumes, id)
	} else {
		c.volumes[id] = vol
	}
	c.pushVolume(id, vol)
	c.saveSnapshot()
}

// handleLoadComplete re-applies the effective volume once the page is
// loaded enough for the agent to exist. The agent may still not be
// there; the send is best-effort like every other.
func (c *Coordinator) handleLoadComplete(id int, tab chromeapi.TabInfo) {
	host := hostnameOf(tab.URL)
	if host != "" {
		c.hosts[id] = host
	}
	if v, ok := c.domains.Get(host); ok {
		c.volumes[id] = v
		c.pushVolume(id, v)
		c.saveSnapshot()
		return
	}
	if v, ok := c.volumes[id]; ok && !v.IsDefault() {
		c.pushVolume(id, v)
	}
}

// markAudible is the Silent -> Audible edge: immediate, cancels any
// pending removal, notifies when the tab is newly listed.
func (c *Coordinator) markAudible(id int, tab chromeapi.TabInfo) {
	rec, created := c.ensureRecord(id)
	rec.cancelRemoval()
	rec.isAudible = true
	c.applyMeta(id, rec, tab)
	if created {
		c.scheduleNotify()
	}
}

// handleSilence is the Audible -> Silent edge. The active tab is never
// scheduled for removal; other tabs get a debounced removal that
// re-checks audible/active status at fire time rather than trusting the
// state captured at schedule time.
func (c *Coordinator) handleSilence(id int) {
	rec := c.records[id]
	if rec == nil {
		return
	}
	rec.isAudible = false
	if id == c.activeTabID {
		return
	}
	if rec.pendingRemoval != nil {
		return
	}
	rec.pendingRemoval = c.sched.After(c.cfg.Timings.RemovalDebounceMs, func() {
		rec.pendingRemoval = nil
		if id == c.activeTabID {
			return
		}
		c.tabs.Get(id, func(t chromeapi.TabInfo, ok bool) {
			if ok && t.Audible {
				rec.isAudible = true
				return
			}
			cur, live := c.records[id]
			if live && cur == rec && !cur.isAudible {
				c.dropRecord(id)
			}
		})
	})
}

// handleNotifyAudio ingests the agent-side audio confirmation. It
// catches media the browser's audible flag missed, and retractions for
// media the flag over-eagerly claimed.
func (c *Coordinator) handleNotifyAudio(tabID int, hasActive bool) {
	if tabID <= 0 {
		return
	}
	if !hasActive {
		rec := c.records[tabID]
		if rec == nil {
			return
		}
		rec.hasAudioCapability = false
		if !rec.isAudible {
			c.handleSilence(tabID)
		}
		return
	}
	rec, created := c.ensureRecord(tabID)
	rec.cancelRemoval()
	rec.hasAudioCapability = true
	if created {
		// Fill metadata lazily; the agent only knows its own page.
		c.tabs.Get(tabID, func(t chromeapi.TabInfo, ok bool) {
			if ok {
				c.applyMeta(tabID, rec, t)
			}
		})
		c.scheduleNotify()
	}
}

// sweep reconciles coordinator state against authoritative browser tab
// data: records for dead tabs are dropped, audible tabs the coordinator
// missed are adopted, and the active tab id is refreshed.
func (c *Coordinator) sweep() {
	c.tabs.Query(func(tabs []chromeapi.TabInfo) {
		live := make(map[int]chromeapi.TabInfo, len(tabs))
		changed := false
		for _, t := range tabs {
			live[t.ID] = t
			if t.Active {
				c.activeTabID = t.ID
			}
			if t.Audible && c.records[t.ID] == nil {
				c.adopt(t)
				changed = true
			}
		}
		for id, rec := range c.records {
			if _, ok := live[id]; !ok {
				rec.cancelRemoval()
				delete(c.records, id)
				changed = true
			}
		}
		for id := range c.volumes {
			if _, ok := live[id]; !ok {
				delete(c.volumes, id)
				changed = true
			}
		}
		for id := range c.hosts {
			if _, ok := live[id]; !ok {
				delete(c.hosts, id)
			}
		}
		if changed {
			weblog.Debug("sweep changed audio set, tracked:", len(c.records))
			c.scheduleNotify()
			c.saveSnapshot()
		}
	})
}

// --- record bookkeeping ---

func (c *Coordinator) ensureRecord(id int) (*record, bool) {
	if rec := c.records[id]; rec != nil {
		return rec, false
	}
	rec := &record{}
	c.records[id] = rec
	return rec, true
}

// adopt creates a record straight from live browser tab data.
func (c *Coordinator) adopt(t chromeapi.TabInfo) *record {
	rec, _ := c.ensureRecord(t.ID)
	rec.isAudible = t.Audible
	c.applyMeta(t.ID, rec, t)
	return rec
}

func (c *Coordinator) applyMeta(id int, rec *record, t chromeapi.TabInfo) {
	if t.Title != "" {
		rec.title = t.Title
	}
	if t.FavIconURL != "" {
		rec.favIconURL = t.FavIconURL
	}
	if host := hostnameOf(t.URL); host != "" {
		rec.hostname = host
		c.hosts[id] = host
	}
}

func (c *Coordinator) dropRecord(id int) {
	rec := c.records[id]
	if rec == nil {
		return
	}
	rec.cancelRemoval()
	delete(c.records, id)
	c.scheduleNotify()
}

// scheduleNotify coalesces audioStatusChanged broadcasts: the first
// change arms the timer, later changes within the window ride along.
func (c *Coordinator) scheduleNotify() {
	if c.notifyPending != nil {
		return
	}
	c.notifyPending = c.sched.After(c.cfg.Timings.NotifyDebounceMs, func() {
		c.notifyPending = nil
		c.runtime.SendMessage(protocol.New(protocol.MsgAudioStatusChanged, nil), nil)
	})
}
