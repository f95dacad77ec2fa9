// Package chromeapi wraps the WebExtension APIs the extension uses.
//
// The coordinator and popup code in this repo only see the interfaces;
// the chrome-backed implementations live in chrome.go and are wired in
// by the js entry points. Tests substitute in-memory fakes.
package chromeapi

import "github.com/simukka/tabamp/protocol"

// TabInfo mirrors the fields of a chrome.tabs.Tab the extension reads.
type TabInfo struct {
	ID         int
	URL        string
	Title      string
	FavIconURL string
	Audible    bool
	Active     bool
	Status     string // "loading" or "complete"
}

// TabChange mirrors the changeInfo object of tabs.onUpdated. Pointer
// fields distinguish "not part of this event" from a zero value.
type TabChange struct {
	Audible *bool
	URL     *string
	Title   *string
	Status  *string
}

// Sender identifies where a runtime message came from. TabID is zero
// when the sender is an extension page rather than a content script.
type Sender struct {
	TabID int
	URL   string
}

// Tabs is the subset of chrome.tabs the coordinator needs. Every call
// is asynchronous; results arrive on the event loop via the callback.
type Tabs interface {
	// Query lists all open tabs.
	Query(cb func([]TabInfo))
	// Get looks up a single tab. ok is false if the tab is gone.
	Get(id int, cb func(tab TabInfo, ok bool))
	// SendMessage delivers a message to the tab's content script.
	// ok is false when there is no receiver (agent not loaded,
	// privileged page, tab closing); that is never an error.
	SendMessage(id int, msg protocol.Message, cb func(reply protocol.Message, ok bool))
	// Event registration.
	OnUpdated(fn func(id int, change TabChange, tab TabInfo))
	OnRemoved(fn func(id int))
	OnActivated(fn func(id int))
}

// Runtime is the subset of chrome.runtime used for extension messaging.
type Runtime interface {
	// OnMessage registers the message handler. The handler calls
	// respond at most once; handled reports whether a (possibly
	// asynchronous) response will be sent.
	OnMessage(fn func(msg protocol.Message, sender Sender, respond func(protocol.Message)) (handled bool))
	// SendMessage sends to the other extension contexts (background or
	// popup). ok is false when nobody is listening.
	SendMessage(msg protocol.Message, cb func(reply protocol.Message, ok bool))
}

// Storage is the subset of chrome.storage.local: a string-keyed,
// JSON-valued store. Failures surface as ok=false and are treated as
// no-ops by callers.
type Storage interface {
	Get(key string, cb func(value string, ok bool))
	Set(key, value string, cb func(ok bool))
	Remove(key string)
}

// CancelFunc stops a pending or repeating timer. Safe to call twice.
type CancelFunc func()

// Scheduler wraps setTimeout/setInterval so timer-driven logic can run
// under test with a fake clock.
type Scheduler interface {
	After(ms int, fn func()) CancelFunc
	Every(ms int, fn func()) CancelFunc
}
