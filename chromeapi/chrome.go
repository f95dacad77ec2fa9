package chromeapi

import (
	"encoding/json"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/tabamp/protocol"
	"github.com/simukka/tabamp/weblog"
)

// chromeRoot returns the chrome (or browser) API object.
func chromeRoot() *js.Object {
	c := js.Global.Get("chrome")
	if c == nil || c == js.Undefined {
		c = js.Global.Get("browser")
	}
	return c
}

// toJS converts a Go message to a plain JS object by round-tripping
// through JSON, which is also what keeps the wire format identical to
// the protocol package's tags.
func toJS(msg protocol.Message) *js.Object {
	data, err := json.Marshal(msg)
	if err != nil {
		return js.Global.Get("Object").New()
	}
	return js.Global.Get("JSON").Call("parse", string(data))
}

// fromJS converts a JS message object back to a Go message. ok is false
// for anything that does not look like a protocol message.
func fromJS(o *js.Object) (protocol.Message, bool) {
	if o == nil || o == js.Undefined {
		return protocol.Message{}, false
	}
	raw := js.Global.Get("JSON").Call("stringify", o).String()
	var msg protocol.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil || msg.Type == "" {
		return protocol.Message{}, false
	}
	return msg, true
}

func tabFromJS(o *js.Object) TabInfo {
	t := TabInfo{
		ID:     o.Get("id").Int(),
		Active: o.Get("active").Bool(),
	}
	if v := o.Get("url"); v != js.Undefined {
		t.URL = v.String()
	}
	if v := o.Get("title"); v != js.Undefined {
		t.Title = v.String()
	}
	if v := o.Get("favIconUrl"); v != js.Undefined {
		t.FavIconURL = v.String()
	}
	if v := o.Get("audible"); v != js.Undefined {
		t.Audible = v.Bool()
	}
	if v := o.Get("status"); v != js.Undefined {
		t.Status = v.String()
	}
	return t
}

// ChromeTabs implements Tabs over chrome.tabs.
type ChromeTabs struct{}

// NewChromeTabs returns the chrome.tabs-backed implementation.
func NewChromeTabs() *ChromeTabs { return &ChromeTabs{} }

func (c *ChromeTabs) api() *js.Object { return chromeRoot().Get("tabs") }

// Query lists all open tabs.
func (c *ChromeTabs) Query(cb func([]TabInfo)) {
	c.api().Call("query", js.Global.Get("Object").New(), func(raw *js.Object) {
		tabs := make([]TabInfo, 0, raw.Length())
		for i := 0; i < raw.Length(); i++ {
			tabs = append(tabs, tabFromJS(raw.Index(i)))
		}
		cb(tabs)
	})
}

// Get looks up a single tab by id.
func (c *ChromeTabs) Get(id int, cb func(TabInfo, bool)) {
	c.api().Call("get", id, func(raw *js.Object) {
		// chrome sets lastError when the tab is gone.
		if err := chromeRoot().Get("runtime").Get("lastError"); err != nil && err != js.Undefined {
			cb(TabInfo{}, false)
			return
		}
		cb(tabFromJS(raw), true)
	})
}

// SendMessage delivers a message to the tab's content script,
// swallowing the "no receiving end" error.
func (c *ChromeTabs) SendMessage(id int, msg protocol.Message, cb func(protocol.Message, bool)) {
	c.api().Call("sendMessage", id, toJS(msg), func(raw *js.Object) {
		if err := chromeRoot().Get("runtime").Get("lastError"); err != nil && err != js.Undefined {
			weblog.Debug("tab message dropped", id, err.Get("message"))
			if cb != nil {
				cb(protocol.Message{}, false)
			}
			return
		}
		if cb == nil {
			return
		}
		reply, ok := fromJS(raw)
		cb(reply, ok)
	})
}

// OnUpdated registers for tabs.onUpdated.
func (c *ChromeTabs) OnUpdated(fn func(int, TabChange, TabInfo)) {
	c.api().Get("onUpdated").Call("addListener", func(id *js.Object, change *js.Object, tab *js.Object) {
		var ch TabChange
		if v := change.Get("audible"); v != js.Undefined {
			b := v.Bool()
			ch.Audible = &b
		}
		if v := change.Get("url"); v != js.Undefined {
			s := v.String()
			ch.URL = &s
		}
		if v := change.Get("title"); v != js.Undefined {
			s := v.String()
			ch.Title = &s
		}
		if v := change.Get("status"); v != js.Undefined {
			s := v.String()
			ch.Status = &s
		}
		fn(id.Int(), ch, tabFromJS(tab))
	})
}

// OnRemoved registers for tabs.onRemoved.
func (c *ChromeTabs) OnRemoved(fn func(int)) {
	c.api().Get("onRemoved").Call("addListener", func(id *js.Object) {
		fn(id.Int())
	})
}

// OnActivated registers for tabs.onActivated.
func (c *ChromeTabs) OnActivated(fn func(int)) {
	c.api().Get("onActivated").Call("addListener", func(info *js.Object) {
		fn(info.Get("tabId").Int())
	})
}

// ChromeRuntime implements Runtime over chrome.runtime.
type ChromeRuntime struct{}

// NewChromeRuntime returns the chrome.runtime-backed implementation.
func NewChromeRuntime() *ChromeRuntime { return &ChromeRuntime{} }

// OnMessage registers the runtime message listener. Returning true from
// the JS listener keeps the sendResponse channel open for asynchronous
// replies, which is why the Go handler reports handled.
func (c *ChromeRuntime) OnMessage(fn func(protocol.Message, Sender, func(protocol.Message)) bool) {
	chromeRoot().Get("runtime").Get("onMessage").Call("addListener",
		func(raw *js.Object, sender *js.Object, sendResponse *js.Object) bool {
			msg, ok := fromJS(raw)
			if !ok {
				return false
			}
			s := Sender{}
			if tab := sender.Get("tab"); tab != nil && tab != js.Undefined {
				s.TabID = tab.Get("id").Int()
			}
			if u := sender.Get("url"); u != js.Undefined {
				s.URL = u.String()
			}
			responded := false
			respond := func(reply protocol.Message) {
				if responded {
					return
				}
				responded = true
				sendResponse.Invoke(toJS(reply))
			}
			return fn(msg, s, respond)
		})
}

// SendMessage sends to the background or popup context.
func (c *ChromeRuntime) SendMessage(msg protocol.Message, cb func(protocol.Message, bool)) {
	chromeRoot().Get("runtime").Call("sendMessage", toJS(msg), func(raw *js.Object) {
		if err := chromeRoot().Get("runtime").Get("lastError"); err != nil && err != js.Undefined {
			weblog.Debug("runtime message dropped", err.Get("message"))
			if cb != nil {
				cb(protocol.Message{}, false)
			}
			return
		}
		if cb == nil {
			return
		}
		reply, ok := fromJS(raw)
		cb(reply, ok)
	})
}

// ChromeStorage implements Storage over chrome.storage.local.
type ChromeStorage struct{}

// NewChromeStorage returns the chrome.storage.local-backed implementation.
func NewChromeStorage() *ChromeStorage { return &ChromeStorage{} }

func (c *ChromeStorage) api() *js.Object { return chromeRoot().Get("storage").Get("local") }

// Get reads one key. ok is false when the key is absent or the read failed.
func (c *ChromeStorage) Get(key string, cb func(string, bool)) {
	c.api().Call("get", key, func(items *js.Object) {
		if err := chromeRoot().Get("runtime").Get("lastError"); err != nil && err != js.Undefined {
			weblog.Warn("storage read failed", key, err.Get("message"))
			cb("", false)
			return
		}
		v := items.Get(key)
		if v == nil || v == js.Undefined {
			cb("", false)
			return
		}
		cb(v.String(), true)
	})
}

// Set writes one key.
func (c *ChromeStorage) Set(key, value string, cb func(bool)) {
	items := js.Global.Get("Object").New()
	items.Set(key, value)
	c.api().Call("set", items, func() {
		ok := true
		if err := chromeRoot().Get("runtime").Get("lastError"); err != nil && err != js.Undefined {
			weblog.Warn("storage write failed", key, err.Get("message"))
			ok = false
		}
		if cb != nil {
			cb(ok)
		}
	})
}

// Remove deletes one key, best-effort.
func (c *ChromeStorage) Remove(key string) {
	c.api().Call("remove", key)
}
