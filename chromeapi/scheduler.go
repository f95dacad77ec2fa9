package chromeapi

import "github.com/gopherjs/gopherjs/js"

// JSScheduler implements Scheduler over the page's setTimeout and
// setInterval. One instance serves a whole context.
type JSScheduler struct{}

// NewJSScheduler returns the browser-backed scheduler.
func NewJSScheduler() *JSScheduler { return &JSScheduler{} }

// After runs fn once after ms milliseconds.
func (s *JSScheduler) After(ms int, fn func()) CancelFunc {
	id := js.Global.Call("setTimeout", fn, ms)
	return func() { js.Global.Call("clearTimeout", id) }
}

// Every runs fn every ms milliseconds until cancelled.
func (s *JSScheduler) Every(ms int, fn func()) CancelFunc {
	id := js.Global.Call("setInterval", fn, ms)
	return func() { js.Global.Call("clearInterval", id) }
}
