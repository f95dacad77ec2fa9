package content

import "github.com/gopherjs/gopherjs/js"

// trackedProp marks a DOM element as already ingested. The marker lives
// on the element itself so rediscovery through any path (scan, mutation,
// play event, patched constructor) dedupes regardless of which Go
// wrapper saw it first. The stored value is the watcher's discovery
// generation: elements that survive an SPA navigation carry a stale
// generation and re-enter the discovery stream.
const trackedProp = "__tabampTracked"

// jsMediaElement wraps one <audio>/<video> DOM element.
type jsMediaElement struct {
	obj *js.Object
	gen func() int
}

func wrapElement(o *js.Object, gen func() int) *jsMediaElement {
	return &jsMediaElement{obj: o, gen: gen}
}

func (e *jsMediaElement) Tracked() bool {
	v := e.obj.Get(trackedProp)
	return v != nil && v != js.Undefined && v.Int() == e.gen()
}

func (e *jsMediaElement) MarkTracked() { e.obj.Set(trackedProp, e.gen()) }

func (e *jsMediaElement) SetNativeVolume(fraction float64) {
	_ = jsTry(func() { e.obj.Set("volume", fraction) })
}

// SourceURLs collects currentSrc, src and the src of <source> children.
func (e *jsMediaElement) SourceURLs() []string {
	var srcs []string
	add := func(v *js.Object) {
		if v != nil && v != js.Undefined {
			if s := v.String(); s != "" {
				srcs = append(srcs, s)
			}
		}
	}
	add(e.obj.Get("currentSrc"))
	add(e.obj.Get("src"))
	if kids := e.obj.Call("querySelectorAll", "source"); kids != nil && kids != js.Undefined {
		for i := 0; i < kids.Length(); i++ {
			add(kids.Index(i).Get("src"))
		}
	}
	return srcs
}

func (e *jsMediaElement) Playing() bool {
	return !e.obj.Get("paused").Bool() && !e.obj.Get("ended").Bool() &&
		e.obj.Get("readyState").Int() >= 2
}

func (e *jsMediaElement) InDocument() bool {
	return e.obj.Get("isConnected").Bool()
}

func (e *jsMediaElement) OnPlay(fn func()) {
	e.obj.Call("addEventListener", "play", func() { fn() })
	e.obj.Call("addEventListener", "playing", func() { fn() })
}

func (e *jsMediaElement) OnEnded(fn func()) {
	e.obj.Call("addEventListener", "ended", func() { fn() })
	e.obj.Call("addEventListener", "pause", func() { fn() })
}
