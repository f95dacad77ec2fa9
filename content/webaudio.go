package content

import (
	"errors"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/tabamp/weblog"
)

// jsGraph implements Graph over the page's Web Audio API.
type jsGraph struct {
	ctx       *js.Object
	stageNode *js.Object
}

// NewJSGraph returns the Web-Audio-backed graph for the current page.
func NewJSGraph() Graph { return &jsGraph{} }

// jsTry runs fn and converts a thrown JS exception into an error.
// createMediaElementSource throws on cross-origin media and on elements
// that already belong to another context.
func jsTry(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(*js.Error); ok {
				err = errors.New(jsErr.Get("message").String())
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

func (g *jsGraph) context() *js.Object {
	if g.ctx != nil {
		return g.ctx
	}
	ctor := js.Global.Get("AudioContext")
	if ctor == nil || ctor == js.Undefined {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == nil || ctor == js.Undefined {
		return nil
	}
	if err := jsTry(func() { g.ctx = ctor.New() }); err != nil {
		weblog.Warn("AudioContext construction failed:", err)
		return nil
	}
	return g.ctx
}

type jsGainStage struct {
	node *js.Object
}

func (s *jsGainStage) SetGain(value float64) {
	s.node.Get("gain").Set("value", value)
}

// CreateStage builds a gain node wired to the context destination.
func (g *jsGraph) CreateStage() (GainStage, bool) {
	ctx := g.context()
	if ctx == nil {
		return nil, false
	}
	var node *js.Object
	err := jsTry(func() {
		node = ctx.Call("createGain")
		node.Call("connect", ctx.Get("destination"))
	})
	if err != nil {
		weblog.Warn("gain stage construction failed:", err)
		return nil, false
	}
	g.stageNode = node
	return &jsGainStage{node: node}, true
}

// Connect routes el through the stage via a MediaElementSource node.
func (g *jsGraph) Connect(el MediaElement) (func(), error) {
	ctx := g.context()
	if ctx == nil {
		return nil, errBrokenPipeline
	}
	jel, ok := el.(*jsMediaElement)
	if !ok {
		return nil, errors.New("content: element is not a DOM element")
	}
	if g.stageNode == nil {
		return nil, errBrokenPipeline
	}
	var src *js.Object
	err := jsTry(func() {
		src = ctx.Call("createMediaElementSource", jel.obj)
		src.Call("connect", g.stageNode)
	})
	if err != nil {
		return nil, err
	}
	return func() {
		_ = jsTry(func() { src.Call("disconnect") })
	}, nil
}

func (g *jsGraph) Suspended() bool {
	ctx := g.context()
	return ctx != nil && ctx.Get("state").String() == "suspended"
}

func (g *jsGraph) Resume(cb func(bool)) {
	ctx := g.context()
	if ctx == nil {
		cb(false)
		return
	}
	var p *js.Object
	if err := jsTry(func() { p = ctx.Call("resume") }); err != nil {
		cb(false)
		return
	}
	p.Call("then",
		func() { cb(ctx.Get("state").String() == "running") },
		func(*js.Object) { cb(false) },
	)
}

func (g *jsGraph) Close() {
	if g.ctx == nil {
		return
	}
	ctx := g.ctx
	g.ctx = nil
	g.stageNode = nil
	_ = jsTry(func() { ctx.Call("close") })
}
