package content

import "github.com/simukka/tabamp/weblog"

// Pipeline is the page's amplification pipeline: one shared gain stage
// plus the set of element source nodes connected to it. At most one
// pipeline exists per page; on navigation it is discarded and a fresh
// one built, never mutated in place, because source nodes cannot be
// reattached once their graph is gone.
type Pipeline struct {
	graph       Graph
	stage       GainStage
	disconnects map[MediaElement]func()
	broken      bool
}

// newPipeline builds the shared gain stage. A page without Web Audio
// yields a broken pipeline: callers then stay on the native path for
// the rest of the page's lifetime.
func newPipeline(g Graph) *Pipeline {
	p := &Pipeline{
		graph:       g,
		disconnects: make(map[MediaElement]func()),
	}
	stage, ok := g.CreateStage()
	if !ok {
		weblog.Warn("audio graph unavailable, amplification disabled for this page")
		p.broken = true
		return p
	}
	p.stage = stage
	return p
}

// Broken reports whether graph construction failed.
func (p *Pipeline) Broken() bool { return p.broken }

// SetGain sets the shared stage's gain value.
func (p *Pipeline) SetGain(v float64) {
	if !p.broken {
		p.stage.SetGain(v)
	}
}

// Connect wires el into the gain stage. Idempotent per element.
func (p *Pipeline) Connect(el MediaElement) error {
	if p.broken {
		return errBrokenPipeline
	}
	if _, ok := p.disconnects[el]; ok {
		return nil
	}
	disconnect, err := p.graph.Connect(el)
	if err != nil {
		return err
	}
	p.disconnects[el] = disconnect
	return nil
}

// Connected reports whether el is wired into the stage.
func (p *Pipeline) Connected(el MediaElement) bool {
	_, ok := p.disconnects[el]
	return ok
}

// HasConnections reports whether any element is wired in.
func (p *Pipeline) HasConnections() bool { return len(p.disconnects) > 0 }

// Disconnect detaches el's source node. The element is afterwards
// permanently pipeline-ineligible; only removal paths call this.
func (p *Pipeline) Disconnect(el MediaElement) {
	if d, ok := p.disconnects[el]; ok {
		d()
		delete(p.disconnects, el)
	}
}

// Close tears the whole pipeline down.
func (p *Pipeline) Close() {
	for el, d := range p.disconnects {
		d()
		delete(p.disconnects, el)
	}
	p.graph.Close()
}
