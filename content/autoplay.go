package content

import (
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/config"
	"github.com/simukka/tabamp/weblog"
)

// resumer nags a suspended AudioContext back to life. Browsers start
// contexts suspended until a user gesture, which would otherwise mute
// the whole pipeline; the resumer retries on a timer for a bounded
// window and also fires immediately on interaction pokes.
type resumer struct {
	graph Graph
	sched chromeapi.Scheduler
	cfg   config.Config

	stopRetry  chromeapi.CancelFunc
	stopWindow chromeapi.CancelFunc
	done       bool
}

func newResumer(g Graph, sched chromeapi.Scheduler, cfg config.Config) *resumer {
	return &resumer{graph: g, sched: sched, cfg: cfg}
}

// start begins the retry loop. Idempotent; a no-op once the context
// has resumed or the window has expired.
func (r *resumer) start() {
	if r.done || r.stopRetry != nil {
		return
	}
	if !r.graph.Suspended() {
		r.finish()
		return
	}
	r.stopRetry = r.sched.Every(r.cfg.Timings.AutoplayRetryMs, r.attempt)
	r.stopWindow = r.sched.After(r.cfg.Timings.AutoplayWindowMs, func() {
		r.stopWindow = nil
		weblog.Debug("autoplay resume window expired, waiting for interaction")
		r.stopLoop()
	})
}

// poke is the user-interaction path: gestures are exactly what unlocks
// a suspended context, so try right away and restart the loop if the
// window had expired.
func (r *resumer) poke() {
	if r.done {
		return
	}
	if r.stopRetry == nil {
		r.start()
	}
	r.attempt()
}

func (r *resumer) attempt() {
	if r.done {
		return
	}
	if !r.graph.Suspended() {
		r.finish()
		return
	}
	r.graph.Resume(func(resumed bool) {
		if resumed {
			weblog.Debug("audio context resumed")
			r.finish()
		}
	})
}

func (r *resumer) stopLoop() {
	if r.stopRetry != nil {
		r.stopRetry()
		r.stopRetry = nil
	}
}

// finish permanently stops the resumer.
func (r *resumer) finish() {
	r.done = true
	r.stopLoop()
	if r.stopWindow != nil {
		r.stopWindow()
		r.stopWindow = nil
	}
}
