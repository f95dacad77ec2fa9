package background

import (
	"encoding/json"

	"github.com/simukka/tabamp/volume"
	"github.com/simukka/tabamp/weblog"
)

// tabStateKey holds the best-effort per-tab snapshot. Unlike the domain
// volume map it is just a cache: losing it costs nothing but a reset to
// defaults after the background process restarts.
const tabStateKey = "tabState"

type snapshot struct {
	Volumes map[int]volume.Percent `json:"volumes"`
	Audio   map[int]bool           `json:"audio"`
}

// saveSnapshot persists per-tab volumes and audio capability,
// best-effort. A failed write costs nothing but the cache.
func (c *Coordinator) saveSnapshot() {
	snap := snapshot{
		Volumes: c.volumes,
		Audio:   make(map[int]bool, len(c.records)),
	}
	for id, rec := range c.records {
		if rec.hasAudioCapability {
			snap.Audio[id] = true
		}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	c.storage.Set(tabStateKey, string(data), nil)
}

// loadSnapshot rehydrates the per-tab snapshot, then calls done. The
// sweep that follows prunes entries whose tabs no longer exist.
func (c *Coordinator) loadSnapshot(done func()) {
	c.storage.Get(tabStateKey, func(raw string, ok bool) {
		if ok {
			var snap snapshot
			if err := json.Unmarshal([]byte(raw), &snap); err == nil {
				for id, p := range snap.Volumes {
					c.volumes[id] = volume.Clamp(p)
				}
				for id, has := range snap.Audio {
					if has {
						rec, _ := c.ensureRecord(id)
						rec.hasAudioCapability = true
					}
				}
			} else {
				weblog.Warn("tab state snapshot corrupt, ignoring")
			}
		}
		if done != nil {
			done()
		}
	})
}
