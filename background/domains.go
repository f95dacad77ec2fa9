package background

import (
	"encoding/json"

	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/volume"
	"github.com/simukka/tabamp/weblog"
)

// domainVolumesKey is the one durable piece of state: the user's
// per-hostname volume preferences.
const domainVolumesKey = "domainVolumes"

// DomainStore maps hostname -> remembered volume. Writes go through to
// chrome.storage; a failed write keeps the in-memory value and logs.
type DomainStore struct {
	store   chromeapi.Storage
	volumes map[string]volume.Percent
}

// NewDomainStore returns an empty store backed by st.
func NewDomainStore(st chromeapi.Storage) *DomainStore {
	return &DomainStore{
		store:   st,
		volumes: make(map[string]volume.Percent),
	}
}

// Load rehydrates the store, then calls done.
func (d *DomainStore) Load(done func()) {
	d.store.Get(domainVolumesKey, func(raw string, ok bool) {
		if ok {
			parsed := make(map[string]volume.Percent)
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				d.volumes = parsed
			} else {
				weblog.Warn("domain volume store corrupt, starting empty")
			}
		}
		if done != nil {
			done()
		}
	})
}

// Get returns the remembered volume for hostname.
func (d *DomainStore) Get(hostname string) (volume.Percent, bool) {
	p, ok := d.volumes[hostname]
	return p, ok
}

// Set remembers a volume for hostname. Setting the default volume
// clears the entry: "back to normal" means no override.
func (d *DomainStore) Set(hostname string, p volume.Percent) {
	if hostname == "" {
		return
	}
	p = volume.Clamp(p)
	if p.IsDefault() {
		delete(d.volumes, hostname)
	} else {
		d.volumes[hostname] = p
	}
	d.persist()
}

func (d *DomainStore) persist() {
	data, err := json.Marshal(d.volumes)
	if err != nil {
		return
	}
	d.store.Set(domainVolumesKey, string(data), func(ok bool) {
		if !ok {
			weblog.Warn("domain volume persist failed")
		}
	})
}
