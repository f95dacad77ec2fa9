package background

import (
	"net/url"

	"github.com/simukka/tabamp/chromeapi"
)

// record is the coordinator's view of one audio-bearing tab. Created on
// the first audible or media signal, destroyed on tab close or after the
// debounced-silence grace period.
type record struct {
	isAudible          bool // browser-reported "producing sound right now"
	hasAudioCapability bool // agent-reported "contains media elements"
	hostname           string
	title              string
	favIconURL         string
	pendingRemoval     chromeapi.CancelFunc
}

// cancelRemoval stops a pending debounced removal, if any.
func (r *record) cancelRemoval() {
	if r.pendingRemoval != nil {
		r.pendingRemoval()
		r.pendingRemoval = nil
	}
}

// hostnameOf extracts the hostname from a tab URL. Empty for privileged
// or unparseable URLs.
func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
