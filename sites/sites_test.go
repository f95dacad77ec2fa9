package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForHostname_Selection(t *testing.T) {
	tests := []struct {
		host string
		name string
	}{
		{"www.youtube.com", "youtube"},
		{"music.youtube.com", "youtube-music"},
		{"soundcloud.com", "soundcloud"},
		{"www.netflix.com", "netflix"},
		{"open.spotify.com", "spotify"},
		{"example.com", "default"},
		{"", "default"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, ForHostname(tt.host).Name(), "host %q", tt.host)
	}
}

func TestMatch_Wildcards(t *testing.T) {
	assert.True(t, match("*", "anything.example"))
	assert.True(t, match("*.example.com", "cdn.example.com"))
	assert.True(t, match("*.example.com", "example.com"))
	assert.False(t, match("*.example.com", "example.org"))
	assert.False(t, match("example.com", "www.example.com"))
}

func TestCappedHandler_PinsToNativeCeiling(t *testing.T) {
	h := ForHostname("www.netflix.com")
	assert.Equal(t, 100, h.MaxPercent())
}

func TestEagerHandler_AlwaysReportsAudio(t *testing.T) {
	h := ForHostname("soundcloud.com")
	assert.True(t, h.ReportsAudio(false))
	assert.True(t, h.ReportsAudio(true))
}

func TestDefaultHandler_IsTransparent(t *testing.T) {
	h := ForHostname("example.com")
	assert.Nil(t, h.DiscoveryRoots())
	assert.Zero(t, h.MaxPercent())
	assert.False(t, h.ReportsAudio(false))
	assert.True(t, h.ReportsAudio(true))
}
