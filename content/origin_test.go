package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossOriginLikely(t *testing.T) {
	const page = "https://example.com"
	tests := []struct {
		name  string
		srcs  []string
		cross bool
	}{
		{"no sources", nil, false},
		{"empty source", []string{""}, false},
		{"relative url", []string{"/media/clip.mp3"}, false},
		{"same origin absolute", []string{"https://example.com/clip.mp3"}, false},
		{"same origin case folded", []string{"HTTPS://EXAMPLE.COM/clip.mp3"}, false},
		{"blob url", []string{"blob:https://example.com/uuid"}, false},
		{"data url", []string{"data:audio/wav;base64,AAAA"}, false},
		{"media stream", []string{"mediastream:stream-id"}, false},
		{"different host", []string{"https://cdn.other.net/clip.mp3"}, true},
		{"different scheme", []string{"http://example.com/clip.mp3"}, true},
		{"different port", []string{"https://example.com:8443/clip.mp3"}, true},
		{"subdomain", []string{"https://media.example.com/clip.mp3"}, true},
		{"one cross among same", []string{"/a.mp3", "https://cdn.other.net/b.mp3"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cross, crossOriginLikely(page, tt.srcs))
		})
	}
}
