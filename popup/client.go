// Package popup implements the extension's control surface: the volume
// slider, preset buttons and per-tab audio list shown when the toolbar
// icon is clicked. The Client half speaks the background protocol and
// runs under native tests; the Panel half renders the embedded template
// into the popup document.
package popup

import (
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/protocol"
	"github.com/simukka/tabamp/volume"
)

// Client is the popup's connection to the coordinator.
type Client struct {
	rt chromeapi.Runtime
}

// NewClient wraps the runtime messaging channel.
func NewClient(rt chromeapi.Runtime) *Client { return &Client{rt: rt} }

// TabAudioStatus fetches the coordinator's list of tabs with audio.
func (c *Client) TabAudioStatus(cb func([]protocol.TabStatus)) {
	c.rt.SendMessage(protocol.New(protocol.MsgGetTabAudioStatus, nil), func(reply protocol.Message, ok bool) {
		if !ok {
			cb(nil)
			return
		}
		var resp protocol.TabAudioStatusResponse
		if err := reply.Decode(&resp); err != nil {
			cb(nil)
			return
		}
		cb(resp.Tabs)
	})
}

// SetVolume applies a volume to one tab, optionally remembering it for
// the tab's whole domain.
func (c *Client) SetVolume(tabID int, p volume.Percent, applyToDomain bool, cb func(ok bool)) {
	req := protocol.SetVolumeRequest{TabID: tabID, Volume: p, ApplyToDomain: applyToDomain}
	c.rt.SendMessage(protocol.New(protocol.MsgSetVolume, req), func(reply protocol.Message, ok bool) {
		if cb == nil {
			return
		}
		var ack protocol.Ack
		cb(ok && reply.Decode(&ack) == nil && ack.Success)
	})
}

// Volume fetches a tab's current volume.
func (c *Client) Volume(tabID int, cb func(volume.Percent)) {
	req := protocol.GetVolumeRequest{TabID: tabID}
	c.rt.SendMessage(protocol.New(protocol.MsgGetVolume, req), func(reply protocol.Message, ok bool) {
		if !ok {
			cb(volume.DefaultPercent)
			return
		}
		var resp protocol.VolumeResponse
		if err := reply.Decode(&resp); err != nil {
			cb(volume.DefaultPercent)
			return
		}
		cb(resp.Volume)
	})
}

// ApplyToAll sets the same volume on every tab in the audio list.
func (c *Client) ApplyToAll(p volume.Percent, cb func(ok bool)) {
	c.rt.SendMessage(protocol.New(protocol.MsgApplyToAllTabs, protocol.ApplyToAllRequest{Volume: p}), func(reply protocol.Message, ok bool) {
		if cb == nil {
			return
		}
		var ack protocol.Ack
		cb(ok && reply.Decode(&ack) == nil && ack.Success)
	})
}

// ResetAll restores every tab to the default volume.
func (c *Client) ResetAll(cb func(ok bool)) {
	c.rt.SendMessage(protocol.New(protocol.MsgResetAllTabs, nil), func(reply protocol.Message, ok bool) {
		if cb == nil {
			return
		}
		var ack protocol.Ack
		cb(ok && reply.Decode(&ack) == nil && ack.Success)
	})
}

// OnAudioStatusChanged subscribes to the coordinator's change
// broadcast so the tab list refreshes while the popup is open.
func (c *Client) OnAudioStatusChanged(fn func()) {
	c.rt.OnMessage(func(msg protocol.Message, _ chromeapi.Sender, _ func(protocol.Message)) bool {
		if msg.Type == protocol.MsgAudioStatusChanged {
			fn()
		}
		return false
	})
}
