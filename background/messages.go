package background

import (
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/protocol"
)

// handleMessage routes runtime messages from the popup and from content
// script agents. Unknown or malformed messages are ignored, per the
// propagation policy: nothing here ever becomes a user-facing error.
func (c *Coordinator) handleMessage(msg protocol.Message, sender chromeapi.Sender, respond func(protocol.Message)) bool {
	switch msg.Type {
	case protocol.MsgGetTabAudioStatus:
		c.AudioTabs(func(tabs []protocol.TabStatus) {
			respond(protocol.New(protocol.MsgGetTabAudioStatus, protocol.TabAudioStatusResponse{Tabs: tabs}))
		})
		return true

	case protocol.MsgSetVolume:
		// Tab-scoped set from the popup. Agents never send setVolume.
		var req protocol.SetVolumeRequest
		if err := msg.Decode(&req); err != nil || req.TabID == 0 {
			return false
		}
		c.SetVolume(req.TabID, req.Volume, req.ApplyToDomain)
		respond(protocol.New(protocol.MsgSetVolume, protocol.Ack{Success: true}))
		return true

	case protocol.MsgGetVolume:
		var req protocol.GetVolumeRequest
		if err := msg.Decode(&req); err != nil {
			return false
		}
		respond(protocol.New(protocol.MsgGetVolume, protocol.VolumeResponse{Volume: c.GetVolume(req.TabID)}))
		return true

	case protocol.MsgApplyToAllTabs:
		var req protocol.ApplyToAllRequest
		if err := msg.Decode(&req); err != nil {
			return false
		}
		c.ApplyToAllTabs(req.Volume)
		respond(protocol.New(protocol.MsgApplyToAllTabs, protocol.Ack{Success: true}))
		return true

	case protocol.MsgResetAllTabs:
		c.ResetAllTabs()
		respond(protocol.New(protocol.MsgResetAllTabs, protocol.Ack{Success: true}))
		return true

	case protocol.MsgNotifyAudio:
		var req protocol.NotifyAudioRequest
		if err := msg.Decode(&req); err != nil {
			return false
		}
		c.handleNotifyAudio(sender.TabID, req.HasActiveAudio)
		respond(protocol.New(protocol.MsgNotifyAudio, protocol.Ack{Success: true}))
		return true
	}
	return false
}
