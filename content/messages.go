package content

import (
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/protocol"
	"github.com/simukka/tabamp/weblog"
)

// HandleMessage services one coordinator request. It is registered on
// runtime.onMessage by the content entry point. Returns false for
// message types this agent does not own so other listeners (and the
// coordinator's broadcasts, which content scripts ignore) pass through.
func (a *Agent) HandleMessage(msg protocol.Message, _ chromeapi.Sender, respond func(protocol.Message)) bool {
	switch msg.Type {
	case protocol.MsgSetVolume:
		var req protocol.SetVolumeRequest
		if err := msg.Decode(&req); err != nil {
			weblog.Warn("malformed setVolume:", err)
			return false
		}
		a.SetVolume(req.Volume)
		respond(protocol.New(protocol.MsgSetVolume, protocol.Ack{Success: true}))
		return true

	case protocol.MsgGetVolume:
		respond(protocol.New(protocol.MsgGetVolume, protocol.VolumeResponse{Volume: a.Volume()}))
		return true

	case protocol.MsgCheckForAudio:
		respond(protocol.New(protocol.MsgCheckForAudio, protocol.HasAudioResponse{HasAudio: a.HasAudio()}))
		return true
	}
	return false
}
