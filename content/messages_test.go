package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/protocol"
	"github.com/simukka/tabamp/volume"
)

func send(t *testing.T, a *Agent, msg protocol.Message) (protocol.Message, bool) {
	t.Helper()
	var reply protocol.Message
	got := false
	handled := a.HandleMessage(msg, chromeapi.Sender{}, func(m protocol.Message) {
		reply = m
		got = true
	})
	return reply, handled && got
}

func TestHandleMessage_SetVolume(t *testing.T) {
	h := newAgentHarness(nil)
	el := newFakeElement()
	h.watcher.discover(el)

	reply, ok := send(t, h.agent, protocol.New(protocol.MsgSetVolume, protocol.SetVolumeRequest{Volume: 60}))
	require.True(t, ok)

	var ack protocol.Ack
	require.NoError(t, reply.Decode(&ack))
	assert.True(t, ack.Success)
	assert.InDelta(t, 0.6, el.volume, 1e-9)
}

func TestHandleMessage_GetVolume(t *testing.T) {
	h := newAgentHarness(nil)
	h.agent.SetVolume(240)

	reply, ok := send(t, h.agent, protocol.New(protocol.MsgGetVolume, nil))
	require.True(t, ok)

	var resp protocol.VolumeResponse
	require.NoError(t, reply.Decode(&resp))
	assert.Equal(t, volume.Percent(240), resp.Volume)
}

func TestHandleMessage_CheckForAudio(t *testing.T) {
	h := newAgentHarness(nil)

	reply, ok := send(t, h.agent, protocol.New(protocol.MsgCheckForAudio, nil))
	require.True(t, ok)
	var resp protocol.HasAudioResponse
	require.NoError(t, reply.Decode(&resp))
	assert.False(t, resp.HasAudio)

	h.watcher.discover(newFakeElement())
	reply, ok = send(t, h.agent, protocol.New(protocol.MsgCheckForAudio, nil))
	require.True(t, ok)
	require.NoError(t, reply.Decode(&resp))
	assert.True(t, resp.HasAudio)
}

func TestHandleMessage_IgnoresForeignTypes(t *testing.T) {
	h := newAgentHarness(nil)
	_, ok := send(t, h.agent, protocol.New(protocol.MsgAudioStatusChanged, nil))
	assert.False(t, ok)

	_, ok = send(t, h.agent, protocol.Message{Type: "bogus"})
	assert.False(t, ok)
}

func TestHandleMessage_MalformedSetVolumeIgnored(t *testing.T) {
	h := newAgentHarness(nil)
	_, ok := send(t, h.agent, protocol.Message{Type: protocol.MsgSetVolume})
	assert.False(t, ok)
}
