package popup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/protocol"
	"github.com/simukka/tabamp/volume"
)

// fakeRuntime answers like the background coordinator would.
type fakeRuntime struct {
	handler func(protocol.Message, chromeapi.Sender, func(protocol.Message)) bool
	sent    []protocol.Message
	answer  func(protocol.Message) (protocol.Message, bool)
}

func (f *fakeRuntime) OnMessage(fn func(protocol.Message, chromeapi.Sender, func(protocol.Message)) bool) {
	f.handler = fn
}

func (f *fakeRuntime) SendMessage(msg protocol.Message, cb func(protocol.Message, bool)) {
	f.sent = append(f.sent, msg)
	if cb == nil {
		return
	}
	if f.answer == nil {
		cb(protocol.Message{}, false)
		return
	}
	cb(f.answer(msg))
}

func TestClient_TabAudioStatus(t *testing.T) {
	rt := &fakeRuntime{answer: func(m protocol.Message) (protocol.Message, bool) {
		require.Equal(t, protocol.MsgGetTabAudioStatus, m.Type)
		return protocol.New(protocol.MsgGetTabAudioStatus, protocol.TabAudioStatusResponse{
			Tabs: []protocol.TabStatus{{ID: 7, Title: "radio", Volume: 250, Audible: true}},
		}), true
	}}
	c := NewClient(rt)

	var got []protocol.TabStatus
	c.TabAudioStatus(func(tabs []protocol.TabStatus) { got = tabs })

	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].ID)
	assert.Equal(t, volume.Percent(250), got[0].Volume)
}

func TestClient_TabAudioStatus_NoBackground(t *testing.T) {
	c := NewClient(&fakeRuntime{})
	called := false
	c.TabAudioStatus(func(tabs []protocol.TabStatus) {
		called = true
		assert.Nil(t, tabs)
	})
	assert.True(t, called)
}

func TestClient_SetVolume(t *testing.T) {
	rt := &fakeRuntime{answer: func(m protocol.Message) (protocol.Message, bool) {
		return protocol.New(m.Type, protocol.Ack{Success: true}), true
	}}
	c := NewClient(rt)

	okSeen := false
	c.SetVolume(3, 420, true, func(ok bool) { okSeen = ok })
	require.True(t, okSeen)

	require.Len(t, rt.sent, 1)
	var req protocol.SetVolumeRequest
	require.NoError(t, rt.sent[0].Decode(&req))
	assert.Equal(t, 3, req.TabID)
	assert.Equal(t, volume.Percent(420), req.Volume)
	assert.True(t, req.ApplyToDomain)
}

func TestClient_Volume_DefaultsWhenUnanswered(t *testing.T) {
	c := NewClient(&fakeRuntime{})
	var got volume.Percent
	c.Volume(9, func(v volume.Percent) { got = v })
	assert.Equal(t, volume.DefaultPercent, got)
}

func TestClient_OnAudioStatusChanged(t *testing.T) {
	rt := &fakeRuntime{}
	c := NewClient(rt)
	fired := 0
	c.OnAudioStatusChanged(func() { fired++ })

	handled := rt.handler(protocol.New(protocol.MsgAudioStatusChanged, nil), chromeapi.Sender{}, func(protocol.Message) {})
	assert.False(t, handled, "broadcasts take no response")
	assert.Equal(t, 1, fired)

	rt.handler(protocol.New(protocol.MsgSetVolume, nil), chromeapi.Sender{}, func(protocol.Message) {})
	assert.Equal(t, 1, fired)
}
