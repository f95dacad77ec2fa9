package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simukka/tabamp/volume"
)

func TestMessage_RoundTrip(t *testing.T) {
	msg := New(MsgSetVolume, SetVolumeRequest{TabID: 12, Volume: 300, ApplyToDomain: true})
	assert.Equal(t, MsgSetVolume, msg.Type)

	var req SetVolumeRequest
	require.NoError(t, msg.Decode(&req))
	assert.Equal(t, 12, req.TabID)
	assert.Equal(t, volume.Percent(300), req.Volume)
	assert.True(t, req.ApplyToDomain)
}

func TestMessage_NilPayload(t *testing.T) {
	msg := New(MsgCheckForAudio, nil)
	assert.Empty(t, msg.Data)

	var resp HasAudioResponse
	assert.ErrorIs(t, msg.Decode(&resp), ErrMalformed)
}

func TestMessage_MalformedPayload(t *testing.T) {
	msg := Message{Type: MsgNotifyAudio, Data: []byte(`{"hasActiveAudio":`)}
	var req NotifyAudioRequest
	assert.ErrorIs(t, msg.Decode(&req), ErrMalformed)
}
