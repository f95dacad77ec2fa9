// Package protocol defines the wire messages exchanged between the
// extension's contexts: popup -> background, background -> content
// script, and content script -> background. Messages travel over
// chrome.runtime/chrome.tabs messaging as JSON.
package protocol

import (
	"encoding/json"
	"errors"

	"github.com/simukka/tabamp/volume"
)

// MessageType identifies the type of extension message.
type MessageType string

const (
	// Popup/background -> content script, and popup -> background with
	// a tab id attached.
	MsgSetVolume MessageType = "setVolume"
	MsgGetVolume MessageType = "getVolume"

	// Background -> content script.
	MsgCheckForAudio MessageType = "checkForAudio"

	// Content script -> background.
	MsgNotifyAudio MessageType = "notifyAudio"

	// Popup -> background.
	MsgGetTabAudioStatus MessageType = "getTabAudioStatus"
	MsgApplyToAllTabs    MessageType = "applyToAllTabs"
	MsgResetAllTabs      MessageType = "resetAllTabs"

	// Background -> popup event, no response.
	MsgAudioStatusChanged MessageType = "audioStatusChanged"
)

// Message is the envelope for every extension message.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrMalformed is returned when a payload cannot be decoded. Callers
// treat it as "ignore this message".
var ErrMalformed = errors.New("protocol: malformed message payload")

// New builds a Message with the payload marshalled in place.
func New(t MessageType, payload interface{}) Message {
	if payload == nil {
		return Message{Type: t}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{Type: t}
	}
	return Message{Type: t, Data: data}
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v interface{}) error {
	if len(m.Data) == 0 {
		return ErrMalformed
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return ErrMalformed
	}
	return nil
}

// SetVolumeRequest carries a volume change. TabID and ApplyToDomain are
// only meaningful on the popup -> background leg; the background strips
// them before forwarding to the tab's content script.
type SetVolumeRequest struct {
	TabID         int            `json:"tabId,omitempty"`
	Volume        volume.Percent `json:"volume"`
	ApplyToDomain bool           `json:"applyToDomain,omitempty"`
}

// GetVolumeRequest asks the background for a tab's stored volume. The
// agent-scoped getVolume carries no payload.
type GetVolumeRequest struct {
	TabID int `json:"tabId"`
}

// VolumeResponse answers getVolume.
type VolumeResponse struct {
	Volume volume.Percent `json:"volume"`
}

// Ack is the generic success response.
type Ack struct {
	Success bool `json:"success"`
}

// HasAudioResponse answers checkForAudio.
type HasAudioResponse struct {
	HasAudio bool `json:"hasAudio"`
}

// NotifyAudioRequest is the agent-side confirmation that media exists or
// started/stopped playing, sent to the background.
type NotifyAudioRequest struct {
	HasActiveAudio bool `json:"hasActiveAudio"`
}

// TabStatus is one row of the popup's tab list.
type TabStatus struct {
	ID         int            `json:"id"`
	Title      string         `json:"title"`
	Volume     volume.Percent `json:"volume"`
	FavIconURL string         `json:"favIconUrl,omitempty"`
	Audible    bool           `json:"audible"`
}

// TabAudioStatusResponse answers getTabAudioStatus.
type TabAudioStatusResponse struct {
	Tabs []TabStatus `json:"tabs"`
}

// ApplyToAllRequest carries the bulk volume for applyToAllTabs. The
// volume is absent for resetAllTabs.
type ApplyToAllRequest struct {
	Volume volume.Percent `json:"volume,omitempty"`
}
