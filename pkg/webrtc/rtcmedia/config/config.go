package config

import (
	"fmt"

	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/pion/webrtc/v3"
)

// PayloadUnset marks a MediaConfig whose payload type has not been negotiated.
const PayloadUnset = -1

// MediaConfig describes one media kind. A zero BitRate or empty FrameRate
// means the value is not configured and nothing is emitted for it.
type MediaConfig struct {
	BitRate      int    `json:"bitRate,omitempty"`
	FrameRate    string `json:"frameRate,omitempty"` // video only
	Codec        string `json:"codec"`
	PayloadIndex int    `json:"-"`
}

// ResetPayload clears the negotiated payload type ahead of a new rewrite.
func (m *MediaConfig) ResetPayload() {
	m.PayloadIndex = PayloadUnset
}

// HasPayload reports whether a payload type was resolved.
func (m *MediaConfig) HasPayload() bool {
	return m.PayloadIndex != PayloadUnset
}

func (m MediaConfig) String() string {
	return fmt.Sprintf("MediaConfig{BitRate: %d, FrameRate: %q, Codec: %q, PayloadIndex: %d}",
		m.BitRate, m.FrameRate, m.Codec, m.PayloadIndex)
}

// PeerConnectionConfig is the subset of the peer connection configuration a caller can set.
type PeerConnectionConfig struct {
	ICEServers         []webrtc.ICEServer `json:"iceServers"`
	ICETransportPolicy string             `json:"iceTransportPolicy,omitempty"`
}

// WebRTC converts to a pion configuration. An unknown policy falls back to "all".
func (p PeerConnectionConfig) WebRTC() webrtc.Configuration {
	cfg := webrtc.Configuration{
		ICEServers: append([]webrtc.ICEServer(nil), p.ICEServers...),
	}
	if p.ICETransportPolicy != "" {
		cfg.ICETransportPolicy = webrtc.NewICETransportPolicy(p.ICETransportPolicy)
	}
	return cfg
}

// VideoOptions overrides video defaults field by field; nil keeps the default.
type VideoOptions struct {
	BitRate   *int    `json:"bitRate,omitempty"`
	FrameRate *string `json:"frameRate,omitempty"`
	Codec     *string `json:"codec,omitempty"`
}

// AudioOptions overrides audio defaults field by field; nil keeps the default.
type AudioOptions struct {
	BitRate *int    `json:"bitRate,omitempty"`
	Codec   *string `json:"codec,omitempty"`
}

// PeerConnectionOptions overrides the peer connection defaults. A non-nil
// ICEServers slice replaces the default list wholesale.
type PeerConnectionOptions struct {
	ICEServers         []webrtc.ICEServer `json:"iceServers,omitempty"`
	ICETransportPolicy *string            `json:"iceTransportPolicy,omitempty"`
}

// Options is what a caller hands to the session factory. Every field is optional.
type Options struct {
	Video          *VideoOptions          `json:"video,omitempty"`
	Audio          *AudioOptions          `json:"audio,omitempty"`
	PeerConnection *PeerConnectionOptions `json:"peerConnection,omitempty"`
	UserData       map[string]interface{} `json:"userData,omitempty"`
}

// SessionConfig is the merged, per-session configuration.
type SessionConfig struct {
	Video          MediaConfig
	Audio          MediaConfig
	PeerConnection PeerConnectionConfig
	UserData       map[string]interface{}
}

// DefaultVideoConfig returns the stock video settings.
func DefaultVideoConfig() MediaConfig {
	return MediaConfig{
		BitRate:      constants.DefaultVideoBitRate,
		FrameRate:    constants.DefaultVideoFrameRate,
		Codec:        constants.DefaultVideoCodec,
		PayloadIndex: PayloadUnset,
	}
}

// DefaultAudioConfig returns the stock audio settings.
func DefaultAudioConfig() MediaConfig {
	return MediaConfig{
		BitRate:      constants.DefaultAudioBitRate,
		Codec:        constants.DefaultAudioCodec,
		PayloadIndex: PayloadUnset,
	}
}

// Build applies opts over the defaults. userData starts as {sessionId} and
// caller keys are shallow-merged over it.
func Build(sessionID string, opts *Options) SessionConfig {
	cfg := SessionConfig{
		Video:          DefaultVideoConfig(),
		Audio:          DefaultAudioConfig(),
		PeerConnection: PeerConnectionConfig{ICEServers: []webrtc.ICEServer{}},
		UserData:       map[string]interface{}{"sessionId": sessionID},
	}
	if opts == nil {
		return cfg
	}

	if v := opts.Video; v != nil {
		if v.BitRate != nil {
			cfg.Video.BitRate = *v.BitRate
		}
		if v.FrameRate != nil {
			cfg.Video.FrameRate = *v.FrameRate
		}
		if v.Codec != nil {
			cfg.Video.Codec = *v.Codec
		}
	}
	if a := opts.Audio; a != nil {
		if a.BitRate != nil {
			cfg.Audio.BitRate = *a.BitRate
		}
		if a.Codec != nil {
			cfg.Audio.Codec = *a.Codec
		}
	}
	if pc := opts.PeerConnection; pc != nil {
		if pc.ICEServers != nil {
			cfg.PeerConnection.ICEServers = append([]webrtc.ICEServer(nil), pc.ICEServers...)
		}
		if pc.ICETransportPolicy != nil {
			cfg.PeerConnection.ICETransportPolicy = *pc.ICETransportPolicy
		}
	}
	for k, v := range opts.UserData {
		cfg.UserData[k] = v
	}
	return cfg
}

// Int returns a pointer to v, for building Options literals.
func Int(v int) *int { return &v }

// String returns a pointer to v, for building Options literals.
func String(v string) *string { return &v }
