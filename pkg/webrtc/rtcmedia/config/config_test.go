package config

import (
	"testing"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
)

func TestBuild_Defaults(t *testing.T) {
	cfg := Build("sess-1", nil)

	assert.Equal(t, 360, cfg.Video.BitRate)
	assert.Equal(t, "64", cfg.Video.FrameRate)
	assert.Equal(t, "42e01f", cfg.Video.Codec)
	assert.Equal(t, PayloadUnset, cfg.Video.PayloadIndex)
	assert.Equal(t, 64, cfg.Audio.BitRate)
	assert.Equal(t, "opus", cfg.Audio.Codec)
	assert.Equal(t, PayloadUnset, cfg.Audio.PayloadIndex)
	assert.Empty(t, cfg.PeerConnection.ICEServers)
	assert.Equal(t, map[string]interface{}{"sessionId": "sess-1"}, cfg.UserData)
}

func TestBuild_FieldByFieldOverride(t *testing.T) {
	cfg := Build("sess-1", &Options{
		Video: &VideoOptions{Codec: String("VP8")},
		Audio: &AudioOptions{BitRate: Int(0)},
	})

	assert.Equal(t, "VP8", cfg.Video.Codec)
	assert.Equal(t, 360, cfg.Video.BitRate, "untouched fields keep defaults")
	assert.Equal(t, "64", cfg.Video.FrameRate)
	assert.Equal(t, 0, cfg.Audio.BitRate, "explicit zero disables the bitrate")
	assert.Equal(t, "opus", cfg.Audio.Codec)
}

func TestBuild_ICEServersReplacedWholesale(t *testing.T) {
	servers := []webrtc.ICEServer{
		{URLs: []string{"turn:turn.example.com:3478"}, Username: "u", Credential: "p"},
	}
	opts := &Options{PeerConnection: &PeerConnectionOptions{
		ICEServers:         servers,
		ICETransportPolicy: String("relay"),
	}}

	cfg := Build("", opts)
	assert.Equal(t, servers, cfg.PeerConnection.ICEServers)
	assert.Equal(t, "relay", cfg.PeerConnection.ICETransportPolicy)

	servers[0].Username = "mutated"
	assert.Equal(t, "u", cfg.PeerConnection.ICEServers[0].Username, "config must not alias caller slices")
}

func TestBuild_UserDataShallowMerge(t *testing.T) {
	cfg := Build("sess-1", &Options{UserData: map[string]interface{}{
		"token":     "abc",
		"sessionId": "override",
	}})

	assert.Equal(t, "abc", cfg.UserData["token"])
	assert.Equal(t, "override", cfg.UserData["sessionId"])
}

func TestPeerConnectionConfig_WebRTC(t *testing.T) {
	pc := PeerConnectionConfig{
		ICEServers:         []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
		ICETransportPolicy: "relay",
	}
	cfg := pc.WebRTC()

	assert.Equal(t, pc.ICEServers, cfg.ICEServers)
	assert.Equal(t, webrtc.ICETransportPolicyRelay, cfg.ICETransportPolicy)

	assert.Equal(t, webrtc.ICETransportPolicyAll, PeerConnectionConfig{}.WebRTC().ICETransportPolicy)
}

func TestMediaConfig_Payload(t *testing.T) {
	m := DefaultAudioConfig()
	assert.False(t, m.HasPayload())
	m.PayloadIndex = 111
	assert.True(t, m.HasPayload())
	m.ResetPayload()
	assert.False(t, m.HasPayload())
}
