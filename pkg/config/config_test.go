package config

import (
	"testing"
	"time"

	webrtcconst "github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	rtcconfig "github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("STREAM_ENDPOINT", "")
	t.Setenv("VIDEO_BITRATE", "")
	t.Setenv("ICE_SERVERS_JSON", "")
	t.Setenv("ICE_TRANSPORT_POLICY", "")
	t.Setenv("CONNECT_TIMEOUT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "live", cfg.Stream.ApplicationName)
	assert.Equal(t, webrtcconst.DefaultVideoBitRate, cfg.Video.BitRate)
	assert.Equal(t, webrtcconst.DefaultAudioCodec, cfg.Audio.Codec)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Nil(t, cfg.ICEServers)
	assert.Error(t, cfg.Validate())

	merged := rtcconfig.Build("", cfg.SessionOptions())
	assert.Equal(t, rtcconfig.DefaultVideoConfig(), merged.Video)
	assert.Equal(t, rtcconfig.DefaultAudioConfig(), merged.Audio)
	assert.Empty(t, merged.PeerConnection.ICEServers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STREAM_ENDPOINT", "wss://media.example.com/webrtc-session.json")
	t.Setenv("STREAM_APPLICATION", "vod")
	t.Setenv("STREAM_NAME", "cam1")
	t.Setenv("STREAM_SESSION_ID", "[empty]")
	t.Setenv("VIDEO_BITRATE", "1500")
	t.Setenv("VIDEO_FRAMERATE", "30")
	t.Setenv("VIDEO_CODEC", "VP8")
	t.Setenv("AUDIO_BITRATE", "0")
	t.Setenv("ICE_SERVERS_JSON", `[{"urls":"stun:stun.example.com:3478"},{"urls":["turn:a:3478","turn:b:3478"],"username":"u","credential":"p"}]`)
	t.Setenv("ICE_TRANSPORT_POLICY", "relay")
	t.Setenv("CONNECT_TIMEOUT", "5s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	require.Len(t, cfg.ICEServers, 2)
	assert.Equal(t, []string{"stun:stun.example.com:3478"}, cfg.ICEServers[0].URLs)
	assert.Equal(t, []string{"turn:a:3478", "turn:b:3478"}, cfg.ICEServers[1].URLs)
	assert.Equal(t, "p", cfg.ICEServers[1].Credential)

	merged := rtcconfig.Build(cfg.Stream.SessionID, cfg.SessionOptions())
	assert.Equal(t, 1500, merged.Video.BitRate)
	assert.Equal(t, "30", merged.Video.FrameRate)
	assert.Equal(t, "VP8", merged.Video.Codec)
	assert.Equal(t, 0, merged.Audio.BitRate)
	assert.Equal(t, "relay", merged.PeerConnection.ICETransportPolicy)
	assert.Len(t, merged.PeerConnection.ICEServers, 2)
	assert.Equal(t, "[empty]", merged.UserData["sessionId"])
}

func TestParseICEServers(t *testing.T) {
	servers, err := ParseICEServers("")
	assert.NoError(t, err)
	assert.Nil(t, servers)

	_, err = ParseICEServers("{")
	assert.Error(t, err)

	_, err = ParseICEServers(`[{"username":"u"}]`)
	assert.ErrorContains(t, err, "entry 0 has no urls")
}
