package rtcmedia

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestConnection(t *testing.T) *Connection {
	t.Helper()
	conn, err := NewConnection(webrtc.Configuration{}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConnection_OfferWithLocalTracks(t *testing.T) {
	conn := newTestConnection(t)

	var mu sync.Mutex
	var gathered []webrtc.ICECandidateInit
	conn.OnICECandidate(func(c webrtc.ICECandidateInit) {
		mu.Lock()
		gathered = append(gathered, c)
		mu.Unlock()
	})

	audio, err := NewLocalTrack(constants.CodecOPUS, "audio", "stream")
	require.NoError(t, err)
	video, err := NewLocalTrack(constants.CodecVP8, "video", "stream")
	require.NoError(t, err)
	require.NoError(t, conn.AddTrack(audio))
	require.NoError(t, conn.AddTrack(video))

	offer, err := conn.CreateOffer()
	require.NoError(t, err)
	assert.Equal(t, webrtc.SDPTypeOffer, offer.Type)
	assert.Contains(t, offer.SDP, "m=audio")
	assert.Contains(t, offer.SDP, "m=video")
	assert.Contains(t, offer.SDP, "opus/48000/2")

	// 改写后的描述仍可设置
	rewritten := offer
	rewritten.SDP = strings.Replace(offer.SDP, "a=mid:0\r\n", "a=mid:0\r\nb=AS:64\r\n", 1)
	require.NotEqual(t, offer.SDP, rewritten.SDP)
	require.NoError(t, conn.SetLocalDescription(rewritten))
	assert.Equal(t, webrtc.SignalingStateHaveLocalOffer, conn.SignalingState())
	assert.Equal(t, webrtc.PeerConnectionStateNew, conn.ConnectionState())

	select {
	case <-webrtc.GatheringCompletePromise(conn.pc):
	case <-time.After(5 * time.Second):
		t.Fatal("ICE gathering did not complete")
	}
	mu.Lock()
	defer mu.Unlock()
	for _, c := range gathered {
		assert.True(t, strings.HasPrefix(c.Candidate, "candidate:"), c.Candidate)
	}
}

func TestConnection_AnswerRemoteOffer(t *testing.T) {
	publisher := newTestConnection(t)
	track, err := NewLocalTrack(constants.CodecOPUS, "audio", "stream")
	require.NoError(t, err)
	require.NoError(t, publisher.AddTrack(track))
	offer, err := publisher.CreateOffer()
	require.NoError(t, err)
	require.NoError(t, publisher.SetLocalDescription(offer))

	player := newTestConnection(t)
	_, err = player.pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio,
		webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly})
	require.NoError(t, err)
	require.NoError(t, player.SetRemoteDescription(offer))

	answer, err := player.CreateAnswer()
	require.NoError(t, err)
	require.NoError(t, player.SetLocalDescription(answer))
	require.NoError(t, publisher.SetRemoteDescription(answer))

	codec, err := NegotiatedCodec(answer, webrtc.RTPCodecTypeAudio)
	require.NoError(t, err)
	assert.Equal(t, "opus/48000/2", codec)

	err = player.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "garbage"})
	assert.ErrorContains(t, err, "failed to set remote description")
}

func TestConnection_AddTrackRejectsForeignTracks(t *testing.T) {
	conn := newTestConnection(t)
	err := conn.AddTrack(&stubTrack{id: "x", kind: webrtc.RTPCodecTypeAudio})
	assert.ErrorContains(t, err, "cannot be sent")
}

func TestConnection_CloseIdempotent(t *testing.T) {
	conn, err := NewConnection(webrtc.Configuration{}, nil)
	require.NoError(t, err)

	conn.OnTrack(func(MediaTrack) {})
	require.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
	assert.Equal(t, webrtc.PeerConnectionStateClosed, conn.ConnectionState())
}

func TestNewPeerConnectionFactory(t *testing.T) {
	newPC := NewPeerConnectionFactory(nil)
	pc, err := newPC(webrtc.Configuration{})
	require.NoError(t, err)
	assert.IsType(t, &Connection{}, pc)
	assert.NoError(t, pc.Close())
}

func TestZapLoggerFactory(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	factory := NewZapLoggerFactory(zap.New(core))

	l := factory.NewLogger("ice")
	l.Trace("trace")
	l.Debugf("debug %d", 1)
	l.Infof("info %s", "x")
	l.Warn("warn")
	l.Errorf("error %v", true)

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "debug 1", entries[1].Message)
	assert.Equal(t, "info x", entries[2].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[4].Level)
	assert.Equal(t, "ice", entries[4].ContextMap()["scope"])

	assert.NotNil(t, NewZapLoggerFactory(nil).NewLogger("x"))
}
