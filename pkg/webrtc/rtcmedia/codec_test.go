package rtcmedia

import (
	"testing"

	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecParameters(t *testing.T) {
	tests := []struct {
		name        string
		codecName   string
		mimeType    string
		payloadType webrtc.PayloadType
		clockRate   uint32
	}{
		{"PCMA codec", constants.CodecPCMA, webrtc.MimeTypePCMA, 8, 8000},
		{"PCMU codec", constants.CodecPCMU, webrtc.MimeTypePCMU, 0, 8000},
		{"G722 codec", constants.CodecG722, webrtc.MimeTypeG722, 9, 8000},
		{"OPUS codec", constants.CodecOPUS, webrtc.MimeTypeOpus, 111, 48000},
		{"OPUS upper case", "OPUS", webrtc.MimeTypeOpus, 111, 48000},
		{"H264 codec", constants.CodecH264, webrtc.MimeTypeH264, 102, 90000},
		{"H264 profile", constants.DefaultVideoCodec, webrtc.MimeTypeH264, 102, 90000},
		{"VP8 codec", constants.CodecVP8, webrtc.MimeTypeVP8, 96, 90000},
		{"VP9 codec", constants.CodecVP9, webrtc.MimeTypeVP9, 98, 90000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := CodecParameters(tt.codecName)
			require.NoError(t, err)
			assert.Equal(t, tt.mimeType, params.MimeType)
			assert.Equal(t, tt.payloadType, params.PayloadType)
			assert.Equal(t, tt.clockRate, params.ClockRate)
		})
	}

	_, err := CodecParameters("unknown")
	assert.Error(t, err)
}

func TestGetMediaEngine(t *testing.T) {
	m, err := GetMediaEngine()
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNegotiatedCodec(t *testing.T) {
	desc := webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP: "v=0\r\n" +
			"o=- 1 2 IN IP4 127.0.0.1\r\n" +
			"s=-\r\n" +
			"t=0 0\r\n" +
			"m=audio 9 UDP/TLS/RTP/SAVPF 111 0\r\n" +
			"c=IN IP4 0.0.0.0\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n" +
			"a=rtpmap:111 opus/48000/2\r\n" +
			"m=video 9 UDP/TLS/RTP/SAVPF 102\r\n" +
			"c=IN IP4 0.0.0.0\r\n" +
			"a=rtpmap:102 H264/90000\r\n",
	}

	codec, err := NegotiatedCodec(desc, webrtc.RTPCodecTypeAudio)
	require.NoError(t, err)
	assert.Equal(t, "opus/48000/2", codec)

	codec, err = NegotiatedCodec(desc, webrtc.RTPCodecTypeVideo)
	require.NoError(t, err)
	assert.Equal(t, "H264/90000", codec)

	desc.SDP = "v=0\r\no=- 1 2 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"
	_, err = NegotiatedCodec(desc, webrtc.RTPCodecTypeAudio)
	assert.Error(t, err)

	desc.SDP = "garbage"
	_, err = NegotiatedCodec(desc, webrtc.RTPCodecTypeAudio)
	assert.Error(t, err)
}
