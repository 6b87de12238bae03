package rtcmedia

import (
	"fmt"
	"strings"

	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/pion/webrtc/v3"
)

const h264BaselineFmtp = "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f"

var videoFeedback = []webrtc.RTCPFeedback{
	{Type: webrtc.TypeRTCPFBGoogREMB},
	{Type: webrtc.TypeRTCPFBCCM, Parameter: "fir"},
	{Type: webrtc.TypeRTCPFBNACK},
	{Type: webrtc.TypeRTCPFBNACK, Parameter: "pli"},
}

// CodecParameters 根据编解码器名称获取参数
func CodecParameters(codecName string) (webrtc.RTPCodecParameters, error) {
	switch strings.ToLower(codecName) {
	case constants.CodecPCMA:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMA, ClockRate: 8000},
			PayloadType:        8,
		}, nil
	case constants.CodecPCMU:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMU, ClockRate: 8000},
			PayloadType:        0,
		}, nil
	case constants.CodecG722:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeG722, ClockRate: 8000},
			PayloadType:        9,
		}, nil
	case constants.CodecOPUS:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2, SDPFmtpLine: "minptime=10;useinbandfec=1"},
			PayloadType:        111,
		}, nil
	case constants.CodecH264, constants.DefaultVideoCodec:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264, ClockRate: 90000, SDPFmtpLine: h264BaselineFmtp, RTCPFeedback: videoFeedback},
			PayloadType:        102,
		}, nil
	case constants.CodecVP8:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000, RTCPFeedback: videoFeedback},
			PayloadType:        96,
		}, nil
	case constants.CodecVP9:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP9, ClockRate: 90000, SDPFmtpLine: "profile-id=0", RTCPFeedback: videoFeedback},
			PayloadType:        98,
		}, nil
	}
	return webrtc.RTPCodecParameters{}, fmt.Errorf("unsupported codec %q", codecName)
}

// GetMediaEngine 获取媒体引擎配置
func GetMediaEngine() (*webrtc.MediaEngine, error) {
	m := &webrtc.MediaEngine{}

	audio := []string{constants.CodecOPUS, constants.CodecG722, constants.CodecPCMU, constants.CodecPCMA}
	for _, name := range audio {
		params, _ := CodecParameters(name)
		if err := m.RegisterCodec(params, webrtc.RTPCodecTypeAudio); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}

	video := []string{constants.CodecVP8, constants.CodecVP9, constants.CodecH264}
	for _, name := range video {
		params, _ := CodecParameters(name)
		if err := m.RegisterCodec(params, webrtc.RTPCodecTypeVideo); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	return m, nil
}

// NegotiatedCodec returns the first codec of the kind section in desc,
// for example "opus/48000/2".
func NegotiatedCodec(desc webrtc.SessionDescription, kind webrtc.RTPCodecType) (string, error) {
	parsed, err := desc.Unmarshal()
	if err != nil {
		return "", fmt.Errorf("failed to unmarshal description: %w", err)
	}

	for _, m := range parsed.MediaDescriptions {
		if m.MediaName.Media != kind.String() || len(m.MediaName.Formats) == 0 {
			continue
		}
		for _, attr := range m.Attributes {
			if attr.Key != "rtpmap" {
				continue
			}
			pt, codec, ok := strings.Cut(attr.Value, " ")
			if ok && pt == m.MediaName.Formats[0] {
				return codec, nil
			}
		}
	}
	return "", fmt.Errorf("did not find %s codec in SDP", kind)
}
