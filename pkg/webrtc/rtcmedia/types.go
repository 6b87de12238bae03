package rtcmedia

import (
	"context"

	"github.com/pion/webrtc/v3"
)

// MediaTrack 单条音视频轨道
type MediaTrack interface {
	ID() string
	Kind() webrtc.RTPCodecType
	Stop() error
}

// MediaStream 一组轨道
type MediaStream interface {
	ID() string
	Tracks() []MediaTrack
}

// PeerConnection is the peer connection capability sessions drive.
type PeerConnection interface {
	AddTrack(track MediaTrack) error
	// OnTrack registers the handler invoked for every remote track.
	OnTrack(fn func(track MediaTrack))
	// OnICECandidate registers the handler invoked for every gathered local candidate.
	OnICECandidate(fn func(candidate webrtc.ICECandidateInit))
	CreateOffer() (webrtc.SessionDescription, error)
	CreateAnswer() (webrtc.SessionDescription, error)
	SetLocalDescription(desc webrtc.SessionDescription) error
	SetRemoteDescription(desc webrtc.SessionDescription) error
	AddICECandidate(candidate webrtc.ICECandidateInit) error
	ConnectionState() webrtc.PeerConnectionState
	Close() error
}

// PeerConnectionFactory 创建对等连接
type PeerConnectionFactory func(cfg webrtc.Configuration) (PeerConnection, error)

// Socket is a full-duplex message socket carrying text frames.
type Socket interface {
	WriteMessage(data []byte) error
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens sockets to a signaling endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Socket, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, endpoint string) (Socket, error)

func (f DialerFunc) Dial(ctx context.Context, endpoint string) (Socket, error) {
	return f(ctx, endpoint)
}
