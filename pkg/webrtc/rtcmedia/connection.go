package rtcmedia

import (
	"fmt"
	"sync"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

// Connection webrtc connection backed by pion
type Connection struct {
	pc         *webrtc.PeerConnection
	log        *zap.Logger
	mu          sync.RWMutex
	lastOffer   *webrtc.SessionDescription
	lastAnswer  *webrtc.SessionDescription
	onTrack     func(MediaTrack)
	onCandidate func(webrtc.ICECandidateInit)
	closed      bool
}

// NewPeerConnectionFactory returns a factory building pion connections that log through log.
func NewPeerConnectionFactory(log *zap.Logger) PeerConnectionFactory {
	return func(cfg webrtc.Configuration) (PeerConnection, error) {
		return NewConnection(cfg, log)
	}
}

// NewConnection 创建WebRTC连接
func NewConnection(cfg webrtc.Configuration, log *zap.Logger) (*Connection, error) {
	if log == nil {
		log = zap.NewNop()
	}

	m, err := GetMediaEngine()
	if err != nil {
		return nil, err
	}
	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, registry); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}
	se := webrtc.SettingEngine{LoggerFactory: NewZapLoggerFactory(log.Named("pion"))}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(m),
		webrtc.WithInterceptorRegistry(registry),
		webrtc.WithSettingEngine(se),
	)
	pc, err := api.NewPeerConnection(cfg)
	if err != nil {
		log.Error("failed to create peer connection", zap.Error(err))
		return nil, err
	}

	c := &Connection{pc: pc, log: log}
	c.registerEventHandlers()
	return c, nil
}

func (c *Connection) registerEventHandlers() {
	// ice candidate func
	c.pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			return
		}
		cand := candidate.ToJSON()
		c.log.Debug("ICE candidate generated", zap.String("candidate", cand.Candidate))

		c.mu.RLock()
		fn := c.onCandidate
		c.mu.RUnlock()
		if fn != nil {
			fn(cand)
		}
	})
	c.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		c.log.Debug("connection state changed", zap.String("state", state.String()))
	})
	c.pc.OnTrack(func(remote *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		c.log.Info("received remote track",
			zap.String("codec", remote.Codec().MimeType),
			zap.Uint32("ssrc", uint32(remote.SSRC())),
			zap.String("streamID", remote.StreamID()),
			zap.String("kind", remote.Kind().String()))

		c.mu.RLock()
		fn := c.onTrack
		c.mu.RUnlock()
		if fn != nil {
			fn(NewRemoteTrack(remote, receiver))
		}
	})
}

// AddTrack accepts tracks that expose a pion local track.
func (c *Connection) AddTrack(track MediaTrack) error {
	local, ok := track.(interface{ TrackLocal() webrtc.TrackLocal })
	if !ok {
		return fmt.Errorf("track %s of type %T cannot be sent", track.ID(), track)
	}
	_, err := c.pc.AddTrack(local.TrackLocal())
	return err
}

// OnTrack 设置轨道回调
func (c *Connection) OnTrack(fn func(MediaTrack)) {
	c.mu.Lock()
	c.onTrack = fn
	c.mu.Unlock()
}

// CreateOffer 创建Offer
func (c *Connection) CreateOffer() (webrtc.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return offer, err
	}
	c.mu.Lock()
	c.lastOffer = &offer
	c.mu.Unlock()
	return offer, nil
}

// CreateAnswer 创建Answer
func (c *Connection) CreateAnswer() (webrtc.SessionDescription, error) {
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return answer, err
	}
	c.mu.Lock()
	c.lastAnswer = &answer
	c.mu.Unlock()
	return answer, nil
}

// SetLocalDescription applies desc. pion rejects descriptions that differ
// from the one it generated, so a rewritten desc is swapped for the
// generated original; the rewritten text only travels to the server.
func (c *Connection) SetLocalDescription(desc webrtc.SessionDescription) error {
	c.mu.RLock()
	generated := c.lastAnswer
	if desc.Type == webrtc.SDPTypeOffer {
		generated = c.lastOffer
	}
	c.mu.RUnlock()

	if generated != nil && generated.Type == desc.Type && generated.SDP != desc.SDP {
		c.log.Debug("applying generated local description in place of rewritten one",
			zap.String("type", desc.Type.String()))
		desc = *generated
	}
	return c.pc.SetLocalDescription(desc)
}

// SetRemoteDescription 设置远程描述
func (c *Connection) SetRemoteDescription(desc webrtc.SessionDescription) error {
	if err := c.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("failed to set remote description: %w", err)
	}
	return nil
}

// AddICECandidate 添加ICE候选者
func (c *Connection) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(candidate)
}

// OnICECandidate 设置本地ICE候选者回调
func (c *Connection) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	c.mu.Lock()
	c.onCandidate = fn
	c.mu.Unlock()
}

func (c *Connection) ConnectionState() webrtc.PeerConnectionState {
	return c.pc.ConnectionState()
}

func (c *Connection) SignalingState() webrtc.SignalingState {
	return c.pc.SignalingState()
}

// Close 关闭连接，可重复调用
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.onTrack = nil
	c.onCandidate = nil
	c.mu.Unlock()
	return c.pc.Close()
}
