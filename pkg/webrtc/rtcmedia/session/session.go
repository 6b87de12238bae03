package session

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/LingByte/LingStreamX/pkg/errors"
	"github.com/LingByte/LingStreamX/pkg/logger"
	"github.com/LingByte/LingStreamX/pkg/metrics"
	"github.com/LingByte/LingStreamX/pkg/protocol"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/config"
	"github.com/LingByte/LingStreamX/pkg/webrtc/sdptransform"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle position of a session.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateSignalingOpen
	StateNegotiating
	StateConnected
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateSignalingOpen:
		return "signaling-open"
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// PeerSession owns one stream, one peer connection and one signaling
// channel at a time, and the connect/disconnect lifecycle around them.
type PeerSession struct {
	role        string
	endpoint    string
	cfg         config.SessionConfig
	transformer *sdptransform.Transformer

	dialer  rtcmedia.Dialer
	newPC   rtcmedia.PeerConnectionFactory
	log     *zap.Logger
	sink    logger.Sink
	metrics *metrics.Metrics

	mu      sync.Mutex
	info    protocol.StreamInfo
	state   State
	busy    bool
	stream  rtcmedia.MediaStream
	pc      rtcmedia.PeerConnection
	channel *rtcmedia.SignalingChannel
}

func newPeerSession(role, endpoint string, info protocol.StreamInfo, cfg config.SessionConfig, o *options) *PeerSession {
	s := &PeerSession{
		role:     role,
		endpoint: endpoint,
		cfg:      cfg,
		info:     info,
		dialer:   o.dialer,
		newPC:    o.newPC,
		sink:     o.sink,
		metrics:  o.metrics,
		log: o.log.With(
			zap.String("role", role),
			zap.String("application", info.ApplicationName),
			zap.String("stream", info.StreamName)),
	}
	s.transformer = sdptransform.New(&s.cfg.Video, &s.cfg.Audio)
	return s
}

func (s *PeerSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StreamInfo returns a copy of the stream identity.
func (s *PeerSession) StreamInfo() protocol.StreamInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *PeerSession) SessionID() string {
	return s.StreamInfo().SessionID
}

// Config returns the merged configuration including negotiated payload types.
func (s *PeerSession) Config() config.SessionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *PeerSession) Stream() rtcmedia.MediaStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

func (s *PeerSession) PeerConnection() rtcmedia.PeerConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pc
}

// SignalingOpen reports whether a signaling channel is currently held.
func (s *PeerSession) SignalingOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel != nil
}

// Disconnect stops the stream's tracks, closes the peer connection and
// closes the signaling channel concurrently. Absent resources are skipped,
// release errors are logged and the session always ends Idle.
func (s *PeerSession) Disconnect() {
	s.mu.Lock()
	stream, pc, ch := s.stream, s.pc, s.channel
	s.stream, s.pc, s.channel = nil, nil, nil
	wasConnected := s.state == StateConnected
	held := stream != nil || pc != nil || ch != nil
	if held {
		s.state = StateClosing
	}
	s.mu.Unlock()

	if held {
		var g errgroup.Group
		g.Go(s.release("stream", func() error { return rtcmedia.StopTracks(stream) }))
		g.Go(s.release("peer connection", func() error {
			if pc == nil {
				return nil
			}
			return pc.Close()
		}))
		g.Go(s.release("signaling channel", func() error {
			if ch == nil {
				return nil
			}
			return ch.Close()
		}))
		err := g.Wait()

		s.metrics.Disconnected(s.role, wasConnected)
		fields := map[string]interface{}{"wasConnected": wasConnected}
		if err != nil {
			fields["error"] = err.Error()
		}
		s.record("disconnected", fields)
	}

	s.setState(StateIdle)
}

func (s *PeerSession) release(name string, fn func() error) func() error {
	return func() error {
		if err := fn(); err != nil {
			s.log.Warn("release failed", zap.String("resource", name), zap.Error(err))
			return fmt.Errorf("release %s: %w", name, err)
		}
		return nil
	}
}

// begin claims the session for one connect attempt and resets it.
func (s *PeerSession) begin() error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return apperrors.NewAppError(apperrors.ErrCodeSessionBusy, "connect already in progress")
	}
	s.busy = true
	s.mu.Unlock()

	s.Disconnect()

	s.mu.Lock()
	s.state = StateConnecting
	s.cfg.Video.ResetPayload()
	s.cfg.Audio.ResetPayload()
	s.mu.Unlock()
	s.record("connecting", nil)
	return nil
}

// finish releases the claim taken by begin. A failed attempt is torn down first.
func (s *PeerSession) finish(err error) error {
	if err != nil {
		s.Disconnect()
		s.log.Warn("connect failed", zap.Error(err))
		s.record("connect failed", map[string]interface{}{"error": err.Error()})
	} else {
		s.setState(StateConnected)
		s.log.Info("connected", zap.String("sessionId", s.SessionID()))
		s.record("connected", nil)
	}
	s.metrics.ConnectDone(s.role, err)

	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
	return err
}

func (s *PeerSession) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *PeerSession) setSessionID(id string) {
	s.mu.Lock()
	s.info.SessionID = id
	s.mu.Unlock()
}

func (s *PeerSession) attachStream(stream rtcmedia.MediaStream) {
	s.mu.Lock()
	s.stream = stream
	s.mu.Unlock()
}

// rewrite runs the SDP transformer; it writes the negotiated payload types into cfg.
func (s *PeerSession) rewrite(sdp string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.transformer.Rewrite(sdp)
	s.metrics.Rewrite()
	return out
}

func (s *PeerSession) userData() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.UserData
}

func (s *PeerSession) newPeerConnection() (rtcmedia.PeerConnection, error) {
	pc, err := s.newPC(s.cfg.PeerConnection.WebRTC())
	if err != nil {
		return nil, negotiation("create peer connection", err)
	}
	pc.OnICECandidate(func(c webrtc.ICECandidateInit) {
		fields := map[string]interface{}{"candidate": c.Candidate}
		if c.SDPMid != nil {
			fields["sdpMid"] = *c.SDPMid
		}
		s.record("local ice candidate", fields)
	})
	s.mu.Lock()
	s.pc = pc
	s.mu.Unlock()
	return pc, nil
}

func (s *PeerSession) openChannel(ctx context.Context) (*rtcmedia.SignalingChannel, error) {
	ch, err := rtcmedia.OpenSignalingChannel(ctx, s.dialer, s.endpoint, s.log)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.channel = ch
	s.state = StateSignalingOpen
	s.mu.Unlock()
	s.record("signaling open", map[string]interface{}{"channel": ch.ID()})
	return ch, nil
}

func (s *PeerSession) closeChannel() {
	s.mu.Lock()
	ch := s.channel
	s.channel = nil
	s.mu.Unlock()
	if ch != nil {
		if err := ch.Close(); err != nil {
			s.log.Debug("close signaling channel", zap.Error(err))
		}
	}
}

func (s *PeerSession) addCandidates(pc rtcmedia.PeerConnection, resp *protocol.Response) error {
	for _, c := range resp.ICECandidates {
		if err := pc.AddICECandidate(c.WebRTC()); err != nil {
			return negotiation("add ice candidate", err)
		}
	}
	if len(resp.ICECandidates) > 0 {
		s.record("ice candidates added", map[string]interface{}{"count": len(resp.ICECandidates)})
	}
	return nil
}

func (s *PeerSession) record(label string, fields map[string]interface{}) {
	out := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		out[k] = v
	}
	out["role"] = s.role
	out["sessionId"] = s.SessionID()
	out["state"] = s.State().String()
	logger.Emit(s.sink, label, out)
}

func negotiation(op string, err error) error {
	return apperrors.NewAppErrorf(apperrors.ErrCodeNegotiation, "%s failed", op).WithCause(err)
}

func rejected(resp *protocol.Response) error {
	return apperrors.NewAppErrorf(apperrors.ErrCodeSignalingRejected, "signaling rejected with status %d", int(resp.Status)).
		WithDetails("status", int(resp.Status)).
		WithDetails("command", resp.Command).
		WithPayload(resp.Raw)
}
