package session

import (
	"context"

	apperrors "github.com/LingByte/LingStreamX/pkg/errors"
	"github.com/LingByte/LingStreamX/pkg/protocol"
	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

// Subscriber plays a stream: the server offers and the subscriber answers.
type Subscriber struct {
	*PeerSession

	retries int // guarded by PeerSession.mu
}

// RetryCount is the number of repeater retry responses seen by the last connect.
func (s *Subscriber) RetryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retries
}

// Connect requests an offer for the stream and answers it. The returned
// stream collects remote tracks as they arrive.
func (s *Subscriber) Connect(ctx context.Context) (rtcmedia.MediaStream, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.retries = 0
	s.mu.Unlock()

	stream, err := s.connect(ctx)
	if err := s.finish(err); err != nil {
		return nil, err
	}
	return stream, nil
}

// RequestAvailableStreams asks the server for its stream list on the open
// signaling channel. The server's reply ends the pending connect with a
// streams-unavailable error.
func (s *Subscriber) RequestAvailableStreams() error {
	s.mu.Lock()
	ch := s.channel
	info := s.info
	s.mu.Unlock()
	if ch == nil {
		return apperrors.NewAppError(apperrors.ErrCodeTransport, "signaling channel is not open")
	}
	return ch.Send(protocol.NewPlayAvailableStreams(info, s.userData()))
}

func (s *Subscriber) connect(ctx context.Context) (rtcmedia.MediaStream, error) {
	pc, err := s.newPeerConnection()
	if err != nil {
		return nil, err
	}

	info := s.StreamInfo()
	remote := rtcmedia.NewStream(info.StreamName)
	s.attachStream(remote)
	pc.OnTrack(func(track rtcmedia.MediaTrack) {
		remote.AddTrack(track)
		s.record("track received", map[string]interface{}{"kind": track.Kind().String(), "track": track.ID()})
	})

	ch, err := s.openChannel(ctx)
	if err != nil {
		return nil, err
	}
	req := protocol.NewPlayGetOffer(info, s.userData())
	if err := ch.Exchange(ctx, req, s.handler(pc, ch)); err != nil {
		return nil, err
	}

	s.closeChannel()
	return remote, nil
}

func (s *Subscriber) handler(pc rtcmedia.PeerConnection, ch *rtcmedia.SignalingChannel) rtcmedia.ResponseHandler {
	return func(resp *protocol.Response) (bool, error) {
		if resp.Retryable() {
			s.mu.Lock()
			s.retries++
			retries := s.retries
			s.mu.Unlock()
			s.metrics.Retry()
			s.record("repeater retry", map[string]interface{}{"retries": retries})
			if retries >= constants.MaxRepeaterRetries {
				return false, apperrors.NewAppError(apperrors.ErrCodeRetryExhausted, "repeater retry fail").
					WithDetails("retries", retries).
					WithPayload(resp.Raw)
			}
			s.log.Warn("repeater retry", zap.Int("retries", retries))
			return false, nil
		}
		if !resp.OK() {
			return false, rejected(resp)
		}

		if id, ok := resp.AssignedSessionID(); ok {
			s.setSessionID(id)
		}
		if resp.SDP != nil {
			if err := s.answer(pc, ch, resp.SDP); err != nil {
				return false, err
			}
		}
		if err := s.addCandidates(pc, resp); err != nil {
			return false, err
		}

		switch resp.Command {
		case constants.CommandSendResponse:
			return true, nil
		case constants.CommandGetAvailableStreams:
			return false, apperrors.NewAppError(apperrors.ErrCodeStreamsUnavailable, "server returned the available streams instead of an offer").
				WithPayload(resp.Raw)
		}
		return false, nil
	}
}

func (s *Subscriber) answer(pc rtcmedia.PeerConnection, ch *rtcmedia.SignalingChannel, sdp *protocol.SessionDescription) error {
	s.setState(StateNegotiating)
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp.SDP}
	if err := pc.SetRemoteDescription(offer); err != nil {
		return negotiation("set remote description", err)
	}
	if codec, err := rtcmedia.NegotiatedCodec(offer, webrtc.RTPCodecTypeAudio); err == nil {
		s.record("remote offer", map[string]interface{}{"audioCodec": codec})
	}

	answer, err := pc.CreateAnswer()
	if err != nil {
		return negotiation("create answer", err)
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		return negotiation("set local description", err)
	}
	return ch.Send(protocol.NewPlayAnswer(s.StreamInfo(), protocol.FromWebRTC(answer)))
}
