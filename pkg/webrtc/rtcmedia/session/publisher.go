package session

import (
	"context"

	apperrors "github.com/LingByte/LingStreamX/pkg/errors"
	"github.com/LingByte/LingStreamX/pkg/protocol"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia"
	"github.com/LingByte/LingStreamX/pkg/webrtc/sdptransform"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

// Publisher sends a local stream to the media server.
type Publisher struct {
	*PeerSession
}

// Connect publishes stream and returns it once the server answered. Any
// failure releases every resource before returning. The caller's tracks are
// only owned by the session after a successful connect.
func (p *Publisher) Connect(ctx context.Context, stream rtcmedia.MediaStream) (rtcmedia.MediaStream, error) {
	if stream == nil {
		return nil, apperrors.NewAppError(apperrors.ErrCodeInvalidConfig, "publisher needs a stream")
	}
	if err := p.begin(); err != nil {
		return nil, err
	}
	if err := p.finish(p.connect(ctx, stream)); err != nil {
		return nil, err
	}
	return stream, nil
}

func (p *Publisher) connect(ctx context.Context, stream rtcmedia.MediaStream) error {
	pc, err := p.newPeerConnection()
	if err != nil {
		return err
	}
	for _, track := range stream.Tracks() {
		if err := pc.AddTrack(track); err != nil {
			return negotiation("add "+track.Kind().String()+" track", err)
		}
	}

	offer, err := pc.CreateOffer()
	if err != nil {
		return negotiation("create offer", err)
	}
	if summary, err := sdptransform.Describe(offer.SDP); err == nil {
		p.record("local offer", summary.Fields())
	} else {
		p.log.Debug("local offer not parseable", zap.Error(err))
	}

	offer.SDP = p.rewrite(offer.SDP)
	cfg := p.Config()
	p.record("offer rewritten", map[string]interface{}{
		"audioPayload": cfg.Audio.PayloadIndex,
		"videoPayload": cfg.Video.PayloadIndex,
	})
	if err := pc.SetLocalDescription(offer); err != nil {
		return negotiation("set local description", err)
	}

	ch, err := p.openChannel(ctx)
	if err != nil {
		return err
	}
	req := protocol.NewPublishOffer(p.StreamInfo(), protocol.FromWebRTC(offer), p.userData())
	err = ch.Exchange(ctx, req, func(resp *protocol.Response) (bool, error) {
		if !resp.OK() {
			return false, rejected(resp)
		}
		p.setState(StateNegotiating)
		if resp.SDP != nil {
			answer := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: resp.SDP.SDP}
			if err := pc.SetRemoteDescription(answer); err != nil {
				return false, negotiation("set remote description", err)
			}
			if codec, err := rtcmedia.NegotiatedCodec(answer, webrtc.RTPCodecTypeVideo); err == nil {
				p.record("remote answer", map[string]interface{}{"videoCodec": codec})
			}
		}
		if err := p.addCandidates(pc, resp); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	p.closeChannel()
	p.attachStream(stream)
	return nil
}
