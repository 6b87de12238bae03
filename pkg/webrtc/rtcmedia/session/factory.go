package session

import (
	"github.com/LingByte/LingStreamX/pkg/logger"
	"github.com/LingByte/LingStreamX/pkg/metrics"
	"github.com/LingByte/LingStreamX/pkg/protocol"
	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/config"
	"go.uber.org/zap"
)

type options struct {
	dialer  rtcmedia.Dialer
	newPC   rtcmedia.PeerConnectionFactory
	log     *zap.Logger
	sink    logger.Sink
	metrics *metrics.Metrics
}

// Option customizes the collaborators of sessions built by a Factory.
type Option func(*options)

// WithDialer replaces the gorilla websocket dialer.
func WithDialer(d rtcmedia.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithPeerConnectionFactory replaces the pion-backed peer connection.
func WithPeerConnectionFactory(f rtcmedia.PeerConnectionFactory) Option {
	return func(o *options) { o.newPC = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSink sets the diagnostic sink invoked at each transition.
func WithSink(s logger.Sink) Option {
	return func(o *options) { o.sink = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Factory builds sessions bound to one endpoint and stream identity.
type Factory struct {
	endpoint string
	info     protocol.StreamInfo
	opts     options
}

func NewFactory(endpoint, applicationName, streamName, sessionID string, opts ...Option) *Factory {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named("session")
	}
	if o.sink == nil {
		o.sink = logger.NewZapSink(o.log.Named("diagnostic"))
	}
	if o.dialer == nil {
		o.dialer = rtcmedia.NewWebSocketDialer()
	}
	if o.newPC == nil {
		o.newPC = rtcmedia.NewPeerConnectionFactory(o.log)
	}
	return &Factory{
		endpoint: endpoint,
		info: protocol.StreamInfo{
			ApplicationName: applicationName,
			StreamName:      streamName,
			SessionID:       sessionID,
		},
		opts: o,
	}
}

func (f *Factory) Endpoint() string { return f.endpoint }

// Publisher creates a publishing session. opts may be nil.
func (f *Factory) Publisher(opts *config.Options) *Publisher {
	cfg := config.Build(f.info.SessionID, opts)
	return &Publisher{PeerSession: newPeerSession(constants.DirectionPublish, f.endpoint, f.info, cfg, &f.opts)}
}

// Subscriber creates a playing session. opts may be nil.
func (f *Factory) Subscriber(opts *config.Options) *Subscriber {
	cfg := config.Build(f.info.SessionID, opts)
	return &Subscriber{PeerSession: newPeerSession(constants.DirectionPlay, f.endpoint, f.info, cfg, &f.opts)}
}
