package rtcmedia

import (
	"context"
	"sync"

	apperrors "github.com/LingByte/LingStreamX/pkg/errors"
	"github.com/LingByte/LingStreamX/pkg/protocol"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResponseHandler processes one server frame. Returning done or a non-nil
// error settles the exchange.
type ResponseHandler func(resp *protocol.Response) (done bool, err error)

// SignalingChannel 信令通道，封装一条 WebSocket 连接
type SignalingChannel struct {
	id       string
	endpoint string
	socket   Socket
	log      *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// OpenSignalingChannel dials endpoint. Dial failures are TransportErrors.
func OpenSignalingChannel(ctx context.Context, dialer Dialer, endpoint string, log *zap.Logger) (*SignalingChannel, error) {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	log = log.With(zap.String("channel", id))

	socket, err := dialer.Dial(ctx, endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.WrapError(apperrors.ErrCodeCanceled, ctx.Err())
		}
		log.Warn("signaling dial failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, apperrors.NewAppErrorf(apperrors.ErrCodeTransport, "dial %s", endpoint).WithCause(err)
	}
	log.Debug("signaling channel open", zap.String("endpoint", endpoint))
	return &SignalingChannel{id: id, endpoint: endpoint, socket: socket, log: log}, nil
}

func (c *SignalingChannel) ID() string { return c.id }

// Send writes one request frame.
func (c *SignalingChannel) Send(req *protocol.Request) error {
	data, err := protocol.Encode(req)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrCodeInvalidMessage, err)
	}
	if err := c.socket.WriteMessage(data); err != nil {
		return apperrors.NewAppErrorf(apperrors.ErrCodeTransport, "send %s", req.Command).WithCause(err)
	}
	c.log.Debug("signaling request sent", zap.String("direction", req.Direction), zap.String("command", req.Command))
	return nil
}

// Exchange sends req and feeds every reply to handle, one at a time, until
// handle settles it, the socket fails, or ctx is done. It returns exactly once.
func (c *SignalingChannel) Exchange(ctx context.Context, req *protocol.Request, handle ResponseHandler) error {
	if err := c.Send(req); err != nil {
		return err
	}

	result := make(chan error, 1)
	var once sync.Once
	settle := func(err error) {
		once.Do(func() { result <- err })
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			data, err := c.socket.ReadMessage()
			if err != nil {
				settle(apperrors.NewAppError(apperrors.ErrCodeTransport, "signaling socket read failed").WithCause(err))
				return
			}
			resp, err := protocol.Decode(data)
			if err != nil {
				settle(apperrors.NewAppError(apperrors.ErrCodeInvalidMessage, "malformed signaling frame").
					WithCause(err).WithPayload(data))
				return
			}
			c.log.Debug("signaling response received",
				zap.Int("status", int(resp.Status)), zap.String("command", resp.Command))

			done, err := handle(resp)
			if err != nil {
				settle(err)
				return
			}
			if done {
				settle(nil)
				return
			}
		}
	}()

	select {
	case err := <-result:
		<-readerDone
		return err
	case <-ctx.Done():
		settle(apperrors.WrapError(apperrors.ErrCodeCanceled, ctx.Err()))
		// unblocks the reader
		_ = c.Close()
		<-readerDone
		return <-result
	}
}

// Close 关闭信令通道，可重复调用
func (c *SignalingChannel) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.socket.Close()
		c.log.Debug("signaling channel closed")
	})
	return c.closeErr
}
