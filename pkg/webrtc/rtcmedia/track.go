package rtcmedia

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"
	"github.com/sirupsen/logrus"
)

// ErrTrackStopped is returned by I/O on a stopped track.
var ErrTrackStopped = errors.New("track stopped")

// Stream 音视频流，持有一组轨道
type Stream struct {
	id     string
	mu     sync.RWMutex
	tracks []MediaTrack
}

func NewStream(id string, tracks ...MediaTrack) *Stream {
	return &Stream{id: id, tracks: append([]MediaTrack(nil), tracks...)}
}

func (s *Stream) ID() string { return s.id }

// AddTrack 添加轨道，重复的轨道 ID 会被忽略
func (s *Stream) AddTrack(track MediaTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tracks {
		if t.ID() == track.ID() {
			return
		}
	}
	s.tracks = append(s.tracks, track)
}

// Tracks 返回轨道快照
func (s *Stream) Tracks() []MediaTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]MediaTrack(nil), s.tracks...)
}

// StopTracks stops every track of stream and joins their errors.
func StopTracks(stream MediaStream) error {
	if stream == nil {
		return nil
	}
	var errs []error
	for _, t := range stream.Tracks() {
		if err := t.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s track %s: %w", t.Kind(), t.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// LocalTrack 本地发送轨道
type LocalTrack struct {
	track   *webrtc.TrackLocalStaticSample
	mu      sync.RWMutex
	stopped bool
}

// NewLocalTrack 创建发送轨道
func NewLocalTrack(codecName, trackID, streamID string) (*LocalTrack, error) {
	params, err := CodecParameters(codecName)
	if err != nil {
		return nil, err
	}
	track, err := webrtc.NewTrackLocalStaticSample(params.RTPCodecCapability, trackID, streamID)
	if err != nil {
		logrus.WithError(err).WithField("codec", codecName).Error("Failed to create local track")
		return nil, err
	}
	return &LocalTrack{track: track}, nil
}

func (t *LocalTrack) ID() string { return t.track.ID() }
func (t *LocalTrack) Kind() webrtc.RTPCodecType { return t.track.Kind() }
func (t *LocalTrack) TrackLocal() webrtc.TrackLocal { return t.track }

// WriteSample 发送一帧数据
func (t *LocalTrack) WriteSample(data []byte, duration time.Duration) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.stopped {
		return ErrTrackStopped
	}
	return t.track.WriteSample(media.Sample{Data: data, Duration: duration})
}

func (t *LocalTrack) Stop() error {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	return nil
}

func (t *LocalTrack) Stopped() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stopped
}

// RemoteTrack 远端接收轨道
type RemoteTrack struct {
	track    *webrtc.TrackRemote
	receiver *webrtc.RTPReceiver
	stopOnce sync.Once
	stopErr  error
}

func NewRemoteTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) *RemoteTrack {
	return &RemoteTrack{track: track, receiver: receiver}
}

func (t *RemoteTrack) ID() string { return t.track.ID() }
func (t *RemoteTrack) Kind() webrtc.RTPCodecType { return t.track.Kind() }
func (t *RemoteTrack) StreamID() string { return t.track.StreamID() }
func (t *RemoteTrack) Codec() webrtc.RTPCodecParameters {
	return t.track.Codec()
}

// ReadRTP 读取下一个 RTP 包
func (t *RemoteTrack) ReadRTP() (*rtp.Packet, error) {
	pkt, _, err := t.track.ReadRTP()
	return pkt, err
}

// Stop stops the receiver; later reads fail.
func (t *RemoteTrack) Stop() error {
	t.stopOnce.Do(func() {
		if t.receiver != nil {
			t.stopErr = t.receiver.Stop()
		}
	})
	return t.stopErr
}
