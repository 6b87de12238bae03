package main

import (
	"context"
	"time"

	"github.com/LingByte/LingStreamX/pkg/config"
	"github.com/LingByte/LingStreamX/pkg/logger"
	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

const frameDuration = 20 * time.Millisecond

// opus frame carrying silence
var opusSilence = []byte{0xf8, 0xff, 0xfe}

func newSyntheticStream(cfg *config.Config) (*rtcmedia.Stream, error) {
	audio, err := rtcmedia.NewLocalTrack(cfg.Audio.Codec, "audio", constants.DefaultStreamID)
	if err != nil {
		return nil, err
	}
	video, err := rtcmedia.NewLocalTrack(cfg.Video.Codec, "video", constants.DefaultStreamID)
	if err != nil {
		_ = audio.Stop()
		return nil, err
	}
	return rtcmedia.NewStream(constants.DefaultStreamID, audio, video), nil
}

// sendSilence feeds every local audio track until ctx ends or the track stops.
func sendSilence(ctx context.Context, stream rtcmedia.MediaStream) {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for _, t := range stream.Tracks() {
			local, ok := t.(*rtcmedia.LocalTrack)
			if !ok || local.Kind() != webrtc.RTPCodecTypeAudio {
				continue
			}
			if err := local.WriteSample(opusSilence, frameDuration); err != nil {
				logger.Debug("stop sending silence", zap.String("track", local.ID()), zap.Error(err))
				return
			}
		}
	}
}

// drainTracks reads every remote track as it arrives and logs packet counts.
func drainTracks(ctx context.Context, stream rtcmedia.MediaStream) {
	seen := make(map[string]bool)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		for _, t := range stream.Tracks() {
			remote, ok := t.(*rtcmedia.RemoteTrack)
			if !ok || seen[remote.ID()] {
				continue
			}
			seen[remote.ID()] = true
			go readTrack(remote)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func readTrack(track *rtcmedia.RemoteTrack) {
	log := logger.Named("play").With(zap.String("track", track.ID()), zap.String("codec", track.Codec().MimeType))
	log.Info("reading remote track")

	var packets, bytes int
	last := time.Now()
	for {
		pkt, err := track.ReadRTP()
		if err != nil {
			log.Info("remote track ended", zap.Int("packets", packets), zap.Error(err))
			return
		}
		packets++
		bytes += len(pkt.Payload)
		if time.Since(last) >= 5*time.Second {
			log.Debug("remote track stats", zap.Int("packets", packets), zap.Int("payload_bytes", bytes), zap.Uint16("seq", pkt.SequenceNumber))
			last = time.Now()
		}
	}
}
