package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/LingByte/LingStreamX/pkg/logger"
	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/config"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/session"
	"github.com/pion/webrtc/v3"
)

// Publishes an opus + VP8 stream, then plays it back on a second session.
func main() {
	endpoint := flag.String("endpoint", "wss://localhost:443/webrtc-session.json", "signaling endpoint")
	app := flag.String("app", "live", "application name")
	stream := flag.String("stream", "myStream", "stream name")
	flag.Parse()

	// Initialize logger
	if err := logger.Init(&logger.LogConfig{
		Level:      "debug",
		Filename:   "log",
		MaxSize:    5,
		MaxAge:     1,
		MaxBackups: 1,
	}, "dev"); err != nil {
		log.Fatalf("[Client] init logger: %v", err)
	}

	factory := session.NewFactory(*endpoint, *app, *stream, "",
		session.WithSink(logger.NewZapSink(nil)))

	opts := &config.Options{
		Video: &config.VideoOptions{
			BitRate:   config.Int(1500),
			FrameRate: config.String("30"),
			Codec:     config.String(constants.CodecVP8),
		},
		Audio: &config.AudioOptions{BitRate: config.Int(64)},
		PeerConnection: &config.PeerConnectionOptions{
			ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
		},
		UserData: map[string]interface{}{"client": "example"},
	}

	audio, err := rtcmedia.NewLocalTrack(constants.CodecOPUS, "audio", *stream)
	if err != nil {
		log.Fatalf("[Client] audio track: %v", err)
	}
	video, err := rtcmedia.NewLocalTrack(constants.CodecVP8, "video", *stream)
	if err != nil {
		log.Fatalf("[Client] video track: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	connectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	pub := factory.Publisher(opts)
	if _, err := pub.Connect(connectCtx, rtcmedia.NewStream(*stream, audio, video)); err != nil {
		log.Fatalf("[Client] publish failed: %v", err)
	}
	defer pub.Disconnect()
	fmt.Printf("[Client] publishing, session %s\n", pub.SessionID())

	sub := factory.Subscriber(opts)
	remote, err := sub.Connect(connectCtx)
	if err != nil {
		log.Fatalf("[Client] play failed after %d retries: %v", sub.RetryCount(), err)
	}
	defer sub.Disconnect()
	fmt.Printf("[Client] playing, session %s\n", sub.SessionID())

	// Wait for interrupt
	<-ctx.Done()
	fmt.Printf("\n[Client] Interrupted, %d remote tracks received\n", len(remote.Tracks()))
}
