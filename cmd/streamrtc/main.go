package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LingByte/LingStreamX/cmd/bootstrap"
	"github.com/LingByte/LingStreamX/pkg/config"
	"github.com/LingByte/LingStreamX/pkg/logger"
	"github.com/LingByte/LingStreamX/pkg/metrics"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// connector is the part of a session the CLI drives.
type connector interface {
	State() session.State
	SessionID() string
	Disconnect()
}

func main() {
	// 1. Parse Command Line Parameters
	role := flag.String("role", "play", "session role (publish, play)")
	mode := flag.String("mode", "", "running environment (development, test, production)")
	duration := flag.Duration("duration", 0, "stay connected for this long, 0 waits for a signal")
	sinkKind := flag.String("sink", "zap", "diagnostic record sink (zap, logrus)")
	flag.Parse()
	if *mode != "" {
		os.Setenv("MODE", *mode)
	}
	// 2. Load Global Configuration
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}
	cfg := config.GlobalConfig
	// 3. Load Log Configuration
	if err := logger.Init(&cfg.Log, cfg.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()
	// 4. Print Banner
	if err := bootstrap.PrintBannerFromFile(os.Stdout, "banner.txt", cfg.ServerName); err != nil {
		log.Fatalf("unload banner: %v", err)
	}
	bootstrap.LogConfigInfo(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := []session.Option{session.WithMetrics(m)}
	if *sinkKind == "logrus" {
		opts = append(opts, session.WithSink(logger.NewLogrusSink(logrus.StandardLogger())))
	}
	factory := session.NewFactory(cfg.Stream.Endpoint, cfg.Stream.ApplicationName, cfg.Stream.StreamName, cfg.Stream.SessionID, opts...)

	var sess connector
	var err error
	switch *role {
	case "publish":
		sess, err = publish(ctx, factory, cfg)
	case "play":
		sess, err = play(ctx, factory, cfg)
	default:
		logger.Error("unknown role", zap.String("role", *role))
		os.Exit(2)
	}
	if err != nil {
		logger.Error("connect failed", zap.String("role", *role), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("session connected", zap.String("role", *role), zap.String("sessionId", sess.SessionID()))

	httpServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           newRouter(reg, sess),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server run failed", zap.Error(err))
		}
	}()

	if *duration > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(*duration):
		}
	} else {
		<-ctx.Done()
	}

	sess.Disconnect()
	logger.Info("session disconnected", zap.String("role", *role))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

func newRouter(reg *prometheus.Registry, sess connector) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	r.GET("/healthz", func(c *gin.Context) {
		state := sess.State()
		code := http.StatusOK
		if state != session.StateConnected {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"state": state.String(), "sessionId": sess.SessionID()})
	})
	return r
}

func publish(ctx context.Context, factory *session.Factory, cfg *config.Config) (*session.Publisher, error) {
	pub := factory.Publisher(cfg.SessionOptions())
	stream, err := newSyntheticStream(cfg)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if _, err := pub.Connect(connectCtx, stream); err != nil {
		_ = rtcmedia.StopTracks(stream)
		return nil, err
	}
	go sendSilence(ctx, stream)
	return pub, nil
}

func play(ctx context.Context, factory *session.Factory, cfg *config.Config) (*session.Subscriber, error) {
	sub := factory.Subscriber(cfg.SessionOptions())

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	stream, err := sub.Connect(connectCtx)
	if err != nil {
		return nil, err
	}
	go drainTracks(ctx, stream)
	return sub, nil
}
