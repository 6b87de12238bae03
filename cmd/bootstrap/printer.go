package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LingByte/LingStreamX/pkg/config"
	"github.com/LingByte/LingStreamX/pkg/logger"
	"go.uber.org/zap"
)

// LogConfigInfo Print global configuration information
func LogConfigInfo(cfg *config.Config) {
	logger.Info("system config load finished", zap.String("mode", cfg.Mode))

	logger.Info("stream config",
		zap.String("endpoint", cfg.Stream.Endpoint),
		zap.String("application", cfg.Stream.ApplicationName),
		zap.String("stream", cfg.Stream.StreamName),
		zap.Bool("has_session_id", cfg.Stream.SessionID != ""),
	)

	logger.Info("media config",
		zap.Int("video_bitrate", cfg.Video.BitRate),
		zap.String("video_framerate", cfg.Video.FrameRate),
		zap.String("video_codec", cfg.Video.Codec),
		zap.Int("audio_bitrate", cfg.Audio.BitRate),
		zap.String("audio_codec", cfg.Audio.Codec),
		zap.Int("ice_servers", len(cfg.ICEServers)),
		zap.String("ice_transport_policy", cfg.ICETransportPolicy),
		zap.Duration("connect_timeout", cfg.ConnectTimeout),
	)

	logger.Info("log config",
		zap.String("log_level", cfg.Log.Level),
		zap.String("log_filename", cfg.Log.Filename),
		zap.Int("log_max_size", cfg.Log.MaxSize),
		zap.Int("log_max_age", cfg.Log.MaxAge),
		zap.Int("log_max_backups", cfg.Log.MaxBackups),
	)
}

// EnsureBannerFile writes defaultText to filename when the file does not exist yet.
func EnsureBannerFile(filename string, defaultText string) error {
	if _, err := os.Stat(filename); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(filename, []byte(defaultText+"\n"), 0o644)
}

// PrintBannerFromFile Read file and print, auto-generate if file doesn't exist
func PrintBannerFromFile(w io.Writer, filename string, defaultText string) error {
	if err := EnsureBannerFile(filename, defaultText); err != nil {
		return fmt.Errorf("failed to ensure banner file: %w", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	colors := []string{
		"\x1b[38;5;165m",
		"\x1b[38;5;189m",
		"\x1b[38;5;207m",
		"\x1b[38;5;219m",
		"\x1b[38;5;225m",
		"\x1b[38;5;231m",
	}

	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintln(w, colors[i%len(colors)]+line+"\x1b[0m")
	}
	return nil
}
