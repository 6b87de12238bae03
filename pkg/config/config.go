package config

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/LingByte/LingStreamX/pkg/constants"
	"github.com/LingByte/LingStreamX/pkg/logger"
	"github.com/LingByte/LingStreamX/pkg/utils"
	rtcconfig "github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/config"
	webrtcconst "github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/pion/webrtc/v3"
	"github.com/spf13/cast"
)

// StreamConfig identifies the stream on the media server.
type StreamConfig struct {
	Endpoint        string `env:"STREAM_ENDPOINT"`
	ApplicationName string `env:"STREAM_APPLICATION"`
	StreamName      string `env:"STREAM_NAME"`
	SessionID       string `env:"STREAM_SESSION_ID"`
}

type VideoConfig struct {
	BitRate   int    `env:"VIDEO_BITRATE"`
	FrameRate string `env:"VIDEO_FRAMERATE"`
	Codec     string `env:"VIDEO_CODEC"`
}

type AudioConfig struct {
	BitRate int    `env:"AUDIO_BITRATE"`
	Codec   string `env:"AUDIO_CODEC"`
}

var GlobalConfig *Config

// Config System common config
type Config struct {
	Log                logger.LogConfig
	Stream             StreamConfig
	Video              VideoConfig
	Audio              AudioConfig
	ICEServers         []webrtc.ICEServer `env:"ICE_SERVERS_JSON"`
	ICETransportPolicy string             `env:"ICE_TRANSPORT_POLICY"`
	ConnectTimeout     time.Duration      `env:"CONNECT_TIMEOUT"`
	MetricsAddr        string             `env:"METRICS_ADDR"`
	Mode               string             `env:"MODE"`
	ServerName         string             `env:"SERVER_NAME"`
}

func Load() error {
	// 1. 根据环境加载 .env 文件（如果不存在也不报错，使用默认值）
	mode := utils.GetStringOrDefault(constants.ENV_MODE, constants.DefaultMode)
	if err := utils.LoadEnv(mode); err != nil {
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}
	// 2. 读取环境变量
	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() (*Config, error) {
	iceServers, err := ParseICEServers(utils.GetEnv(constants.ENV_ICE_SERVERS_JSON))
	if err != nil {
		return nil, err
	}

	return &Config{
		Log: logger.LogConfig{
			Level:      utils.GetStringOrDefault(constants.ENV_LOG_LEVEL, "info"),
			Filename:   utils.GetStringOrDefault(constants.ENV_LOG_FILENAME, "./logs/streamrtc.log"),
			MaxSize:    utils.GetIntOrDefault(constants.ENV_LOG_MAX_SIZE, 100),
			MaxAge:     utils.GetIntOrDefault(constants.ENV_LOG_MAX_AGE, 30),
			MaxBackups: utils.GetIntOrDefault(constants.ENV_LOG_MAX_BACKUPS, 5),
			Daily:      utils.GetBoolOrDefault(constants.ENV_LOG_DAILY, true),
		},
		Stream: StreamConfig{
			Endpoint:        utils.GetEnv(constants.ENV_STREAM_ENDPOINT),
			ApplicationName: utils.GetStringOrDefault(constants.ENV_STREAM_APPLICATION, constants.DefaultApplication),
			StreamName:      utils.GetEnv(constants.ENV_STREAM_NAME),
			SessionID:       utils.GetEnv(constants.ENV_STREAM_SESSION_ID),
		},
		Video: VideoConfig{
			BitRate:   utils.GetIntOrDefault(constants.ENV_VIDEO_BITRATE, webrtcconst.DefaultVideoBitRate),
			FrameRate: utils.GetStringOrDefault(constants.ENV_VIDEO_FRAMERATE, webrtcconst.DefaultVideoFrameRate),
			Codec:     utils.GetStringOrDefault(constants.ENV_VIDEO_CODEC, webrtcconst.DefaultVideoCodec),
		},
		Audio: AudioConfig{
			BitRate: utils.GetIntOrDefault(constants.ENV_AUDIO_BITRATE, webrtcconst.DefaultAudioBitRate),
			Codec:   utils.GetStringOrDefault(constants.ENV_AUDIO_CODEC, webrtcconst.DefaultAudioCodec),
		},
		ICEServers:         iceServers,
		ICETransportPolicy: utils.GetEnv(constants.ENV_ICE_TRANSPORT_POLICY),
		ConnectTimeout:     utils.GetDurationOrDefault(constants.ENV_CONNECT_TIMEOUT, constants.DefaultConnectTimeout),
		MetricsAddr:        utils.GetStringOrDefault(constants.ENV_METRICS_ADDR, constants.DefaultMetricsAddr),
		Mode:               utils.GetStringOrDefault(constants.ENV_MODE, constants.DefaultMode),
		ServerName:         utils.GetStringOrDefault(constants.ENV_SERVER_NAME, constants.DefaultServerName),
	}, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.Stream.Endpoint == "" {
		return fmt.Errorf("%s is required", constants.ENV_STREAM_ENDPOINT)
	}
	if c.Stream.StreamName == "" {
		return fmt.Errorf("%s is required", constants.ENV_STREAM_NAME)
	}
	return nil
}

// SessionOptions converts the loaded settings into session options.
// ICE servers are only overridden when ICE_SERVERS_JSON was set.
func (c *Config) SessionOptions() *rtcconfig.Options {
	opts := &rtcconfig.Options{
		Video: &rtcconfig.VideoOptions{
			BitRate:   rtcconfig.Int(c.Video.BitRate),
			FrameRate: rtcconfig.String(c.Video.FrameRate),
			Codec:     rtcconfig.String(c.Video.Codec),
		},
		Audio: &rtcconfig.AudioOptions{
			BitRate: rtcconfig.Int(c.Audio.BitRate),
			Codec:   rtcconfig.String(c.Audio.Codec),
		},
	}
	if c.ICEServers != nil || c.ICETransportPolicy != "" {
		opts.PeerConnection = &rtcconfig.PeerConnectionOptions{ICEServers: c.ICEServers}
		if c.ICETransportPolicy != "" {
			opts.PeerConnection.ICETransportPolicy = rtcconfig.String(c.ICETransportPolicy)
		}
	}
	return opts
}

type iceServerJSON struct {
	URLs       interface{} `json:"urls"`
	Username   string      `json:"username,omitempty"`
	Credential string      `json:"credential,omitempty"`
}

// ParseICEServers decodes a JSON array of ICE servers whose urls field is
// either a single string or an array of strings. Empty input yields nil.
func ParseICEServers(raw string) ([]webrtc.ICEServer, error) {
	if raw == "" {
		return nil, nil
	}
	var entries []iceServerJSON
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", constants.ENV_ICE_SERVERS_JSON, err)
	}

	servers := make([]webrtc.ICEServer, 0, len(entries))
	for i, e := range entries {
		urls, err := cast.ToStringSliceE(e.URLs)
		if err != nil || len(urls) == 0 {
			return nil, fmt.Errorf("parse %s: entry %d has no urls", constants.ENV_ICE_SERVERS_JSON, i)
		}
		server := webrtc.ICEServer{URLs: urls, Username: e.Username}
		if e.Credential != "" {
			server.Credential = e.Credential
		}
		servers = append(servers, server)
	}
	return servers, nil
}
