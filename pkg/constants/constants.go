package constants

import "time"

// Environment keys read by pkg/config.
const (
	ENV_MODE        = "MODE"
	ENV_SERVER_NAME = "SERVER_NAME"

	ENV_STREAM_ENDPOINT    = "STREAM_ENDPOINT"
	ENV_STREAM_APPLICATION = "STREAM_APPLICATION"
	ENV_STREAM_NAME        = "STREAM_NAME"
	ENV_STREAM_SESSION_ID  = "STREAM_SESSION_ID"

	ENV_VIDEO_BITRATE   = "VIDEO_BITRATE"
	ENV_VIDEO_FRAMERATE = "VIDEO_FRAMERATE"
	ENV_VIDEO_CODEC     = "VIDEO_CODEC"
	ENV_AUDIO_BITRATE   = "AUDIO_BITRATE"
	ENV_AUDIO_CODEC     = "AUDIO_CODEC"

	ENV_ICE_SERVERS_JSON     = "ICE_SERVERS_JSON"
	ENV_ICE_TRANSPORT_POLICY = "ICE_TRANSPORT_POLICY"

	ENV_CONNECT_TIMEOUT = "CONNECT_TIMEOUT"
	ENV_METRICS_ADDR    = "METRICS_ADDR"
)

// Log
const (
	ENV_LOG_LEVEL       = "LOG_LEVEL"
	ENV_LOG_FILENAME    = "LOG_FILENAME"
	ENV_LOG_MAX_SIZE    = "LOG_MAX_SIZE"
	ENV_LOG_MAX_AGE     = "LOG_MAX_AGE"
	ENV_LOG_MAX_BACKUPS = "LOG_MAX_BACKUPS"
	ENV_LOG_DAILY       = "LOG_DAILY"
)

const (
	DefaultMode           = "development"
	DefaultServerName     = "LingStreamX"
	DefaultApplication    = "live"
	DefaultConnectTimeout = 30 * time.Second
	DefaultMetricsAddr    = ":9090"
)
