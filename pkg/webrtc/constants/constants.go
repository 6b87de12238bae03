package constants

// Media defaults applied before caller options.
const (
	DefaultVideoBitRate   = 360
	DefaultVideoFrameRate = "64"
	DefaultVideoCodec     = "42e01f"
	DefaultAudioBitRate   = 64
	DefaultAudioCodec     = "opus"
	DefaultStreamID       = "lingstreamx"
)

const (
	CodecPCMU = "pcmu"
	CodecPCMA = "pcma"
	CodecG722 = "g722"
	CodecOPUS = "opus"
	CodecH264 = "h264"
	CodecVP8  = "vp8"
	CodecVP9  = "vp9"
)

// Signaling directions and commands.
const (
	DirectionPublish = "publish"
	DirectionPlay    = "play"

	CommandSendOffer           = "sendOffer"
	CommandGetOffer            = "getOffer"
	CommandSendResponse        = "sendResponse"
	CommandGetAvailableStreams = "getAvailableStreams"
)

// Server status codes.
const (
	StatusOK = 200
	// StatusRepeaterRetry is returned while the origin has not yet published the stream.
	StatusRepeaterRetry = 514
	MaxRepeaterRetries  = 10
)

// SDPVendorMarker is present in offers produced by Firefox.
const SDPVendorMarker = "THIS_IS_SDPARTA"
