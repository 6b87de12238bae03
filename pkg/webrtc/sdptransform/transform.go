// Package sdptransform rewrites a locally generated SDP so the media server
// accepts it: one payload type per media section, bandwidth lines and
// per-codec bitrate hints.
package sdptransform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/config"
)

const crlf = "\r\n"

type mediaKind string

const (
	mediaAudio mediaKind = "audio"
	mediaVideo mediaKind = "video"
)

type section int

const (
	sectionHeader section = iota
	sectionAudio
	sectionVideo
	sectionBandwidth
)

var (
	rtpmapRE = regexp.MustCompile(`a=rtpmap:(\d+) (\w+)/(\d+)`)

	videoFamilies = map[string]bool{"vp9": true, "vp8": true, "h264": true, "red": true, "ulpfec": true, "rtx": true}
	audioFamilies = map[string]bool{"opus": true, "isac": true, "g722": true, "pcmu": true, "pcma": true, "cn": true}

	// feedback the server does not support for VP8/VP9
	vpxStrippedFeedback = []string{"transport-cc", "goog-remb", "nack"}
)

// Transformer rewrites SDP documents against a video and an audio config.
// Rewrite records the selected payload types into the configs.
type Transformer struct {
	video *config.MediaConfig
	audio *config.MediaConfig
}

func New(video, audio *config.MediaConfig) *Transformer {
	return &Transformer{video: video, audio: audio}
}

// Rewrite returns the server-compatible form of sdp. The result is CRLF terminated.
func (t *Transformer) Rewrite(sdp string) string {
	t.video.ResetPayload()
	t.audio.ResetPayload()

	lines := splitLines(sdp)
	if t.shouldRewrite(sdp) {
		index := NewPayloadIndex()
		lines = classifyLines(lines, index)

		audioGroup := t.selectPreferredPayload(index, t.audio.Codec, mediaAudio)
		lines = insertMediaLines(lines, mediaAudio, audioGroup)

		videoGroup := t.selectPreferredPayload(index, t.video.Codec, mediaVideo)
		lines = insertMediaLines(lines, mediaVideo, videoGroup)
	}
	return strings.Join(t.rebuild(lines), crlf) + crlf
}

// shouldRewrite keeps Firefox offers untouched unless VP9 is requested.
func (t *Transformer) shouldRewrite(sdp string) bool {
	return !strings.Contains(sdp, constants.SDPVendorMarker) || strings.Contains(t.video.Codec, "VP9")
}

// selectPreferredPayload returns the first payload group, in payload type
// order, whose text contains profile, and records its id on the config of kind.
func (t *Transformer) selectPreferredPayload(index *PayloadIndex, profile string, kind mediaKind) []string {
	for _, id := range index.IDs() {
		group := index.Group(id)
		if !strings.Contains(strings.Join(group, crlf), profile) {
			continue
		}
		if strings.Contains(profile, "VP9") || strings.Contains(profile, "VP8") {
			group = stripFeedback(group)
		}
		switch kind {
		case mediaAudio:
			t.audio.PayloadIndex = id
		case mediaVideo:
			t.video.PayloadIndex = id
		}
		return group
	}
	return nil
}

func stripFeedback(group []string) []string {
	out := group[:0]
outer:
	for _, l := range group {
		for _, fb := range vpxStrippedFeedback {
			if strings.Contains(l, fb) {
				continue outer
			}
		}
		out = append(out, l)
	}
	return out
}

// insertMediaLines places group once inside the m= section of kind: audio
// after its first a=rtcp-mux, video after its first a=rtcp-rsize when the
// section has one, otherwise after its first a=rtcp-mux.
func insertMediaLines(lines []string, kind mediaKind, group []string) []string {
	if len(group) == 0 {
		return lines
	}

	anchor := "a=rtcp-mux"
	if kind == mediaVideo && sectionHas(lines, kind, "a=rtcp-rsize") {
		anchor = "a=rtcp-rsize"
	}

	out := make([]string, 0, len(lines)+len(group))
	var current mediaKind
	done := false
	for _, line := range lines {
		out = append(out, line)
		if strings.HasPrefix(line, "m=") {
			current = mediaKind(strings.TrimPrefix(strings.SplitN(line, " ", 2)[0], "m="))
			continue
		}
		if !done && current == kind && line == anchor {
			out = append(out, group...)
			done = true
		}
	}
	return out
}

func sectionHas(lines []string, kind mediaKind, attr string) bool {
	var current mediaKind
	for _, line := range lines {
		if strings.HasPrefix(line, "m=") {
			current = mediaKind(strings.TrimPrefix(strings.SplitN(line, " ", 2)[0], "m="))
			continue
		}
		if current == kind && strings.Contains(line, attr) {
			return true
		}
	}
	return false
}

// rebuild collapses m= lines to the negotiated payload type and injects
// bandwidth, framerate and per-codec bitrate lines.
func (t *Transformer) rebuild(lines []string) []string {
	out := make([]string, 0, len(lines)+16)
	sec := sectionHeader
	hit := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "m=audio"):
			sec, hit = sectionAudio, false
			line = collapseMediaLine(line, t.audio)
		case strings.HasPrefix(line, "m=video"):
			sec, hit = sectionVideo, false
			line = collapseMediaLine(line, t.video)
		case strings.HasPrefix(line, "m="):
			sec, hit = sectionHeader, false
		}
		out = append(out, line)

		rtpmap := strings.HasPrefix(line, "a=rtpmap")
		if !rtpmap && !strings.HasPrefix(line, "a=mid:") {
			continue
		}

		// a section without a=mid gets its bandwidth on its first rtpmap
		if !hit {
			switch sec {
			case sectionAudio:
				hit = true
				out = append(out, bandwidthLines(t.audio.BitRate)...)
			case sectionVideo:
				hit = true
				out = append(out, t.videoBandwidthLines()...)
			}
		}
		if rtpmap {
			sec = sectionBandwidth
			out = append(out, t.codecBitrateLines(line)...)
		}
	}
	return out
}

func (t *Transformer) videoBandwidthLines() []string {
	out := bandwidthLines(t.video.BitRate)
	if out != nil && t.video.FrameRate != "" {
		out = append(out, "a=framerate:"+t.video.FrameRate)
	}
	return out
}

func collapseMediaLine(line string, media *config.MediaConfig) string {
	if !media.HasPayload() {
		return line
	}
	parts := strings.Split(line, " ")
	if len(parts) < 3 {
		return line
	}
	return fmt.Sprintf("%s %s %s %d", parts[0], parts[1], parts[2], media.PayloadIndex)
}

func bandwidthLines(bitRate int) []string {
	if bitRate <= 0 {
		return nil
	}
	return []string{
		"b=CT:" + strconv.Itoa(bitRate),
		"b=AS:" + strconv.Itoa(bitRate),
	}
}

func (t *Transformer) codecBitrateLines(line string) []string {
	m := rtpmapRE.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	id, codec := m[1], strings.ToLower(m[2])

	var out []string
	if videoFamilies[codec] && t.video.BitRate > 0 {
		out = append(out, fmtpBitrate(id, t.video.BitRate))
	}
	if audioFamilies[codec] && t.audio.BitRate > 0 {
		out = append(out, fmtpBitrate(id, t.audio.BitRate))
	}
	return out
}

func fmtpBitrate(id string, bitRate int) string {
	return fmt.Sprintf("a=fmtp:%s x-google-min-bitrate=%d;x-google-max-bitrate=%d", id, bitRate, bitRate)
}
