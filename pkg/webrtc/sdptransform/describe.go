package sdptransform

import (
	"fmt"
	"strings"

	"github.com/pion/sdp/v3"
)

// MediaSummary is the negotiated shape of one m= section.
type MediaSummary struct {
	Kind      string
	Mid       string
	Formats   []string
	Codecs    map[string]string // payload type -> rtpmap value
	Bandwidth map[string]uint64
}

// Summary is a structured view of an SDP document, used for diagnostics.
type Summary struct {
	SessionID uint64
	Media     []MediaSummary
}

// Describe parses sdp strictly. Rewritten documents place b= lines after
// attributes and are not expected to pass; describe the inputs instead.
func Describe(raw string) (*Summary, error) {
	var desc sdp.SessionDescription
	if err := desc.Unmarshal([]byte(raw)); err != nil {
		return nil, fmt.Errorf("parse sdp: %w", err)
	}

	summary := &Summary{SessionID: desc.Origin.SessionID}
	for _, md := range desc.MediaDescriptions {
		ms := MediaSummary{
			Kind:      md.MediaName.Media,
			Formats:   append([]string(nil), md.MediaName.Formats...),
			Codecs:    make(map[string]string),
			Bandwidth: make(map[string]uint64),
		}
		if mid, ok := md.Attribute(sdp.AttrKeyMID); ok {
			ms.Mid = mid
		}
		for _, attr := range md.Attributes {
			if attr.Key != "rtpmap" {
				continue
			}
			pt, codec, found := strings.Cut(attr.Value, " ")
			if found {
				ms.Codecs[pt] = codec
			}
		}
		for _, bw := range md.Bandwidth {
			ms.Bandwidth[bw.Type] = bw.Bandwidth
		}
		summary.Media = append(summary.Media, ms)
	}
	return summary, nil
}

// Fields flattens the summary for log sinks.
func (s *Summary) Fields() map[string]interface{} {
	fields := map[string]interface{}{"sessionId": s.SessionID}
	for _, m := range s.Media {
		fields[m.Kind+".formats"] = strings.Join(m.Formats, " ")
		if m.Mid != "" {
			fields[m.Kind+".mid"] = m.Mid
		}
	}
	return fields
}
