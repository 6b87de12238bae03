package sdptransform

import (
	"sort"
	"strconv"
	"strings"
)

// LineKind classifies the SDP attribute lines that belong to a payload type.
type LineKind int

const (
	KindOther LineKind = iota
	KindRTPMap
	KindRTCPFeedback
	KindFormat
)

var payloadPrefixes = []struct {
	prefix string
	kind   LineKind
}{
	{"a=rtpmap", KindRTPMap},
	{"a=rtcp-fb", KindRTCPFeedback},
	{"a=fmtp", KindFormat},
}

// Line is one SDP line with its payload type resolved, if it has one.
type Line struct {
	Text    string
	Kind    LineKind
	Payload int
}

// HasPayload reports whether the line is deferred into a payload group.
func (l Line) HasPayload() bool {
	return l.Payload >= 0
}

// ParseLine classifies text. Payload is -1 unless the line is an
// rtpmap/rtcp-fb/fmtp attribute with a numeric payload type that is not a URL attribute.
func ParseLine(text string) Line {
	line := Line{Text: text, Kind: KindOther, Payload: -1}
	for _, p := range payloadPrefixes {
		if strings.HasPrefix(text, p.prefix) {
			line.Kind = p.kind
			break
		}
	}
	if line.Kind == KindOther {
		return line
	}

	parts := strings.Split(text, ":")
	if len(parts) <= 1 {
		return line
	}
	tokens := strings.Split(parts[1], " ")
	id, err := strconv.Atoi(tokens[0])
	if err != nil {
		return line
	}
	if len(tokens) > 1 && (strings.HasPrefix(tokens[1], "http") || strings.HasPrefix(tokens[1], "ur")) {
		return line
	}
	line.Payload = id
	return line
}

// PayloadIndex groups payload lines by payload type.
type PayloadIndex struct {
	groups map[int][]string
}

func NewPayloadIndex() *PayloadIndex {
	return &PayloadIndex{groups: make(map[int][]string)}
}

// Add appends a line to the group of id.
func (p *PayloadIndex) Add(id int, text string) {
	p.groups[id] = append(p.groups[id], text)
}

// IDs returns the payload types in ascending numeric order.
func (p *PayloadIndex) IDs() []int {
	ids := make([]int, 0, len(p.groups))
	for id := range p.groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Group returns a copy of the lines of id.
func (p *PayloadIndex) Group(id int) []string {
	return append([]string(nil), p.groups[id]...)
}

func (p *PayloadIndex) Len() int {
	return len(p.groups)
}

// classifyLines drops empty lines and moves every payload line into index.
func classifyLines(lines []string, index *PayloadIndex) []string {
	kept := make([]string, 0, len(lines))
	for _, text := range lines {
		if text == "" {
			continue
		}
		line := ParseLine(text)
		if line.HasPayload() {
			index.Add(line.Payload, line.Text)
			continue
		}
		kept = append(kept, text)
	}
	return kept
}

// splitLines splits on line terminators, tolerating a bare LF, and drops empty lines.
func splitLines(sdp string) []string {
	raw := strings.Split(sdp, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
