package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/LingByte/LingStreamX/pkg/webrtc/constants"
	"github.com/pion/webrtc/v3"
)

// StreamInfo identifies the stream a session publishes or plays.
// SessionID is the only field the server may reassign.
type StreamInfo struct {
	ApplicationName string `json:"applicationName"`
	StreamName      string `json:"streamName"`
	SessionID       string `json:"sessionId"`
}

// SessionDescription is an SDP offer or answer on the wire.
type SessionDescription struct {
	Type string `json:"type,omitempty"` // "offer" or "answer"
	SDP  string `json:"sdp"`
}

// WebRTC converts to the pion representation.
func (d SessionDescription) WebRTC() webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.NewSDPType(d.Type), SDP: d.SDP}
}

// FromWebRTC converts a pion description to its wire form.
func FromWebRTC(d webrtc.SessionDescription) *SessionDescription {
	return &SessionDescription{Type: d.Type.String(), SDP: d.SDP}
}

// ICECandidate represents an ICE candidate sent by the server
type ICECandidate struct {
	Candidate     string  `json:"candidate"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
	SDPMid        *string `json:"sdpMid,omitempty"`
}

func (c ICECandidate) WebRTC() webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate:     c.Candidate,
		SDPMid:        c.SDPMid,
		SDPMLineIndex: c.SDPMLineIndex,
	}
}

// Request is a client to server signaling message.
type Request struct {
	Direction  string              `json:"direction"`
	Command    string              `json:"command"`
	StreamInfo StreamInfo          `json:"streamInfo"`
	SDP        *SessionDescription `json:"sdp,omitempty"`
	UserData   interface{}         `json:"userData,omitempty"`
}

func NewPublishOffer(info StreamInfo, offer *SessionDescription, userData interface{}) *Request {
	return &Request{
		Direction:  constants.DirectionPublish,
		Command:    constants.CommandSendOffer,
		StreamInfo: info,
		SDP:        offer,
		UserData:   userData,
	}
}

func NewPlayGetOffer(info StreamInfo, userData interface{}) *Request {
	return &Request{
		Direction:  constants.DirectionPlay,
		Command:    constants.CommandGetOffer,
		StreamInfo: info,
		UserData:   userData,
	}
}

func NewPlayAnswer(info StreamInfo, answer *SessionDescription) *Request {
	return &Request{
		Direction:  constants.DirectionPlay,
		Command:    constants.CommandSendResponse,
		StreamInfo: info,
		SDP:        answer,
	}
}

func NewPlayAvailableStreams(info StreamInfo, userData interface{}) *Request {
	return &Request{
		Direction:  constants.DirectionPlay,
		Command:    constants.CommandGetAvailableStreams,
		StreamInfo: info,
		UserData:   userData,
	}
}

// ResponseStreamInfo carries the server-assigned session id.
type ResponseStreamInfo struct {
	SessionID string `json:"sessionId,omitempty"`
}

// Response is a server to client signaling message. Raw holds the frame
// exactly as received.
type Response struct {
	Status        Status              `json:"status"`
	StatusDesc    string              `json:"statusDescription,omitempty"`
	Command       string              `json:"command,omitempty"`
	SDP           *SessionDescription `json:"sdp,omitempty"`
	StreamInfo    *ResponseStreamInfo `json:"streamInfo,omitempty"`
	ICECandidates []ICECandidate      `json:"iceCandidates,omitempty"`
	Raw           json.RawMessage     `json:"-"`
}

func (r *Response) OK() bool {
	return int(r.Status) == constants.StatusOK
}

func (r *Response) Retryable() bool {
	return int(r.Status) == constants.StatusRepeaterRetry
}

// AssignedSessionID returns the session id the server handed out, if any.
func (r *Response) AssignedSessionID() (string, bool) {
	if r.StreamInfo == nil || r.StreamInfo.SessionID == "" {
		return "", false
	}
	return r.StreamInfo.SessionID, true
}

// Status accepts a JSON number or a numeric string. Fractions are truncated.
type Status int

func (s *Status) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		data = []byte(str)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid status %q", string(data))
	}
	*s = Status(int(f))
	return nil
}

// Encode serializes a request into a text frame.
func Encode(req *Request) ([]byte, error) {
	return json.Marshal(req)
}

// Decode parses a server frame.
func Decode(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	resp.Raw = append(json.RawMessage(nil), data...)
	return &resp, nil
}
