// Package rtcmediatest provides in-memory peer connections, tracks and a
// scripted signaling server for exercising sessions without a network peer.
package rtcmediatest

import (
	"errors"
	"sync"

	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia"
	"github.com/pion/webrtc/v3"
)

// FakeTrack is a MediaTrack that counts Stop calls.
type FakeTrack struct {
	TrackID   string
	TrackKind webrtc.RTPCodecType
	StopErr   error

	mu    sync.Mutex
	stops int
}

func NewAudioTrack(id string) *FakeTrack {
	return &FakeTrack{TrackID: id, TrackKind: webrtc.RTPCodecTypeAudio}
}

func NewVideoTrack(id string) *FakeTrack {
	return &FakeTrack{TrackID: id, TrackKind: webrtc.RTPCodecTypeVideo}
}

func (t *FakeTrack) ID() string { return t.TrackID }
func (t *FakeTrack) Kind() webrtc.RTPCodecType { return t.TrackKind }

func (t *FakeTrack) Stop() error {
	t.mu.Lock()
	t.stops++
	t.mu.Unlock()
	return t.StopErr
}

func (t *FakeTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops > 0
}

// FakePeerConnection records what a session does to it.
type FakePeerConnection struct {
	Config webrtc.Configuration

	OfferSDP  string
	AnswerSDP string

	// per-operation failures
	AddTrackErr  error
	OfferErr     error
	AnswerErr    error
	SetLocalErr  error
	SetRemoteErr error
	CandidateErr error

	mu         sync.Mutex
	tracks     []rtcmedia.MediaTrack
	onTrack    func(rtcmedia.MediaTrack)
	onICE      func(webrtc.ICECandidateInit)
	local      *webrtc.SessionDescription
	remote     *webrtc.SessionDescription
	candidates []webrtc.ICECandidateInit
	closed     int
}

func (pc *FakePeerConnection) AddTrack(track rtcmedia.MediaTrack) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.AddTrackErr != nil {
		return pc.AddTrackErr
	}
	pc.tracks = append(pc.tracks, track)
	return nil
}

func (pc *FakePeerConnection) OnTrack(fn func(rtcmedia.MediaTrack)) {
	pc.mu.Lock()
	pc.onTrack = fn
	pc.mu.Unlock()
}

// EmitTrack simulates a remote track arriving.
func (pc *FakePeerConnection) EmitTrack(track rtcmedia.MediaTrack) {
	pc.mu.Lock()
	fn := pc.onTrack
	pc.mu.Unlock()
	if fn != nil {
		fn(track)
	}
}

func (pc *FakePeerConnection) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	pc.mu.Lock()
	pc.onICE = fn
	pc.mu.Unlock()
}

// EmitCandidate simulates a local candidate being gathered.
func (pc *FakePeerConnection) EmitCandidate(candidate webrtc.ICECandidateInit) {
	pc.mu.Lock()
	fn := pc.onICE
	pc.mu.Unlock()
	if fn != nil {
		fn(candidate)
	}
}

func (pc *FakePeerConnection) CreateOffer() (webrtc.SessionDescription, error) {
	if pc.OfferErr != nil {
		return webrtc.SessionDescription{}, pc.OfferErr
	}
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: pc.OfferSDP}, nil
}

func (pc *FakePeerConnection) CreateAnswer() (webrtc.SessionDescription, error) {
	if pc.AnswerErr != nil {
		return webrtc.SessionDescription{}, pc.AnswerErr
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.remote == nil {
		return webrtc.SessionDescription{}, errors.New("no remote description")
	}
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: pc.AnswerSDP}, nil
}

func (pc *FakePeerConnection) SetLocalDescription(desc webrtc.SessionDescription) error {
	if pc.SetLocalErr != nil {
		return pc.SetLocalErr
	}
	pc.mu.Lock()
	pc.local = &desc
	pc.mu.Unlock()
	return nil
}

func (pc *FakePeerConnection) SetRemoteDescription(desc webrtc.SessionDescription) error {
	if pc.SetRemoteErr != nil {
		return pc.SetRemoteErr
	}
	pc.mu.Lock()
	pc.remote = &desc
	pc.mu.Unlock()
	return nil
}

func (pc *FakePeerConnection) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	if pc.CandidateErr != nil {
		return pc.CandidateErr
	}
	pc.mu.Lock()
	pc.candidates = append(pc.candidates, candidate)
	pc.mu.Unlock()
	return nil
}

func (pc *FakePeerConnection) ConnectionState() webrtc.PeerConnectionState {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.closed > 0 {
		return webrtc.PeerConnectionStateClosed
	}
	return webrtc.PeerConnectionStateNew
}

func (pc *FakePeerConnection) Close() error {
	pc.mu.Lock()
	pc.closed++
	pc.mu.Unlock()
	return nil
}

func (pc *FakePeerConnection) Closed() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.closed > 0
}

func (pc *FakePeerConnection) Tracks() []rtcmedia.MediaTrack {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return append([]rtcmedia.MediaTrack(nil), pc.tracks...)
}

func (pc *FakePeerConnection) LocalDescription() *webrtc.SessionDescription {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.local
}

func (pc *FakePeerConnection) RemoteDescription() *webrtc.SessionDescription {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.remote
}

func (pc *FakePeerConnection) Candidates() []webrtc.ICECandidateInit {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return append([]webrtc.ICECandidateInit(nil), pc.candidates...)
}

// PeerConnectionFactory hands out FakePeerConnections built from Template.
type PeerConnectionFactory struct {
	Template FakePeerConnection
	Err      error

	mu      sync.Mutex
	created []*FakePeerConnection
}

func (f *PeerConnectionFactory) New(cfg webrtc.Configuration) (rtcmedia.PeerConnection, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	pc := &FakePeerConnection{
		Config:       cfg,
		OfferSDP:     f.Template.OfferSDP,
		AnswerSDP:    f.Template.AnswerSDP,
		AddTrackErr:  f.Template.AddTrackErr,
		OfferErr:     f.Template.OfferErr,
		AnswerErr:    f.Template.AnswerErr,
		SetLocalErr:  f.Template.SetLocalErr,
		SetRemoteErr: f.Template.SetRemoteErr,
		CandidateErr: f.Template.CandidateErr,
	}
	f.mu.Lock()
	f.created = append(f.created, pc)
	f.mu.Unlock()
	return pc, nil
}

func (f *PeerConnectionFactory) Created() []*FakePeerConnection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakePeerConnection(nil), f.created...)
}

// Open counts connections that were created and not closed.
func (f *PeerConnectionFactory) Open() int {
	n := 0
	for _, pc := range f.Created() {
		if !pc.Closed() {
			n++
		}
	}
	return n
}

// Last returns the most recent connection or nil.
func (f *PeerConnectionFactory) Last() *FakePeerConnection {
	created := f.Created()
	if len(created) == 0 {
		return nil
	}
	return created[len(created)-1]
}
