package peer

import (
	"github.com/pion/webrtc/v4"
)

// Conn abstracts the underlying peer connection so the negotiation state
// machine can be driven without a network or media stack. CreateOffer and
// CreateAnswer also set the local description; candidates trickle through
// OnICECandidate as they are gathered.
//
//go:generate mockgen -destination=mock_conn.go -package=peer . Conn,DataChannel
type Conn interface {
	CreateOffer() (string, error)
	CreateAnswer() (string, error)
	SetRemoteDescription(sdpType webrtc.SDPType, sdp string) error
	AddICECandidate(candidate webrtc.ICECandidateInit) error
	AddTrack(track webrtc.TrackLocal) error
	CreateDataChannel(label string) (DataChannel, error)

	OnICECandidate(func(webrtc.ICECandidateInit))
	OnTrack(func(RemoteTrack))
	OnDataChannel(func(DataChannel))
	OnConnectionStateChange(func(webrtc.PeerConnectionState))

	Close() error
}

// DataChannel is the reliable, ordered message channel carried by a
// connected link.
type DataChannel interface {
	Label() string
	Send(data []byte) error
	OnOpen(func())
	OnMessage(func(data []byte))
	Close() error
}

// RemoteTrack describes one track received from the remote side. Track is
// nil when the link is driven by a test double.
type RemoteTrack struct {
	ID       string
	Kind     string
	StreamID string
	Track    *webrtc.TrackRemote
}
