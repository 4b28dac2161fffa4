package peer

import (
	"fmt"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"
)

// webrtcConn is the production Conn implementation on top of pion.
type webrtcConn struct {
	pc *webrtc.PeerConnection
}

// NewWebRTCConn creates a real peer connection configured with the given
// STUN servers and the default codec and interceptor set.
func NewWebRTCConn(iceServerURLs []string) (Conn, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("failed to register codecs: %w", err)
	}
	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, fmt.Errorf("failed to register interceptors: %w", err)
	}
	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(registry),
	)

	pc, err := api.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: iceServerURLs},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create peer connection: %w", err)
	}
	return &webrtcConn{pc: pc}, nil
}

// CreateOffer generates an SDP offer and applies it as the local
// description. Candidates trickle afterwards; gathering is not awaited.
func (c *webrtcConn) CreateOffer() (string, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create offer: %w", err)
	}
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return "", fmt.Errorf("failed to set local offer: %w", err)
	}
	return offer.SDP, nil
}

// CreateAnswer generates an SDP answer for the applied remote offer and
// applies it as the local description.
func (c *webrtcConn) CreateAnswer() (string, error) {
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create answer: %w", err)
	}
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return "", fmt.Errorf("failed to set local answer: %w", err)
	}
	return answer.SDP, nil
}

// SetRemoteDescription applies the remote session description.
func (c *webrtcConn) SetRemoteDescription(sdpType webrtc.SDPType, sdp string) error {
	if err := c.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: sdpType, SDP: sdp,
	}); err != nil {
		return fmt.Errorf("failed to set remote description: %w", err)
	}
	return nil
}

// AddICECandidate feeds one remote candidate into the connection.
func (c *webrtcConn) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(candidate)
}

// AddTrack attaches a local track and drains its RTCP stream.
func (c *webrtcConn) AddTrack(track webrtc.TrackLocal) error {
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}
	go func() {
		rtcpBuf := make([]byte, 1500)
		for {
			if _, _, rtcpErr := sender.Read(rtcpBuf); rtcpErr != nil {
				return
			}
		}
	}()
	return nil
}

// CreateDataChannel opens a reliable ordered channel with the given label.
func (c *webrtcConn) CreateDataChannel(label string) (DataChannel, error) {
	dc, err := c.pc.CreateDataChannel(label, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create data channel: %w", err)
	}
	return &dataChannel{dc: dc}, nil
}

// OnICECandidate registers the trickle callback. The gathering-complete
// nil candidate is filtered out.
func (c *webrtcConn) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	c.pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate != nil {
			fn(candidate.ToJSON())
		}
	})
}

// OnTrack registers the remote track callback.
func (c *webrtcConn) OnTrack(fn func(RemoteTrack)) {
	c.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		fn(RemoteTrack{
			ID:       track.ID(),
			Kind:     track.Kind().String(),
			StreamID: track.StreamID(),
			Track:    track,
		})
	})
}

// OnDataChannel registers the callback for channels opened by the remote.
func (c *webrtcConn) OnDataChannel(fn func(DataChannel)) {
	c.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		fn(&dataChannel{dc: dc})
	})
}

// OnConnectionStateChange registers the transport state callback.
func (c *webrtcConn) OnConnectionStateChange(fn func(webrtc.PeerConnectionState)) {
	c.pc.OnConnectionStateChange(fn)
}

// Close releases the connection.
func (c *webrtcConn) Close() error {
	return c.pc.Close()
}

// dataChannel wraps the pion data channel.
type dataChannel struct {
	dc *webrtc.DataChannel
}

func (d *dataChannel) Label() string {
	return d.dc.Label()
}

func (d *dataChannel) Send(data []byte) error {
	return d.dc.Send(data)
}

func (d *dataChannel) OnOpen(fn func()) {
	d.dc.OnOpen(fn)
}

func (d *dataChannel) OnMessage(fn func(data []byte)) {
	d.dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		fn(msg.Data)
	})
}

func (d *dataChannel) Close() error {
	return d.dc.Close()
}
