package media

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
)

// StaticSource is a capture source built on static RTP tracks. The
// surrounding application pumps encoded frames into the tracks; as far as
// the session core is concerned this is the hardware.
type StaticSource struct {
	mu       sync.Mutex
	streamID string
	acquired bool
	released bool
	tracks   *Tracks

	// failWith, when set, makes Acquire fail. Used to exercise the
	// device-denied paths without hardware.
	failWith error
}

// NewStaticSource creates a source whose tracks share the given stream ID.
func NewStaticSource(streamID string) *StaticSource {
	return &StaticSource{streamID: streamID}
}

// NewFailingSource creates a source whose Acquire always fails with err.
func NewFailingSource(err error) *StaticSource {
	return &StaticSource{failWith: err}
}

// Acquire creates the audio and video tracks. Hardware is requested once:
// repeated calls return the same handle.
func (s *StaticSource) Acquire() (*Tracks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}
	if s.released {
		return nil, fmt.Errorf("source already released: %w", ErrDeviceUnavailable)
	}
	if s.acquired {
		return s.tracks, nil
	}

	audio, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		AudioKind, s.streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio track: %w", err)
	}
	video, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		VideoKind, s.streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to create video track: %w", err)
	}

	s.tracks = &Tracks{
		Audio: newTrack(AudioKind, audio),
		Video: newTrack(VideoKind, video),
	}
	s.acquired = true
	return s.tracks, nil
}

// Release stops capture. Idempotent.
func (s *StaticSource) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	s.acquired = false
	s.tracks = nil
}

// Released reports whether the source has been released.
func (s *StaticSource) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
