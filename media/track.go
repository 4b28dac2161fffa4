package media

import (
	"fmt"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// Track kinds.
const (
	AudioKind = "audio"
	VideoKind = "video"
)

// Track is one logical capture track. Muting is a local flag that gates
// payload writes at the source; it never touches the peer connections the
// track is attached to.
type Track struct {
	kind    string
	enabled atomic.Bool
	local   *webrtc.TrackLocalStaticRTP
}

func newTrack(kind string, local *webrtc.TrackLocalStaticRTP) *Track {
	t := &Track{
		kind:  kind,
		local: local,
	}
	t.enabled.Store(true)
	return t
}

// Kind returns "audio" or "video".
func (t *Track) Kind() string {
	return t.kind
}

// SetEnabled flips the mute flag. O(1), no renegotiation.
func (t *Track) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// Enabled reports whether the track is currently unmuted.
func (t *Track) Enabled() bool {
	return t.enabled.Load()
}

// Local returns the attachable form of the track. Attaching it to another
// connection does not disturb existing attachments.
func (t *Track) Local() webrtc.TrackLocal {
	return t.local
}

// WriteRTP forwards one packet from the capture device. Packets written
// while muted are dropped.
func (t *Track) WriteRTP(p *rtp.Packet) error {
	if !t.enabled.Load() {
		return nil
	}
	if err := t.local.WriteRTP(p); err != nil {
		return fmt.Errorf("failed to write %s packet: %w", t.kind, err)
	}
	return nil
}
