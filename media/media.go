// Package media wraps the local capture device as two logical tracks.
package media

import (
	"errors"
)

var (
	// ErrDeviceDenied is returned when the user denies hardware access.
	ErrDeviceDenied = errors.New("device access denied")

	// ErrDeviceUnavailable is returned when no usable capture device exists.
	ErrDeviceUnavailable = errors.New("device unavailable")
)

// Source acquires the local capture device. Acquire is called once per
// session; Release stops capture and must be idempotent, teardown may
// race with a failed join.
type Source interface {
	Acquire() (*Tracks, error)
	Release()
}

// Tracks is the handle returned by a successful Acquire: exactly one audio
// and one video track, each independently mutable at the source.
type Tracks struct {
	Audio *Track
	Video *Track
}

// All returns both tracks, for attaching to a peer connection.
func (t *Tracks) All() []*Track {
	return []*Track{t.Audio, t.Video}
}
