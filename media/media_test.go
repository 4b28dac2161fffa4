package media_test

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meshroom/media"
)

func TestAcquireReturnsTwoTracks(t *testing.T) {
	source := media.NewStaticSource("local")
	tracks, err := source.Acquire()
	require.NoError(t, err)

	assert.Equal(t, media.AudioKind, tracks.Audio.Kind())
	assert.Equal(t, media.VideoKind, tracks.Video.Kind())
	assert.True(t, tracks.Audio.Enabled())
	assert.True(t, tracks.Video.Enabled())
	assert.Len(t, tracks.All(), 2)
}

func TestAcquireIsOncePerSession(t *testing.T) {
	source := media.NewStaticSource("local")
	first, err := source.Acquire()
	require.NoError(t, err)
	second, err := source.Acquire()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestAcquireFailure(t *testing.T) {
	source := media.NewFailingSource(media.ErrDeviceDenied)
	_, err := source.Acquire()
	assert.ErrorIs(t, err, media.ErrDeviceDenied)
}

func TestSetEnabledGatesWrites(t *testing.T) {
	source := media.NewStaticSource("local")
	tracks, err := source.Acquire()
	require.NoError(t, err)

	packet := &rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 1, PayloadType: 96},
		Payload: []byte{0x00, 0x02},
	}

	// Unbound tracks drop writes, so both paths must return cleanly; the
	// muted path must not even reach the underlying track.
	tracks.Video.SetEnabled(false)
	assert.False(t, tracks.Video.Enabled())
	assert.NoError(t, tracks.Video.WriteRTP(packet))

	tracks.Video.SetEnabled(true)
	assert.True(t, tracks.Video.Enabled())
	assert.NoError(t, tracks.Video.WriteRTP(packet))
}

func TestReleaseIsIdempotent(t *testing.T) {
	source := media.NewStaticSource("local")
	_, err := source.Acquire()
	require.NoError(t, err)

	source.Release()
	source.Release()
	assert.True(t, source.Released())

	_, err = source.Acquire()
	assert.ErrorIs(t, err, media.ErrDeviceUnavailable)
}
