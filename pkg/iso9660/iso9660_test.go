package iso9660

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/bgrewell/dvd-kit/internal/fixture"
	"github.com/stretchr/testify/require"
)

func openImage(t *testing.T) (*ISO9660, fixture.Disc) {
	t.Helper()
	disc := fixture.SampleDisc()
	location := filepath.Join(t.TempDir(), "disc.iso")
	require.NoError(t, disc.WriteISO(location))

	f, err := os.Open(location)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	iso, err := Open(f)
	require.NoError(t, err)
	return iso, disc
}

func TestOpen(t *testing.T) {
	iso, disc := openImage(t)

	t.Run("volume", func(t *testing.T) {
		require.Equal(t, uint16(2048), iso.PrimaryVolumeDescriptor().LogicalBlockSize)
		require.NotZero(t, iso.PrimaryVolumeDescriptor().VolumeSpaceSize)
	})

	t.Run("read dir", func(t *testing.T) {
		records, err := iso.ReadDir("/VIDEO_TS")
		require.NoError(t, err)
		var names []string
		for _, rec := range records {
			names = append(names, rec.Name())
		}
		require.ElementsMatch(t, disc.Names(), names)
	})

	t.Run("file contents", func(t *testing.T) {
		for _, name := range disc.Names() {
			r, err := iso.Open("/video_ts/" + name)
			require.NoError(t, err, name)
			data, err := io.ReadAll(r)
			require.NoError(t, err, name)
			require.True(t, bytes.Equal(disc.Files[name], data), name)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := iso.Lookup("/VIDEO_TS/VTS_09_0.IFO")
		require.ErrorIs(t, err, fs.ErrNotExist)
		_, err = iso.Lookup("/AUDIO_TS/X")
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("directory is not a file", func(t *testing.T) {
		_, err := iso.Open("/VIDEO_TS")
		require.Error(t, err)
	})
}

func TestOpenNotISO(t *testing.T) {
	_, err := Open(bytes.NewReader(make([]byte, 40*2048)))
	require.ErrorIs(t, err, ErrNotISO9660)

	_, err = Open(bytes.NewReader(make([]byte, 100)))
	require.ErrorIs(t, err, ErrNotISO9660)
}
