package source

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bgrewell/dvd-kit/internal/fixture"
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/stretchr/testify/require"
)

func sources(t *testing.T) map[string]Source {
	t.Helper()
	disc := fixture.SampleDisc()
	root := t.TempDir()

	_, err := disc.WriteFolder(filepath.Join(root, "folder"))
	require.NoError(t, err)
	folder, err := OpenFolder(filepath.Join(root, "folder"))
	require.NoError(t, err)

	location := filepath.Join(root, "disc.iso")
	require.NoError(t, disc.WriteISO(location))
	img, err := OpenImage(location)
	require.NoError(t, err)

	t.Cleanup(func() {
		folder.Close()
		img.Close()
	})
	return map[string]Source{"folder": folder, "image": img}
}

func TestSources(t *testing.T) {
	disc := fixture.SampleDisc()
	for name, src := range sources(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("information files", func(t *testing.T) {
				data, err := src.ReadIFO(0)
				require.NoError(t, err)
				require.Equal(t, disc.Files[consts.VMG_IFO_NAME], data)

				data, err = src.ReadBackup(1)
				require.NoError(t, err)
				require.Equal(t, disc.Files["VTS_01_0.BUP"], data)

				_, err = src.ReadIFO(3)
				require.ErrorIs(t, err, fs.ErrNotExist)
				_, err = src.ReadIFO(100)
				require.ErrorIs(t, err, dvderr.ErrOutOfRange)
			})

			t.Run("title sectors", func(t *testing.T) {
				n, err := src.TitleSectors(1)
				require.NoError(t, err)
				require.Equal(t, int64(380), n)
				n, err = src.TitleSectors(2)
				require.NoError(t, err)
				require.Equal(t, int64(70), n)
				_, err = src.TitleSectors(3)
				require.ErrorIs(t, err, fs.ErrNotExist)
			})

			t.Run("reads cross VOB parts", func(t *testing.T) {
				require.NoError(t, src.SeekSector(1, 198))
				buf := make([]byte, 4*consts.DVD_SECTOR_SIZE)
				n, err := src.ReadBlocks(buf)
				require.NoError(t, err)
				require.Equal(t, len(buf), n)
				for i := 0; i < 4; i++ {
					set, sector := fixture.SectorID(buf[i*consts.DVD_SECTOR_SIZE:])
					require.Equal(t, 1, set)
					require.Equal(t, uint32(198+i), sector)
				}

				n, err = src.ReadBlocks(buf[:consts.DVD_SECTOR_SIZE])
				require.NoError(t, err)
				require.Equal(t, consts.DVD_SECTOR_SIZE, n)
				_, sector := fixture.SectorID(buf)
				require.Equal(t, uint32(202), sector)
			})

			t.Run("switching title sets", func(t *testing.T) {
				require.NoError(t, src.SeekSector(2, 15))
				buf := make([]byte, consts.DVD_SECTOR_SIZE)
				_, err := src.ReadBlocks(buf)
				require.NoError(t, err)
				set, sector := fixture.SectorID(buf)
				require.Equal(t, 2, set)
				require.Equal(t, uint32(15), sector)
			})

			t.Run("end of title VOBs", func(t *testing.T) {
				require.NoError(t, src.SeekSector(2, 69))
				buf := make([]byte, 2*consts.DVD_SECTOR_SIZE)
				n, err := src.ReadBlocks(buf)
				require.ErrorIs(t, err, io.EOF)
				require.Equal(t, consts.DVD_SECTOR_SIZE, n)

				require.NoError(t, src.SeekSector(2, 70))
				require.ErrorIs(t, src.SeekSector(2, 71), dvderr.ErrOutOfRange)
			})
		})
	}
}

func TestFolderOpenFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := fixture.SampleDisc().WriteFolder(dir)
	require.NoError(t, err)
	src, err := OpenFolder(dir)
	require.NoError(t, err)
	defer src.Close()
	f := src.(*disc).store.(*folder)

	for i := 0; i < 3; i++ {
		_, err := src.ReadIFO(0)
		require.NoError(t, err)
		_, err = src.ReadBackup(1)
		require.NoError(t, err)
		_, err = src.ReadIFO(2)
		require.NoError(t, err)
	}
	require.Empty(t, f.files)

	require.NoError(t, src.SeekSector(1, 0))
	require.Len(t, f.files, 2)
	_, err = src.ReadIFO(1)
	require.NoError(t, err)
	require.NoError(t, src.SeekSector(1, 10))
	require.Len(t, f.files, 2)

	require.NoError(t, src.Close())
	require.Empty(t, f.files)
}

func TestReadBeforeSeek(t *testing.T) {
	dir, err := fixture.SampleDisc().WriteFolder(t.TempDir())
	require.NoError(t, err)
	src, err := OpenFolder(dir)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.ReadBlocks(make([]byte, 16))
	require.ErrorIs(t, err, dvderr.ErrNotPositioned)
}

func TestFolderNames(t *testing.T) {
	disc := fixture.SampleDisc()
	dir := filepath.Join(t.TempDir(), "video_ts")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range disc.Names() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, strings.ToLower(name)), disc.Files[name], 0o644))
	}

	src, err := OpenFolder(dir)
	require.NoError(t, err)
	defer src.Close()

	data, err := src.ReadIFO(2)
	require.NoError(t, err)
	require.Equal(t, disc.Files["VTS_02_0.IFO"], data)
}

func TestOpenErrors(t *testing.T) {
	_, err := OpenFolder(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, err = OpenImage(filepath.Join(t.TempDir(), "missing.iso"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
