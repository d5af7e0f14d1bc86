package dvd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bgrewell/dvd-kit/internal/fixture"
	"github.com/bgrewell/dvd-kit/pkg/chain"
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/info"
	"github.com/bgrewell/dvd-kit/pkg/option"
	"github.com/stretchr/testify/require"
)

func writeFolder(t *testing.T) string {
	t.Helper()
	dir, err := fixture.SampleDisc().WriteFolder(t.TempDir())
	require.NoError(t, err)
	return dir
}

func openFolder(t *testing.T, opts ...option.OpenOption) *Disc {
	t.Helper()
	d, err := Open(writeFolder(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func openImage(t *testing.T, opts ...option.OpenOption) *Disc {
	t.Helper()
	location := filepath.Join(t.TempDir(), "disc.iso")
	require.NoError(t, fixture.SampleDisc().WriteISO(location))
	d, err := Open(location, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

// sectorsOf splits extracted data back into (title set, sector) pairs.
func sectorsOf(t *testing.T, data []byte) []uint32 {
	t.Helper()
	require.Zero(t, len(data)%consts.DVD_SECTOR_SIZE)
	var sectors []uint32
	for off := 0; off < len(data); off += consts.DVD_SECTOR_SIZE {
		_, sector := fixture.SectorID(data[off:])
		sectors = append(sectors, sector)
	}
	return sectors
}

func span(first, last uint32) []uint32 {
	var s []uint32
	for i := first; i <= last; i++ {
		s = append(s, i)
	}
	return s
}

func concat(parts ...[]uint32) []uint32 {
	var all []uint32
	for _, p := range parts {
		all = append(all, p...)
	}
	return all
}

func TestOpen(t *testing.T) {
	for name, d := range map[string]*Disc{"folder": openFolder(t), "image": openImage(t)} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, "DVD-KIT FIXTURE", d.VMG().ProviderID)
			require.Equal(t, uint32(3), d.Catalog().TitleCount())

			vts, err := d.VTS(2)
			require.NoError(t, err)
			require.Equal(t, "DVDVIDEO-VTS", vts.Identifier)
			again, err := d.VTS(2)
			require.NoError(t, err)
			require.Same(t, vts, again)

			_, err = d.VTS(0)
			require.ErrorIs(t, err, dvderr.ErrOutOfRange)
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nothing"))
	require.Error(t, err)
}

func TestBackupFallback(t *testing.T) {
	t.Run("broken IFO uses the backup", func(t *testing.T) {
		dir := writeFolder(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, consts.VMG_IFO_NAME), []byte("garbage"), 0o644))
		require.NoError(t, os.Remove(filepath.Join(dir, "VTS_01_0.IFO")))

		d, err := Open(dir)
		require.NoError(t, err)
		defer d.Close()
		_, err = d.VTS(1)
		require.NoError(t, err)
	})

	t.Run("prefer backup", func(t *testing.T) {
		dir := writeFolder(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, consts.VMG_BUP_NAME), []byte("garbage"), 0o644))
		d, err := Open(dir, option.WithPreferBackup(true))
		require.NoError(t, err)
		d.Close()
	})

	t.Run("both broken", func(t *testing.T) {
		dir := writeFolder(t)
		bad := bytes.Repeat([]byte{0}, 4096)
		require.NoError(t, os.WriteFile(filepath.Join(dir, consts.VMG_IFO_NAME), bad, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, consts.VMG_BUP_NAME), bad, 0o644))
		_, err := Open(dir)
		require.ErrorIs(t, err, dvderr.ErrFormat)
	})
}

func TestExtractTitle(t *testing.T) {
	d := openImage(t)

	tests := []struct {
		name string
		sel  Selection
		want []uint32
	}{
		{"feature angle 1", Selection{Title: 1},
			concat(span(0, 99), span(100, 119), span(140, 159), span(180, 279))},
		{"feature angle 2", Selection{Title: 1, Angle: 2},
			concat(span(0, 99), span(120, 139), span(160, 179), span(180, 279))},
		{"chapter 2 only", Selection{Title: 1, FirstChapter: 2, LastChapter: 2},
			concat(span(100, 119), span(140, 159))},
		{"chapter 2 angle 2", Selection{Title: 1, FirstChapter: 2, LastChapter: 2, Angle: 2},
			concat(span(120, 139), span(160, 179))},
		{"extra", Selection{Title: 2}, span(280, 379)},
		{"scenario", Selection{Title: 3},
			concat(span(0, 39), span(50, 69))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			n, err := d.ExtractTitle(context.Background(), &out, tt.sel)
			require.NoError(t, err)
			require.Equal(t, int64(out.Len()), n)
			require.Equal(t, tt.want, sectorsOf(t, out.Bytes()))

			total, err := d.TitleSectors(tt.sel)
			require.NoError(t, err)
			require.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestExtractProgress(t *testing.T) {
	var calls int
	var lastRead, lastTotal int64
	var chapters []int
	d := openFolder(t, option.WithExtractionProgress(func(title, chapter, chapterCount int, sectorsRead, totalSectors int64) {
		require.Equal(t, 1, title)
		require.Equal(t, 3, chapterCount)
		calls++
		lastRead, lastTotal = sectorsRead, totalSectors
		if len(chapters) == 0 || chapters[len(chapters)-1] != chapter {
			chapters = append(chapters, chapter)
		}
	}))

	var out bytes.Buffer
	_, err := d.ExtractTitle(context.Background(), &out, Selection{Title: 1})
	require.NoError(t, err)
	require.Greater(t, calls, 3)
	require.Equal(t, int64(240), lastRead)
	require.Equal(t, int64(240), lastTotal)
	require.Equal(t, []int{1, 2, 3}, chapters)
}

func TestExtractCanceled(t *testing.T) {
	d := openFolder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	_, err := d.ExtractTitle(ctx, &out, Selection{Title: 1})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, out.Len())
}

func TestChapterRange(t *testing.T) {
	d := openFolder(t)

	t.Run("last before first", func(t *testing.T) {
		sel := Selection{Title: 1, FirstChapter: 3, LastChapter: 2}
		var out bytes.Buffer
		n, err := d.ExtractTitle(context.Background(), &out, sel)
		require.ErrorIs(t, err, dvderr.ErrOutOfRange)
		require.Zero(t, n)
		require.Zero(t, out.Len())

		_, err = d.TitleSectors(sel)
		require.ErrorIs(t, err, dvderr.ErrOutOfRange)
		_, err = d.Windows(sel)
		require.ErrorIs(t, err, dvderr.ErrOutOfRange)
	})

	t.Run("last past the title", func(t *testing.T) {
		total, err := d.TitleSectors(Selection{Title: 1, FirstChapter: 3, LastChapter: 9})
		require.NoError(t, err)
		require.Equal(t, int64(100), total)
	})
}

func TestWindows(t *testing.T) {
	d := openFolder(t)
	windows, err := d.Windows(Selection{Title: 1, Angle: 2})
	require.NoError(t, err)
	require.Equal(t, []chain.Window{{Start: 0, End: 99}, {Start: 120, End: 139}, {Start: 160, End: 179}, {Start: 180, End: 279}}, windows)

	_, err = d.Windows(Selection{Title: 7})
	require.ErrorIs(t, err, dvderr.ErrOutOfRange)
}

func TestSeekTime(t *testing.T) {
	d := openFolder(t)
	cur := d.NewCursor()
	require.ErrorIs(t, d.SeekTime(cur, time.Second), dvderr.ErrNotPositioned)

	_, err := cur.OpenTitle(3)
	require.NoError(t, err)
	require.NoError(t, d.SeekTime(cur, 35*time.Second))
	require.Equal(t, uint32(30), cur.State().Sector)
	require.Equal(t, 3, cur.State().ProgramCell)

	_, err = cur.OpenTitle(1)
	require.NoError(t, err)
	require.ErrorIs(t, d.SeekTime(cur, time.Second), dvderr.ErrOutOfRange)
}

func TestSummary(t *testing.T) {
	d := openFolder(t)
	sum := d.Summary()

	require.Equal(t, "DVD-KIT FIXTURE", sum.Provider)
	require.Equal(t, "0xfe", sum.RegionMask)
	require.Equal(t, 2, sum.TitleSets)
	require.Len(t, sum.Titles, 3)

	feature := sum.Titles[0]
	require.Empty(t, feature.Error)
	require.Equal(t, 2, feature.Angles)
	require.Equal(t, 1, feature.PGC)
	require.Len(t, feature.Cells, 4)
	require.Equal(t, "interleaved-entry", feature.Cells[1].Block)
	require.Empty(t, feature.Cells[0].Block)
	require.Equal(t, []info.Chapter{
		{Number: 1, FirstCell: 0, Duration: 100 * time.Second},
		{Number: 2, FirstCell: 1, Duration: 40 * time.Second},
		{Number: 3, FirstCell: 3, Duration: 100 * time.Second},
	}, feature.Chapters)
	require.Len(t, feature.Audio, 2)
	require.Equal(t, "0x80bd", feature.Audio[0].ID)
	require.Equal(t, "English", feature.Audio[0].Language)
	require.Len(t, feature.Subtitle, 1)

	data, err := sum.YAML()
	require.NoError(t, err)
	parsed, err := info.Parse(data)
	require.NoError(t, err)
	require.Len(t, parsed.Titles, 3)
	require.Equal(t, sum.ChapterCount(), parsed.ChapterCount())
}
