package catalog

import (
	"testing"

	"github.com/bgrewell/dvd-kit/internal/fixture"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/ifo"
	"github.com/stretchr/testify/require"
)

func sampleCatalog(t *testing.T) *Catalog {
	vmg, err := ifo.DecodeVMG(fixture.BuildVMG(fixture.SampleVMG()))
	require.NoError(t, err)
	c, err := New(vmg)
	require.NoError(t, err)
	return c
}

func TestCatalog(t *testing.T) {
	c := sampleCatalog(t)

	t.Run("count", func(t *testing.T) {
		require.Equal(t, uint32(3), c.TitleCount())
	})

	t.Run("get title", func(t *testing.T) {
		title, err := c.GetTitle(1)
		require.NoError(t, err)
		require.Equal(t, Title{
			ID:           1,
			ChapterCount: 3,
			AngleCount:   2,
			VTS:          1,
			VTSTitle:     1,
			StartSector:  1024,
			PlaybackType: 0x3c,
		}, title)

		title, err = c.GetTitle(3)
		require.NoError(t, err)
		require.Equal(t, 2, title.VTS)
		require.Equal(t, 1, title.VTSTitle)
	})

	t.Run("out of range", func(t *testing.T) {
		for _, id := range []uint32{0, 4, 1000} {
			_, err := c.GetTitle(id)
			require.ErrorIs(t, err, dvderr.ErrOutOfRange, "id %d", id)
		}
	})

	t.Run("titles and sets", func(t *testing.T) {
		require.Len(t, c.Titles(), 3)
		require.Equal(t, []int{1, 2}, c.TitleSets())
	})
}

func TestCatalogValidation(t *testing.T) {
	t.Run("zero angles become one", func(t *testing.T) {
		c, err := New(&ifo.VMG{TitleSetCount: 1, Titles: []ifo.TitleEntry{{TitleSet: 1, TitleSetTitle: 1, ChapterCount: 1}}})
		require.NoError(t, err)
		title, err := c.GetTitle(1)
		require.NoError(t, err)
		require.Equal(t, uint8(1), title.AngleCount)
	})

	t.Run("unknown title set", func(t *testing.T) {
		_, err := New(&ifo.VMG{TitleSetCount: 1, Titles: []ifo.TitleEntry{{TitleSet: 2, TitleSetTitle: 1}}})
		require.ErrorIs(t, err, dvderr.ErrFormat)
	})

	t.Run("missing title set title", func(t *testing.T) {
		_, err := New(&ifo.VMG{TitleSetCount: 1, Titles: []ifo.TitleEntry{{TitleSet: 1}}})
		require.ErrorIs(t, err, dvderr.ErrFormat)
	})
}
