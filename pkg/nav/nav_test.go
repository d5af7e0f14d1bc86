package nav

import (
	"errors"
	"testing"

	"github.com/bgrewell/dvd-kit/internal/fixture"
	"github.com/bgrewell/dvd-kit/pkg/catalog"
	"github.com/bgrewell/dvd-kit/pkg/chain"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/ifo"
	"github.com/stretchr/testify/require"
)

const (
	featureTitle  = 1
	extraTitle    = 2
	scenarioTitle = 3
)

type loader struct {
	sets  map[int]*ifo.VTS
	loads int
}

func (l *loader) LoadIndex(title catalog.Title) (*chain.Index, error) {
	l.loads++
	vts, ok := l.sets[title.VTS]
	if !ok {
		return nil, errors.New("no such title set")
	}
	return chain.Build(vts, title)
}

type seek struct {
	titleSet int
	sector   uint32
}

type recorder struct {
	seeks []seek
	err   error
}

func (r *recorder) SeekSector(titleSet int, sector uint32) error {
	if r.err != nil {
		return r.err
	}
	r.seeks = append(r.seeks, seek{titleSet, sector})
	return nil
}

func (r *recorder) last() seek {
	return r.seeks[len(r.seeks)-1]
}

func newCursor(t *testing.T, scenario fixture.VTS) (*Cursor, *loader, *recorder) {
	t.Helper()
	vmg, err := ifo.DecodeVMG(fixture.BuildVMG(fixture.SampleVMG()))
	require.NoError(t, err)
	titles, err := catalog.New(vmg)
	require.NoError(t, err)

	feature, err := ifo.DecodeVTS(fixture.BuildVTS(fixture.FeatureVTS()))
	require.NoError(t, err)
	second, err := ifo.DecodeVTS(fixture.BuildVTS(scenario))
	require.NoError(t, err)

	l := &loader{sets: map[int]*ifo.VTS{1: feature, 2: second}}
	r := &recorder{}
	return New(titles, l, r), l, r
}

func open(t *testing.T, title uint32) (*Cursor, *recorder) {
	t.Helper()
	c, _, r := newCursor(t, fixture.ScenarioVTS())
	_, err := c.OpenTitle(title)
	require.NoError(t, err)
	return c, r
}

func walk(t *testing.T, c *Cursor) []chain.Window {
	t.Helper()
	var windows []chain.Window
	for i := 0; i < 20; i++ {
		w, err := c.Advance()
		if errors.Is(err, dvderr.ErrEndOfTitle) {
			return windows
		}
		require.NoError(t, err)
		windows = append(windows, w)
	}
	t.Fatal("walk did not reach the end of the title")
	return nil
}

func TestOpenTitle(t *testing.T) {
	c, l, r := newCursor(t, fixture.ScenarioVTS())
	require.False(t, c.State().Positioned)
	require.Equal(t, "idle", c.State().String())

	chapters, err := c.OpenTitle(featureTitle)
	require.NoError(t, err)
	require.Equal(t, 3, chapters)
	require.Equal(t, State{Positioned: true, Title: 1, Chapter: 1, Angle: 1}, c.State())
	require.Equal(t, chain.Window{Start: 0, End: 99}, c.Window())
	require.Equal(t, int64(100), c.CurrentWindow())
	require.Equal(t, []seek{{1, 0}}, r.seeks)

	t.Run("reuses the loaded index", func(t *testing.T) {
		_, err := c.OpenTitle(featureTitle)
		require.NoError(t, err)
		require.Equal(t, 1, l.loads)

		_, err = c.OpenTitle(scenarioTitle)
		require.NoError(t, err)
		require.Equal(t, 2, l.loads)
		require.Equal(t, seek{2, 0}, r.last())
	})

	t.Run("unknown title", func(t *testing.T) {
		_, err := c.OpenTitle(9)
		require.ErrorIs(t, err, dvderr.ErrOutOfRange)
	})
}

func TestNotPositioned(t *testing.T) {
	c, _, _ := newCursor(t, fixture.ScenarioVTS())
	require.ErrorIs(t, c.SelectChapter(1), dvderr.ErrNotPositioned)
	require.ErrorIs(t, c.SelectAngle(1), dvderr.ErrNotPositioned)
	require.ErrorIs(t, c.Seek(0), dvderr.ErrNotPositioned)
	_, err := c.Advance()
	require.ErrorIs(t, err, dvderr.ErrNotPositioned)
	require.Zero(t, c.CurrentWindow())
}

func TestAdvance(t *testing.T) {
	t.Run("angle 1 walks the first angle's pieces", func(t *testing.T) {
		c, r := open(t, featureTitle)
		require.Equal(t, []chain.Window{{Start: 100, End: 119}, {Start: 140, End: 159}, {Start: 180, End: 279}}, walk(t, c))
		require.Equal(t, []seek{{1, 0}, {1, 100}, {1, 140}, {1, 180}}, r.seeks)
		require.Equal(t, 3, c.State().Chapter)
	})

	t.Run("angle 2 walks the second angle's pieces", func(t *testing.T) {
		c, r := open(t, featureTitle)
		require.NoError(t, c.SelectAngle(2))
		require.Len(t, r.seeks, 1, "outside a block the angle waits for the next block")
		require.Equal(t, []chain.Window{{Start: 120, End: 139}, {Start: 160, End: 179}, {Start: 180, End: 279}}, walk(t, c))
	})

	t.Run("chapter changes are reported once", func(t *testing.T) {
		c, _ := open(t, featureTitle)
		require.False(t, c.ChapterChanged())

		_, err := c.Advance()
		require.NoError(t, err)
		require.Equal(t, 2, c.State().Chapter)
		require.True(t, c.ChapterChanged())
		require.False(t, c.ChapterChanged())

		_, err = c.Advance()
		require.NoError(t, err)
		require.False(t, c.ChapterChanged())

		_, err = c.Advance()
		require.NoError(t, err)
		require.Equal(t, 3, c.State().Chapter)
		require.True(t, c.ChapterChanged())
	})

	t.Run("cells increase and the walk terminates", func(t *testing.T) {
		c, _ := open(t, scenarioTitle)
		cells := []int{c.State().ProgramCell}
		steps := 0
		for {
			_, err := c.Advance()
			if errors.Is(err, dvderr.ErrEndOfTitle) {
				break
			}
			require.NoError(t, err)
			cells = append(cells, c.State().ProgramCell)
			steps++
			require.LessOrEqual(t, steps, c.Index().ProgramCellCount())
		}
		for i := 1; i < len(cells); i++ {
			require.Greater(t, cells[i], cells[i-1])
		}
		require.Equal(t, []int{0, 1, 2, 3, 5, 6}, cells)
		require.True(t, c.State().Positioned)
	})

	t.Run("unresolvable cell ends the title", func(t *testing.T) {
		layout := fixture.ScenarioVTS()
		layout.Addresses = append(layout.Addresses[:3:3], layout.Addresses[4:]...)
		c, _, _ := newCursor(t, layout)
		_, err := c.OpenTitle(scenarioTitle)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			_, err = c.Advance()
			require.NoError(t, err)
		}
		_, err = c.Advance()
		require.ErrorIs(t, err, dvderr.ErrEndOfTitle)
		require.ErrorIs(t, err, dvderr.ErrCellResolution)
		require.False(t, c.State().Positioned)
	})
}

func TestSelectChapter(t *testing.T) {
	t.Run("angle block entry", func(t *testing.T) {
		c, _ := open(t, scenarioTitle)
		require.NoError(t, c.SelectAngle(2))
		require.NoError(t, c.SelectChapter(2))
		require.Equal(t, 3, c.State().ProgramCell)
		require.Equal(t, 2, c.State().Chapter)

		require.NoError(t, c.SelectAngle(1))
		require.NoError(t, c.SelectChapter(2))
		require.Equal(t, 2, c.State().ProgramCell)
	})

	t.Run("lands inside the chapter", func(t *testing.T) {
		for _, title := range []uint32{featureTitle, extraTitle, scenarioTitle} {
			c, _ := open(t, title)
			idx := c.Index()
			for angle := 1; angle <= idx.AngleCount(); angle++ {
				require.NoError(t, c.SelectAngle(angle))
				for chapter := 1; chapter <= idx.ChapterCount(); chapter++ {
					require.NoError(t, c.SelectChapter(chapter))
					start, err := idx.ChapterStartCellIndex(chapter)
					require.NoError(t, err)
					end := idx.ProgramCellCount()
					if chapter < idx.ChapterCount() {
						end, err = idx.ChapterStartCellIndex(chapter + 1)
						require.NoError(t, err)
					}
					cell := c.State().ProgramCell
					require.GreaterOrEqual(t, cell, start, "title %d angle %d chapter %d", title, angle, chapter)
					require.Less(t, cell, end, "title %d angle %d chapter %d", title, angle, chapter)
				}
			}
		}
	})

	t.Run("out of range selects chapter 1", func(t *testing.T) {
		c, _ := open(t, scenarioTitle)
		require.NoError(t, c.SelectChapter(3))
		for _, chapter := range []int{0, -1, 4, 99} {
			require.NoError(t, c.SelectChapter(chapter))
			require.Equal(t, 1, c.State().Chapter)
			require.Equal(t, 0, c.State().ProgramCell)
		}
	})

	t.Run("repositions the source", func(t *testing.T) {
		c, r := open(t, featureTitle)
		require.NoError(t, c.SelectChapter(3))
		require.Equal(t, seek{1, 180}, r.last())
		require.Equal(t, int64(100), c.CurrentWindow())
	})
}

func TestSelectAngle(t *testing.T) {
	t.Run("switch inside a block", func(t *testing.T) {
		c, r := open(t, featureTitle)
		_, err := c.Advance()
		require.NoError(t, err)

		require.NoError(t, c.SelectAngle(2))
		require.Equal(t, 2, c.State().ProgramCell)
		require.Equal(t, 2, c.State().AddressCell)
		require.Equal(t, seek{1, 120}, r.last())

		_, err = c.Advance()
		require.NoError(t, err)
		require.NoError(t, c.SelectAngle(1))
		require.Equal(t, 1, c.State().ProgramCell)
		require.Equal(t, 1, c.State().AddressCell, "switching back rescans from the start")
		require.Equal(t, seek{1, 100}, r.last())
	})

	t.Run("single angle title ignores angle 2", func(t *testing.T) {
		one, _ := open(t, extraTitle)
		two, _ := open(t, extraTitle)
		require.NoError(t, one.SelectAngle(1))
		require.NoError(t, two.SelectAngle(2))
		require.Equal(t, one.State(), two.State())
		require.Equal(t, walk(t, one), walk(t, two))
	})

	t.Run("out of range selects angle 1", func(t *testing.T) {
		c, _ := open(t, featureTitle)
		require.NoError(t, c.SelectAngle(2))
		require.NoError(t, c.SelectAngle(3))
		require.Equal(t, 1, c.State().Angle)
	})
}

func TestSeek(t *testing.T) {
	t.Run("window contains the target", func(t *testing.T) {
		tests := []struct {
			title  uint32
			sector int64
			cell   int
		}{
			{scenarioTitle, 0, 0},
			{scenarioTitle, 15, 1},
			{scenarioTitle, 35, 3},
			{scenarioTitle, 69, 6},
			{featureTitle, 50, 0},
			{featureTitle, 99, 0},
			{featureTitle, 200, 3},
			{featureTitle, 279, 3},
			{extraTitle, 300, 0},
		}
		for _, tt := range tests {
			c, r := open(t, tt.title)
			require.NoError(t, c.Seek(tt.sector*2048+100))
			s := c.State()
			require.Equal(t, tt.cell, s.ProgramCell, "title %d sector %d", tt.title, tt.sector)
			require.Equal(t, uint32(tt.sector), s.Sector)
			require.True(t, c.Window().Contains(uint32(tt.sector)))
			require.Equal(t, int64(c.Window().End)-tt.sector+1, c.CurrentWindow())
			require.Equal(t, uint32(tt.sector), r.last().sector)
		}
	})

	t.Run("chapter follows the cell", func(t *testing.T) {
		c, _ := open(t, scenarioTitle)
		require.NoError(t, c.Seek(55*2048))
		require.Equal(t, 3, c.State().Chapter)
		require.NoError(t, c.Seek(12*2048))
		require.Equal(t, 1, c.State().Chapter)
	})

	t.Run("angle block clamps to the angle's piece", func(t *testing.T) {
		c, r := open(t, featureTitle)
		require.NoError(t, c.Seek(130*2048))
		require.Equal(t, 1, c.State().ProgramCell)
		require.Equal(t, 3, c.State().AddressCell)
		require.Equal(t, uint32(140), c.State().Sector)
		require.Equal(t, seek{1, 140}, r.last())

		require.NoError(t, c.SelectAngle(2))
		require.NoError(t, c.Seek(105*2048))
		require.Equal(t, 2, c.State().ProgramCell)
		require.Equal(t, uint32(120), c.State().Sector)

		require.NoError(t, c.Seek(150*2048))
		require.Equal(t, 2, c.State().ProgramCell)
		require.Equal(t, 4, c.State().AddressCell)
		require.Equal(t, uint32(160), c.State().Sector)
	})

	t.Run("angle block past the angle's last piece", func(t *testing.T) {
		c, r := open(t, featureTitle)
		require.NoError(t, c.Seek(170*2048))
		s := c.State()
		require.Equal(t, 3, s.ProgramCell)
		require.Equal(t, 5, s.AddressCell)
		require.Equal(t, 3, s.Chapter)
		require.GreaterOrEqual(t, s.Sector, uint32(170))
		require.Equal(t, uint32(180), s.Sector)
		require.Equal(t, chain.Window{Start: 180, End: 279}, c.Window())
		require.Equal(t, seek{1, 180}, r.last())

		_, err := c.Advance()
		require.ErrorIs(t, err, dvderr.ErrEndOfTitle)
	})

	t.Run("past the last cell", func(t *testing.T) {
		c, _ := open(t, scenarioTitle)
		require.NoError(t, c.SelectChapter(2))
		before := c.State()
		require.ErrorIs(t, c.Seek(70*2048), dvderr.ErrOutOfRange)
		require.ErrorIs(t, c.Seek(-1), dvderr.ErrOutOfRange)
		require.Equal(t, before, c.State())
	})
}

func TestConsume(t *testing.T) {
	c, _ := open(t, featureTitle)
	c.Consume(40)
	require.Equal(t, int64(60), c.CurrentWindow())
	require.Equal(t, uint32(40), c.State().Sector)
	c.Consume(100)
	require.Equal(t, int64(0), c.CurrentWindow())
	c.Consume(-3)
	require.Equal(t, int64(0), c.CurrentWindow())
}

func TestBlockSourceError(t *testing.T) {
	c, r := open(t, featureTitle)
	r.err = errors.New("medium error")
	err := c.SelectChapter(2)
	require.ErrorIs(t, err, r.err)
}

func TestClose(t *testing.T) {
	c, _ := open(t, featureTitle)
	c.Close()
	require.Equal(t, State{}, c.State())
	require.Zero(t, c.CurrentWindow())
	_, err := c.Advance()
	require.ErrorIs(t, err, dvderr.ErrNotPositioned)
}
