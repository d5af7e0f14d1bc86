package dvd

import (
	"fmt"
	"time"

	"github.com/bgrewell/dvd-kit/pkg/chain"
	"github.com/bgrewell/dvd-kit/pkg/ifo"
	"github.com/bgrewell/dvd-kit/pkg/info"
)

// Summary describes every title of the disc. Titles that cannot be indexed are listed with their error
// instead of failing the whole summary.
func (d *Disc) Summary() *info.Disc {
	sum := &info.Disc{
		Provider:   d.vmg.ProviderID,
		RegionMask: fmt.Sprintf("0x%02x", d.vmg.RegionMask()),
		TitleSets:  int(d.vmg.TitleSetCount),
	}
	for _, title := range d.catalog.Titles() {
		t := info.Title{
			ID:       title.ID,
			VTS:      title.VTS,
			VTSTitle: title.VTSTitle,
			Angles:   int(title.AngleCount),
		}
		if err := d.describeTitle(&t); err != nil {
			d.log.Warn("title not indexed", "title", title.ID, "error", err.Error())
			t.Error = err.Error()
		}
		sum.Titles = append(sum.Titles, t)
	}
	return sum
}

func (d *Disc) describeTitle(t *info.Title) error {
	title, err := d.catalog.GetTitle(t.ID)
	if err != nil {
		return err
	}
	idx, err := d.LoadIndex(title)
	if err != nil {
		return err
	}
	vts, err := d.VTS(title.VTS)
	if err != nil {
		return err
	}
	pgc := vts.PGCs[idx.PGCNumber()-1].PGC
	t.PGC = idx.PGCNumber()
	t.Duration = pgc.PlaybackTime.Duration()

	for i := 0; i < idx.ProgramCellCount(); i++ {
		cell, _ := idx.GetProgramCell(i)
		c := info.Cell{
			Index:       i,
			FirstSector: cell.FirstSector,
			LastSector:  cell.LastSector,
			Duration:    cell.PlayTime.Duration(),
		}
		if cell.Block != chain.None {
			c.Block = cell.Block.String()
		}
		t.Cells = append(t.Cells, c)
	}

	for n := 1; n <= idx.ChapterCount(); n++ {
		start, _ := idx.ChapterStartCellIndex(n)
		end := idx.ProgramCellCount()
		if n < idx.ChapterCount() {
			end, _ = idx.ChapterStartCellIndex(n + 1)
		}
		t.Chapters = append(t.Chapters, info.Chapter{
			Number:    n,
			FirstCell: start,
			Duration:  pathDuration(idx, start, end),
		})
	}

	for _, s := range pgc.Streams(vts.Video, vts.Audio, vts.Subpicture) {
		stream := info.Stream{
			Number:   s.Logical,
			ID:       info.StreamID(s.ID),
			Coding:   s.Coding,
			Language: ifo.LanguageName(s.Language),
		}
		if s.Kind == ifo.StreamAudio {
			t.Audio = append(t.Audio, stream)
		} else {
			t.Subtitle = append(t.Subtitle, stream)
		}
	}
	return nil
}

// pathDuration adds up the cells angle 1 plays between start and end.
func pathDuration(idx *chain.Index, start, end int) time.Duration {
	var total time.Duration
	for i := start; i < end; {
		cell, err := idx.GetProgramCell(i)
		if err != nil {
			break
		}
		total += cell.PlayTime.Duration()
		i++
		if i < end {
			following, err := idx.GetProgramCell(i)
			if err != nil {
				break
			}
			i += chain.AngleBias(following.Block, 1, idx.AngleCount())
		}
	}
	return total
}
