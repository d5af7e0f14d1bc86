package dvd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bgrewell/dvd-kit/pkg/chain"
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/nav"
)

// readSectors is the number of sectors requested from the source per read.
const readSectors = 64

// Selection picks the part of a title to extract. Zero values select the whole title with angle 1.
type Selection struct {
	Title        uint32
	FirstChapter int
	LastChapter  int
	Angle        int
}

// discard positions nowhere; it lets a cursor walk a title without touching the medium.
type discard struct{}

func (discard) SeekSector(int, uint32) error { return nil }

// prepare opens sel on cur and returns the resolved last chapter. A last chapter before the first one is
// ErrOutOfRange.
func prepare(cur *nav.Cursor, sel Selection) (int, error) {
	chapters, err := cur.OpenTitle(sel.Title)
	if err != nil {
		return 0, err
	}
	if sel.Angle > 1 {
		if err := cur.SelectAngle(sel.Angle); err != nil {
			return 0, err
		}
	}
	if sel.FirstChapter > 1 {
		if err := cur.SelectChapter(sel.FirstChapter); err != nil {
			return 0, err
		}
	}
	last := sel.LastChapter
	if last < 1 || last > chapters {
		last = chapters
	}
	if first := cur.State().Chapter; last < first {
		return 0, dvderr.Newf("dvd.Selection", dvderr.ErrOutOfRange, "last chapter %d before first chapter %d", last, first)
	}
	return last, nil
}

// next moves cur to the next window. done is true once the title ends or the cursor leaves the last
// selected chapter.
func next(cur *nav.Cursor, last int) (done bool, err error) {
	_, err = cur.Advance()
	switch {
	case err == nil:
		return cur.State().Chapter > last, nil
	case errors.Is(err, dvderr.ErrCellResolution):
		return true, err
	case errors.Is(err, dvderr.ErrEndOfTitle):
		return true, nil
	default:
		return true, err
	}
}

// TitleSectors returns the number of sectors ExtractTitle writes for sel.
func (d *Disc) TitleSectors(sel Selection) (int64, error) {
	cur := nav.New(d.catalog, d, discard{}, d.componentOptions()...)
	last, err := prepare(cur, sel)
	if err != nil {
		return 0, err
	}
	var total int64
	for {
		if n := cur.CurrentWindow(); n > 0 {
			total += n
		}
		done, err := next(cur, last)
		if err != nil {
			return total, err
		}
		if done {
			return total, nil
		}
	}
}

// ExtractTitle writes the program stream of sel to w, following the title's chapters, cells and angle
// pieces the way a player would. It returns the number of bytes written.
func (d *Disc) ExtractTitle(ctx context.Context, w io.Writer, sel Selection) (int64, error) {
	total, err := d.TitleSectors(sel)
	if err != nil {
		return 0, err
	}

	cur := d.NewCursor()
	last, err := prepare(cur, sel)
	if err != nil {
		return 0, err
	}
	log := d.log.With("title", sel.Title)
	log.Debug("extracting title", "chapter", cur.State().Chapter, "last_chapter", last, "sectors", total)

	buf := make([]byte, readSectors*consts.DVD_SECTOR_SIZE)
	var written, sectors int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		remaining := cur.CurrentWindow()
		if remaining <= 0 {
			done, err := next(cur, last)
			if err != nil {
				return written, err
			}
			if done {
				break
			}
			if cur.ChapterChanged() {
				log.Debug("chapter", "chapter", cur.State().Chapter)
			}
			continue
		}

		n := int64(readSectors)
		if remaining < n {
			n = remaining
		}
		read, err := d.src.ReadBlocks(buf[:n*consts.DVD_SECTOR_SIZE])
		if read > 0 {
			m, werr := w.Write(buf[:read])
			written += int64(m)
			if werr != nil {
				return written, fmt.Errorf("writing title %d: %w", sel.Title, werr)
			}
		}
		cur.Consume(read / consts.DVD_SECTOR_SIZE)
		sectors += int64(read / consts.DVD_SECTOR_SIZE)
		if err != nil {
			return written, fmt.Errorf("reading title %d at %v: %w", sel.Title, cur.State(), err)
		}
		if cb := d.options.ExtractionProgressCallback; cb != nil {
			state := cur.State()
			cb(int(sel.Title), state.Chapter, cur.Index().ChapterCount(), sectors, total)
		}
	}
	log.Info("extracted title", "bytes", written, "sectors", sectors)
	return written, nil
}

// Windows lists the sector windows a player visits for sel, in order.
func (d *Disc) Windows(sel Selection) ([]chain.Window, error) {
	cur := nav.New(d.catalog, d, discard{}, d.componentOptions()...)
	last, err := prepare(cur, sel)
	if err != nil {
		return nil, err
	}
	windows := []chain.Window{cur.Window()}
	for {
		done, err := next(cur, last)
		if err != nil {
			return windows, err
		}
		if done {
			return windows, nil
		}
		windows = append(windows, cur.Window())
	}
}
