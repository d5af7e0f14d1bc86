// Package nav implements the navigation cursor: the state machine that walks a title's program chain
// chapter by chapter and angle by angle, tracking the readable sector window and steering the block source.
//
// A Cursor is not safe for concurrent use. The caller serializes every call and issues reads on the block
// source only between them.
package nav

import (
	"fmt"
	"math"

	"github.com/bgrewell/dvd-kit/pkg/catalog"
	"github.com/bgrewell/dvd-kit/pkg/chain"
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/logging"
	"github.com/bgrewell/dvd-kit/pkg/option"
)

// TitleSource looks titles up by their global id.
type TitleSource interface {
	GetTitle(id uint32) (catalog.Title, error)
}

// IndexLoader returns the program chain index of a title, decoding its title set when needed.
type IndexLoader interface {
	LoadIndex(title catalog.Title) (*chain.Index, error)
}

// BlockSource is positioned by the cursor. Sectors are relative to the first sector of the title VOBs
// of titleSet; mapping them to the medium is up to the source.
type BlockSource interface {
	SeekSector(titleSet int, sector uint32) error
}

// State is a snapshot of the cursor.
type State struct {
	Positioned  bool
	Title       uint32
	Chapter     int
	Angle       int
	ProgramCell int
	AddressCell int
	Sector      uint32
}

func (s State) String() string {
	if !s.Positioned {
		return "idle"
	}
	return fmt.Sprintf("title %d chapter %d angle %d cell %d/%d sector %d",
		s.Title, s.Chapter, s.Angle, s.ProgramCell, s.AddressCell, s.Sector)
}

// Cursor is the navigation state of one playback session.
type Cursor struct {
	titles TitleSource
	loader IndexLoader
	src    BlockSource
	log    *logging.Logger

	index      *chain.Index
	positioned bool
	title      catalog.Title
	chapter    int
	angle      int
	pc         int
	ac         int
	window     chain.Window
	sector     uint32

	chapterChanged bool
}

// New returns an idle cursor.
func New(titles TitleSource, loader IndexLoader, src BlockSource, opts ...option.Option) *Cursor {
	o := option.Apply(opts...)
	return &Cursor{
		titles: titles,
		loader: loader,
		src:    src,
		log:    o.Logger.Named("nav"),
	}
}

// OpenTitle positions the cursor on the first cell of title id with angle 1 and returns the title's
// chapter count. The index of the title is reused when it is already loaded.
func (c *Cursor) OpenTitle(id uint32) (int, error) {
	const op = "nav.OpenTitle"
	title, err := c.titles.GetTitle(id)
	if err != nil {
		return 0, err
	}
	if c.index == nil || c.index.Title().ID != title.ID {
		idx, err := c.loader.LoadIndex(title)
		if err != nil {
			return 0, fmt.Errorf("loading title %d: %w", id, err)
		}
		c.index = idx
	}

	c.positioned = true
	c.title = title
	c.chapter = 1
	c.angle = 1
	c.chapterChanged = false
	if err := c.enter(op, 0, 0); err != nil {
		return 0, err
	}
	c.log.Debug("opened title", "title", id, "vts", title.VTS, "chapters", c.index.ChapterCount(),
		"angles", c.index.AngleCount(), "cells", c.index.ProgramCellCount())
	return c.index.ChapterCount(), nil
}

// SelectChapter moves to the first cell of chapter, adjusted for the current angle when the chapter
// opens an angle block. Chapters out of range select chapter 1.
func (c *Cursor) SelectChapter(chapter int) error {
	const op = "nav.SelectChapter"
	if !c.positioned {
		return dvderr.New(op, dvderr.ErrNotPositioned)
	}
	if chapter < 1 || chapter > c.index.ChapterCount() {
		c.log.Debug("chapter out of range, using chapter 1", "chapter", chapter, "chapters", c.index.ChapterCount())
		chapter = 1
	}
	start, err := c.index.ChapterStartCellIndex(chapter)
	if err != nil {
		return err
	}
	cell, err := c.index.GetProgramCell(start)
	if err != nil {
		return err
	}
	pc := start + chain.AngleBias(cell.Block, c.angle, c.index.AngleCount())
	if pc >= c.index.ProgramCellCount() {
		c.log.Warn("angle block runs past the last cell", "chapter", chapter, "cell", start)
		pc = start
	}

	c.chapter = chapter
	c.chapterChanged = false
	return c.enter(op, pc, 0)
}

// SelectAngle switches to angle. Inside an angle block the cursor moves to the matching cell of the
// block right away; elsewhere the angle applies from the next block on. Angles out of range select
// angle 1.
func (c *Cursor) SelectAngle(angle int) error {
	const op = "nav.SelectAngle"
	if !c.positioned {
		return dvderr.New(op, dvderr.ErrNotPositioned)
	}
	if angle < 1 || angle > c.index.AngleCount() {
		c.log.Debug("angle out of range, using angle 1", "angle", angle, "angles", c.index.AngleCount())
		angle = 1
	}
	prev := c.angle
	c.angle = angle
	if angle == prev {
		return nil
	}

	cell, err := c.index.GetProgramCell(c.pc)
	if err != nil {
		return err
	}
	if !cell.Block.Interleaved() {
		return nil
	}
	pc := c.pc + angle - prev
	hint := c.ac
	if angle < prev {
		hint = 0
	}
	if pc < 0 || pc >= c.index.ProgramCellCount() {
		return c.fail(op, dvderr.Newf(op, dvderr.ErrCellResolution, "angle %d leaves the block at cell %d", angle, c.pc))
	}
	return c.enter(op, pc, hint)
}

// Seek positions the cursor on byte offset into the title VOBs. Inside an angle block the position moves
// forward to the start of the current angle's next cell piece, since the literal sector may belong to
// another angle. When the angle has no piece left at or after the target, playback resumes with the cell
// following the block.
func (c *Cursor) Seek(offset int64) error {
	const op = "nav.Seek"
	if !c.positioned {
		return dvderr.New(op, dvderr.ErrNotPositioned)
	}
	if offset < 0 || offset/consts.DVD_SECTOR_SIZE > math.MaxUint32 {
		return dvderr.Newf(op, dvderr.ErrOutOfRange, "offset %d", offset)
	}
	target := uint32(offset / consts.DVD_SECTOR_SIZE)
	pc, ok := c.index.FindCell(target)
	if !ok {
		return dvderr.Newf(op, dvderr.ErrOutOfRange, "sector %d is past the last cell", target)
	}
	block, interleaved := c.index.BlockStart(pc)
	if interleaved {
		pc = block + c.angle - 1
		if pc >= c.index.ProgramCellCount() {
			pc = block
		}
	}

	ac, err := c.index.ResolveAddressCell(pc, 0)
	if err != nil {
		return c.fail(op, err)
	}
	w, err := c.index.Window(pc, ac)
	if err != nil {
		return err
	}
	for w.End < target {
		next, ok := c.index.NextPiece(pc, ac)
		if !ok {
			break
		}
		ac = next
		if w, err = c.index.Window(pc, ac); err != nil {
			return err
		}
	}
	if interleaved && w.End < target {
		// The target is in another angle's last unit: go on with the cell after the block.
		next := block + c.index.AngleCount()
		if next >= c.index.ProgramCellCount() {
			return dvderr.Newf(op, dvderr.ErrOutOfRange, "sector %d is past the last unit of angle %d", target, c.angle)
		}
		cell, err := c.index.GetProgramCell(next)
		if err != nil {
			return err
		}
		if pc = next + chain.AngleBias(cell.Block, c.angle, c.index.AngleCount()); pc >= c.index.ProgramCellCount() {
			pc = next
		}
		if ac, err = c.index.ResolveAddressCell(pc, 0); err != nil {
			return c.fail(op, err)
		}
		if w, err = c.index.Window(pc, ac); err != nil {
			return err
		}
	}

	sector := w.Start
	if !interleaved && target > sector {
		sector = target
		if sector > w.End {
			sector = w.End
		}
	}
	c.pc, c.ac, c.window, c.sector = pc, ac, w, sector
	c.chapter = c.index.ChapterForCell(pc)
	c.chapterChanged = false
	c.log.Trace("seek", "target", target, "cell", pc, "address", ac, "sector", sector)
	return c.reposition()
}

// Advance moves past the current window: first to the next piece of the same cell, then to the next
// program cell with the angle bias of the cell it lands on. It returns the new window, or ErrEndOfTitle
// once the last cell is done.
func (c *Cursor) Advance() (chain.Window, error) {
	const op = "nav.Advance"
	if !c.positioned {
		return chain.Window{}, dvderr.New(op, dvderr.ErrNotPositioned)
	}
	if next, ok := c.index.NextPiece(c.pc, c.ac); ok {
		w, err := c.index.Window(c.pc, next)
		if err != nil {
			return chain.Window{}, err
		}
		c.ac, c.window, c.sector = next, w, w.Start
		return w, c.reposition()
	}

	base := c.pc + 1
	if base >= c.index.ProgramCellCount() {
		return chain.Window{}, dvderr.New(op, dvderr.ErrEndOfTitle)
	}
	cell, err := c.index.GetProgramCell(base)
	if err != nil {
		return chain.Window{}, err
	}
	pc := base + chain.AngleBias(cell.Block, c.angle, c.index.AngleCount())
	if pc >= c.index.ProgramCellCount() {
		return chain.Window{}, dvderr.New(op, dvderr.ErrEndOfTitle)
	}

	for c.chapter < c.index.ChapterCount() {
		start, err := c.index.ChapterStartCellIndex(c.chapter + 1)
		if err != nil || start > pc {
			break
		}
		c.chapter++
		c.chapterChanged = true
	}
	if err := c.enter(op, pc, c.ac); err != nil {
		return chain.Window{}, err
	}
	return c.window, nil
}

// CurrentWindow returns the number of sectors left in the active window. Zero or less means the caller
// must Advance.
func (c *Cursor) CurrentWindow() int64 {
	if !c.positioned {
		return 0
	}
	return int64(c.window.End) - int64(c.sector) + 1
}

// Window returns the active window.
func (c *Cursor) Window() chain.Window {
	return c.window
}

// Consume records that n sectors were read from the block source.
func (c *Cursor) Consume(n int) {
	if n <= 0 || !c.positioned {
		return
	}
	next := int64(c.sector) + int64(n)
	if limit := int64(c.window.End) + 1; next > limit {
		next = limit
	}
	c.sector = uint32(next)
}

// ChapterChanged reports whether the last Advance crossed into a new chapter. The flag clears on read.
func (c *Cursor) ChapterChanged() bool {
	changed := c.chapterChanged
	c.chapterChanged = false
	return changed
}

// State returns a snapshot of the cursor.
func (c *Cursor) State() State {
	if !c.positioned {
		return State{}
	}
	return State{
		Positioned:  true,
		Title:       c.title.ID,
		Chapter:     c.chapter,
		Angle:       c.angle,
		ProgramCell: c.pc,
		AddressCell: c.ac,
		Sector:      c.sector,
	}
}

// Index returns the index of the open title, nil when no title was opened yet.
func (c *Cursor) Index() *chain.Index {
	return c.index
}

// Close returns the cursor to Idle. The loaded index is kept for a later OpenTitle of the same title.
func (c *Cursor) Close() {
	c.positioned = false
	c.chapterChanged = false
	c.window = chain.Window{}
	c.sector = 0
}

// enter lands on program cell pc, resolving its address cell from hint, and moves the block source to
// the start of the window.
func (c *Cursor) enter(op string, pc, hint int) error {
	ac, err := c.index.ResolveAddressCell(pc, hint)
	if err != nil {
		return c.fail(op, err)
	}
	w, err := c.index.Window(pc, ac)
	if err != nil {
		return c.fail(op, err)
	}
	c.pc, c.ac, c.window, c.sector = pc, ac, w, w.Start
	c.log.Trace("entered cell", "cell", pc, "address", ac, "start", w.Start, "end", w.End)
	return c.reposition()
}

func (c *Cursor) reposition() error {
	if err := c.src.SeekSector(c.title.VTS, c.sector); err != nil {
		return fmt.Errorf("positioning title set %d at sector %d: %w", c.title.VTS, c.sector, err)
	}
	return nil
}

// fail ends the title after a cell could not be resolved.
func (c *Cursor) fail(op string, err error) error {
	c.log.Warn("ending title", "title", c.title.ID, "cell", c.pc, "error", err.Error())
	c.Close()
	return &dvderr.Error{Op: op, Err: fmt.Errorf("%w: %w", dvderr.ErrEndOfTitle, err)}
}
