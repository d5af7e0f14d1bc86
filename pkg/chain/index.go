// Package chain builds the per-title navigation tables: the program cells of the title's program chain,
// the physical cell address table and the chapter map, plus the lookups that tie them together.
package chain

import (
	"sort"

	"github.com/bgrewell/dvd-kit/pkg/catalog"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/ifo"
	"github.com/bgrewell/dvd-kit/pkg/option"
)

// PositionRef identifies the physical cell a program cell plays.
type PositionRef struct {
	VOBID  uint16
	CellID uint8
}

// ProgramCell is a logical cell of the program chain.
type ProgramCell struct {
	Index int
	// Category is the raw category word, Block its classification.
	Category    uint16
	Block       BlockType
	PlayTime    ifo.PlaybackTime
	StillTime   uint8
	FirstSector uint32
	LastSector  uint32
	Position    PositionRef
}

// AddressCell is a physical cell piece from the cell address table.
type AddressCell struct {
	VOBID       uint16
	CellID      uint8
	StartSector uint32
	EndSector   uint32
}

// Ref returns the position reference the piece answers to.
func (a AddressCell) Ref() PositionRef {
	return PositionRef{VOBID: a.VOBID, CellID: a.CellID}
}

// Window is an inclusive sector range inside the title VOBs.
type Window struct {
	Start uint32
	End   uint32
}

// Len returns the number of sectors in the window, 0 or less for an empty one.
func (w Window) Len() int64 {
	return int64(w.End) - int64(w.Start) + 1
}

// Contains reports whether sector lies inside the window.
func (w Window) Contains(sector uint32) bool {
	return sector >= w.Start && sector <= w.End
}

// Index is the ProgramChainIndex of one title.
type Index struct {
	title    catalog.Title
	pgcN     int
	cells    []ProgramCell
	address  []AddressCell
	chapters []int
}

// Build creates the index of title from its decoded title set. The title's first chapter names the
// program chain used for the whole title; chapters that point into other chains are dropped.
func Build(vts *ifo.VTS, title catalog.Title, opts ...option.Option) (*Index, error) {
	const op = "chain.Build"
	o := option.Apply(opts...)
	log := o.Logger.Named("chain").With("title", title.ID, "vts", title.VTS)

	if title.VTSTitle < 1 || title.VTSTitle > len(vts.PartsOfTitle) {
		return nil, dvderr.Newf(op, dvderr.ErrFormat, "title set has %d titles, title refers to %d",
			len(vts.PartsOfTitle), title.VTSTitle)
	}
	parts := vts.PartsOfTitle[title.VTSTitle-1]
	if len(parts) == 0 {
		return nil, dvderr.Newf(op, dvderr.ErrFormat, "title %d has no chapters", title.VTSTitle)
	}
	pgcN := int(parts[0].PGC)
	if pgcN < 1 || pgcN > len(vts.PGCs) {
		return nil, dvderr.Newf(op, dvderr.ErrFormat, "chapter 1 refers to PGC %d of %d", pgcN, len(vts.PGCs))
	}
	pgc := vts.PGCs[pgcN-1].PGC
	if len(pgc.CellPlayback) == 0 {
		return nil, dvderr.Newf(op, dvderr.ErrFormat, "PGC %d has no cells", pgcN)
	}
	if len(pgc.CellPosition) != len(pgc.CellPlayback) {
		return nil, dvderr.Newf(op, dvderr.ErrFormat, "PGC %d has %d cells but %d positions",
			pgcN, len(pgc.CellPlayback), len(pgc.CellPosition))
	}

	idx := &Index{title: title, pgcN: pgcN}

	for i, cp := range pgc.CellPlayback {
		block, err := Classify(cp.Category)
		if err != nil {
			if o.StrictCategories {
				return nil, dvderr.Newf(op, err, "cell %d", i)
			}
			log.Warn("treating cell with unknown block bits as ordinary", "cell", i, "category", cp.Category)
		}
		idx.cells = append(idx.cells, ProgramCell{
			Index:       i,
			Category:    cp.Category,
			Block:       block,
			PlayTime:    cp.PlaybackTime,
			StillTime:   cp.StillTime,
			FirstSector: cp.FirstSector,
			LastSector:  cp.LastSector,
			Position:    PositionRef{VOBID: pgc.CellPosition[i].VOBID, CellID: pgc.CellPosition[i].CellID},
		})
	}

	for n, part := range parts {
		if int(part.PGC) != pgcN {
			log.Warn("chapter map truncated at a chapter in another PGC", "chapter", n+1, "pgc", part.PGC, "kept", n)
			break
		}
		if part.Program < 1 || int(part.Program) > len(pgc.ProgramMap) {
			return nil, dvderr.Newf(op, dvderr.ErrFormat, "chapter %d refers to program %d of %d",
				n+1, part.Program, len(pgc.ProgramMap))
		}
		entry := int(pgc.ProgramMap[part.Program-1]) - 1
		if entry < 0 || entry >= len(idx.cells) {
			return nil, dvderr.Newf(op, dvderr.ErrFormat, "program %d enters at cell %d of %d",
				part.Program, entry+1, len(idx.cells))
		}
		if len(idx.chapters) > 0 && entry <= idx.chapters[len(idx.chapters)-1] {
			return nil, dvderr.Newf(op, dvderr.ErrFormat, "chapter %d starts at cell %d, not after chapter %d",
				n+1, entry, n)
		}
		idx.chapters = append(idx.chapters, entry)
	}
	if int(title.ChapterCount) != len(idx.chapters) {
		log.Debug("chapter count differs from title table", "table", title.ChapterCount, "mapped", len(idx.chapters))
	}

	idx.address = make([]AddressCell, len(vts.CellAddresses))
	for i, ca := range vts.CellAddresses {
		idx.address[i] = AddressCell{VOBID: ca.VOBID, CellID: ca.CellID, StartSector: ca.StartSector, EndSector: ca.EndSector}
	}
	if !sort.SliceIsSorted(idx.address, idx.addressLess) {
		log.Warn("cell address table out of order, sorting by start sector")
		sort.SliceStable(idx.address, idx.addressLess)
	}

	log.Debug("built program chain index", "pgc", pgcN, "cells", len(idx.cells),
		"addresses", len(idx.address), "chapters", len(idx.chapters))
	return idx, nil
}

func (idx *Index) addressLess(i, j int) bool {
	return idx.address[i].StartSector < idx.address[j].StartSector
}

// Title returns the catalog entry the index was built for.
func (idx *Index) Title() catalog.Title {
	return idx.title
}

// PGCNumber returns the 1-based number of the program chain the title plays.
func (idx *Index) PGCNumber() int {
	return idx.pgcN
}

// AngleCount returns the title's angle count, at least 1.
func (idx *Index) AngleCount() int {
	if idx.title.AngleCount == 0 {
		return 1
	}
	return int(idx.title.AngleCount)
}

func (idx *Index) ProgramCellCount() int {
	return len(idx.cells)
}

func (idx *Index) GetProgramCell(i int) (ProgramCell, error) {
	if i < 0 || i >= len(idx.cells) {
		return ProgramCell{}, dvderr.Newf("chain.GetProgramCell", dvderr.ErrOutOfRange, "cell %d of %d", i, len(idx.cells))
	}
	return idx.cells[i], nil
}

func (idx *Index) AddressCellCount() int {
	return len(idx.address)
}

func (idx *Index) GetAddressCell(i int) (AddressCell, error) {
	if i < 0 || i >= len(idx.address) {
		return AddressCell{}, dvderr.Newf("chain.GetAddressCell", dvderr.ErrOutOfRange, "address %d of %d", i, len(idx.address))
	}
	return idx.address[i], nil
}

// ChapterCount returns the number of chapters in the chapter map.
func (idx *Index) ChapterCount() int {
	return len(idx.chapters)
}

// ChapterStartCellIndex returns the 0-based program cell chapter (1-based) starts at.
func (idx *Index) ChapterStartCellIndex(chapter int) (int, error) {
	if chapter < 1 || chapter > len(idx.chapters) {
		return 0, dvderr.Newf("chain.ChapterStartCellIndex", dvderr.ErrOutOfRange, "chapter %d of %d", chapter, len(idx.chapters))
	}
	return idx.chapters[chapter-1], nil
}

// ChapterForCell returns the largest chapter whose first cell is at or before cell i.
func (idx *Index) ChapterForCell(i int) int {
	chapter := 1
	for n, start := range idx.chapters {
		if start <= i {
			chapter = n + 1
		}
	}
	return chapter
}

// ResolveAddressCell finds the address cell playing program cell programCellIndex, scanning forward from
// hint. Sequential playback moves through the address table in order, so callers pass the previously
// resolved index and only reset hint to 0 after a seek or a backwards angle switch.
func (idx *Index) ResolveAddressCell(programCellIndex, hint int) (int, error) {
	const op = "chain.ResolveAddressCell"
	if programCellIndex < 0 || programCellIndex >= len(idx.cells) {
		return 0, dvderr.Newf(op, dvderr.ErrOutOfRange, "cell %d of %d", programCellIndex, len(idx.cells))
	}
	if hint < 0 {
		hint = 0
	}
	ref := idx.cells[programCellIndex].Position
	for i := hint; i < len(idx.address); i++ {
		if idx.address[i].Ref() == ref {
			return i, nil
		}
	}
	return 0, dvderr.Newf(op, dvderr.ErrCellResolution, "vob %d cell %d not found from address %d",
		ref.VOBID, ref.CellID, hint)
}

// NextPiece returns the next address cell after addressCellIndex that carries the same position reference
// and still starts inside program cell programCellIndex. Interleaved angle cells are recorded as several
// such pieces with the other angles' units in between.
func (idx *Index) NextPiece(programCellIndex, addressCellIndex int) (int, bool) {
	if programCellIndex < 0 || programCellIndex >= len(idx.cells) || addressCellIndex < 0 {
		return 0, false
	}
	pc := idx.cells[programCellIndex]
	for i := addressCellIndex + 1; i < len(idx.address); i++ {
		a := idx.address[i]
		if a.StartSector > pc.LastSector {
			break
		}
		if a.Ref() == pc.Position {
			return i, true
		}
	}
	return 0, false
}

// Window returns the playable range of a program cell through one of its address cells: the intersection
// of both ranges, since neither table is exact on its own.
func (idx *Index) Window(programCellIndex, addressCellIndex int) (Window, error) {
	pc, err := idx.GetProgramCell(programCellIndex)
	if err != nil {
		return Window{}, err
	}
	ac, err := idx.GetAddressCell(addressCellIndex)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: pc.FirstSector, End: pc.LastSector}
	if ac.StartSector > w.Start {
		w.Start = ac.StartSector
	}
	if ac.EndSector < w.End {
		w.End = ac.EndSector
	}
	return w, nil
}

// BlockStart returns the entry cell of the angle block containing cell i. ok is false for cells outside
// any block.
func (idx *Index) BlockStart(i int) (start int, ok bool) {
	if i < 0 || i >= len(idx.cells) || !idx.cells[i].Block.Interleaved() {
		return 0, false
	}
	for j := i; j >= 0 && i-j < idx.AngleCount(); j-- {
		switch idx.cells[j].Block {
		case InterleavedEntry:
			return j, true
		case None:
			return 0, false
		}
	}
	return 0, false
}

// FindCell returns the first program cell whose last sector is at or after sector.
func (idx *Index) FindCell(sector uint32) (int, bool) {
	for i, c := range idx.cells {
		if c.LastSector >= sector {
			return i, true
		}
	}
	return 0, false
}
