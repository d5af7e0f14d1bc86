package ifo

import (
	"time"

	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/option"
)

// VTS is a decoded Video Title Set information file (VTS_nn_0.IFO).
type VTS struct {
	// Identifier is always "DVDVIDEO-VTS".
	Identifier    string
	LastSector    uint32
	IFOLastSector uint32
	Version       uint8
	Category      uint32
	IFOLastByte   uint32
	Pointers      VTSPointers

	MenuVideo      VideoAttributes
	MenuAudio      []AudioAttributes
	MenuSubpicture []SubpictureAttributes
	Video          VideoAttributes
	Audio          []AudioAttributes
	Subpicture     []SubpictureAttributes

	// PartsOfTitle lists, per VTS title, the chapters as PGC/program pairs (VTS_PTT_SRPT).
	PartsOfTitle [][]PartOfTitle
	// PGCs is the title program chain table (VTS_PGCIT).
	PGCs []PGCEntry
	// CellAddresses is the title cell address table (VTS_C_ADT), ascending by start sector.
	CellAddresses []CellAddress
	// VOBUMap lists the start sector of every VOBU of the title VOBs, nil when absent.
	VOBUMap []uint32
	// TimeMaps holds one time map per PGC, nil when absent.
	TimeMaps []TimeMap
}

// VTSPointers holds the sector pointers of the VTSI_MAT. Zero means the table is absent.
type VTSPointers struct {
	MenuVOB         uint32
	TitleVOB        uint32
	PartOfTitle     uint32
	PGCTable        uint32
	MenuPGCIUT      uint32
	TimeMap         uint32
	MenuCellAddress uint32
	MenuVOBUMap     uint32
	CellAddress     uint32
	VOBUMap         uint32
}

// PartOfTitle is one chapter entry: a PGC number and a program number, both 1-based.
type PartOfTitle struct {
	PGC     uint16
	Program uint16
}

// PGCEntry is one search pointer of the PGC table with its decoded chain.
type PGCEntry struct {
	// EntryID has bit 7 set for entry PGCs, the low bits carry the VTS title number.
	EntryID      uint8
	ParentalMask uint16
	PGC          *PGC
}

// Title returns the VTS title number the chain is the entry of, 0 when it is not an entry PGC.
func (e PGCEntry) Title() uint8 {
	if e.EntryID&0x80 == 0 {
		return 0
	}
	return e.EntryID & 0x7f
}

// CellAddress is one 12-byte cell address entry.
type CellAddress struct {
	VOBID       uint16
	CellID      uint8
	StartSector uint32
	EndSector   uint32
}

// TimeMap maps time units to VOBU sectors for one PGC.
type TimeMap struct {
	// TimeUnit is the interval between entries in seconds.
	TimeUnit uint8
	Entries  []TimeMapEntry
}

// TimeMapEntry is one time map sector. Discontinuous marks an entry that follows a gap in the stream.
type TimeMapEntry struct {
	Sector        uint32
	Discontinuous bool
}

// SectorAtTime returns the title VOB sector of the VOBU playing at offset d into PGC pgcN (1-based),
// using the time map. Offsets before the first entry map to sector 0, offsets past the last entry to the
// last entry. ok is false when the PGC has no usable time map.
func (v *VTS) SectorAtTime(pgcN int, d time.Duration) (sector uint32, ok bool) {
	if pgcN < 1 || pgcN > len(v.TimeMaps) {
		return 0, false
	}
	tm := v.TimeMaps[pgcN-1]
	if tm.TimeUnit == 0 || len(tm.Entries) == 0 {
		return 0, false
	}
	i := int(d/(time.Duration(tm.TimeUnit)*time.Second)) - 1
	switch {
	case i < 0:
		return 0, true
	case i >= len(tm.Entries):
		i = len(tm.Entries) - 1
	}
	return tm.Entries[i].Sector, true
}

// DecodeVTS decodes a VTS_nn_0.IFO (or .BUP) buffer. The part-of-title, PGC and cell address tables are
// mandatory. The VOBU address map and the time map only help seeking, a broken one is logged and dropped.
func DecodeVTS(data []byte, opts ...option.Option) (*VTS, error) {
	o := option.Apply(opts...)
	log := o.Logger.Named("ifo")

	r := newRegion(data, "ifo.DecodeVTS")
	m, err := r.sub(0, 0x316)
	if err != nil {
		return nil, err
	}
	if id := m.text(0, consts.IFO_IDENTIFIER_SIZE); id != consts.VTS_IDENTIFIER {
		return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "identifier %q", id)
	}

	vts := &VTS{
		Identifier:    consts.VTS_IDENTIFIER,
		LastSector:    m.u32(0x0c),
		IFOLastSector: m.u32(0x1c),
		Version:       m.u8(0x21),
		Category:      m.u32(0x22),
		IFOLastByte:   m.u32(0x80),
		Pointers: VTSPointers{
			MenuVOB:         m.u32(0xc0),
			TitleVOB:        m.u32(0xc4),
			PartOfTitle:     m.u32(0xc8),
			PGCTable:        m.u32(0xcc),
			MenuPGCIUT:      m.u32(0xd0),
			TimeMap:         m.u32(0xd4),
			MenuCellAddress: m.u32(0xd8),
			MenuVOBUMap:     m.u32(0xdc),
			CellAddress:     m.u32(0xe0),
			VOBUMap:         m.u32(0xe4),
		},
	}
	menu := decodeStreamAttributes(m, 0x100, 1)
	vts.MenuVideo, vts.MenuAudio, vts.MenuSubpicture = menu.Video, menu.Audio, menu.Subpicture
	title := decodeStreamAttributes(m, 0x200, consts.MAX_SUBPICTURE_STREAMS)
	vts.Video, vts.Audio, vts.Subpicture = title.Video, title.Audio, title.Subpicture

	for _, p := range []struct {
		name   string
		sector uint32
	}{
		{"part of title table", vts.Pointers.PartOfTitle},
		{"PGC table", vts.Pointers.PGCTable},
		{"cell address table", vts.Pointers.CellAddress},
	} {
		if p.sector == 0 {
			return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "no %s", p.name)
		}
	}

	if vts.PartsOfTitle, err = decodePartOfTitleTable(r.named("ifo.vts_ptt_srpt"), vts.Pointers.PartOfTitle); err != nil {
		return nil, err
	}
	if vts.PGCs, err = decodePGCTable(r.named("ifo.vts_pgcit"), vts.Pointers.PGCTable); err != nil {
		return nil, err
	}
	if vts.CellAddresses, err = decodeCellAddressTable(r.named("ifo.vts_c_adt"), vts.Pointers.CellAddress); err != nil {
		return nil, err
	}

	if vts.Pointers.VOBUMap != 0 {
		if vts.VOBUMap, err = decodeVOBUMap(r.named("ifo.vts_vobu_admap"), vts.Pointers.VOBUMap); err != nil {
			log.Warn("skipping VOBU address map", "error", err)
			vts.VOBUMap = nil
		}
	}
	if vts.Pointers.TimeMap != 0 {
		if vts.TimeMaps, err = decodeTimeMapTable(r.named("ifo.vts_tmapt"), vts.Pointers.TimeMap); err != nil {
			log.Warn("skipping time map table", "error", err)
			vts.TimeMaps = nil
		}
	}

	log.Debug("decoded title set", "titles", len(vts.PartsOfTitle), "pgcs", len(vts.PGCs),
		"cell_addresses", len(vts.CellAddresses), "vobus", len(vts.VOBUMap))
	return vts, nil
}

func decodePartOfTitleTable(r region, sector uint32) ([][]PartOfTitle, error) {
	t, hdr, err := r.tableAtSector(sector)
	if err != nil {
		return nil, err
	}
	size, err := arraySize(uint64(hdr.Count), 4, r.op)
	if err != nil {
		return nil, err
	}
	offsets, err := t.sub(consts.TABLE_HEADER_SIZE, size)
	if err != nil {
		return nil, err
	}

	titles := make([][]PartOfTitle, hdr.Count)
	for i := range titles {
		start := uint64(offsets.u32(i * 4))
		end := t.size()
		if i+1 < len(titles) {
			end = uint64(offsets.u32((i + 1) * 4))
		}
		if end < start {
			return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "title %d unit ends at %d before it starts at %d", i+1, end, start)
		}
		unit, err := t.sub(start, end-start)
		if err != nil {
			return nil, err
		}
		n := int(unit.size() / consts.PTT_ENTRY_SIZE)
		parts := make([]PartOfTitle, n)
		for j := range parts {
			parts[j] = PartOfTitle{PGC: unit.u16(j * 4), Program: unit.u16(j*4 + 2)}
		}
		titles[i] = parts
	}
	return titles, nil
}

func decodePGCTable(r region, sector uint32) ([]PGCEntry, error) {
	t, hdr, err := r.tableAtSector(sector)
	if err != nil {
		return nil, err
	}
	size, err := arraySize(uint64(hdr.Count), consts.PGCI_SRP_SIZE, r.op)
	if err != nil {
		return nil, err
	}
	srp, err := t.sub(consts.TABLE_HEADER_SIZE, size)
	if err != nil {
		return nil, err
	}

	entries := make([]PGCEntry, hdr.Count)
	for i := range entries {
		b := i * consts.PGCI_SRP_SIZE
		pgc, err := decodePGC(t, uint64(srp.u32(b+4)))
		if err != nil {
			return nil, err
		}
		entries[i] = PGCEntry{
			EntryID:      srp.u8(b),
			ParentalMask: srp.u16(b + 2),
			PGC:          pgc,
		}
	}
	return entries, nil
}

func decodeCellAddressTable(r region, sector uint32) ([]CellAddress, error) {
	t, hdr, err := r.tableAtSector(sector)
	if err != nil {
		return nil, err
	}
	if t.size() < consts.TABLE_HEADER_SIZE {
		return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "last byte %d inside the header", hdr.LastByte)
	}
	n := int((t.size() - consts.TABLE_HEADER_SIZE) / consts.CELL_ADDRESS_SIZE)
	cells := make([]CellAddress, n)
	for i := range cells {
		b := consts.TABLE_HEADER_SIZE + i*consts.CELL_ADDRESS_SIZE
		cells[i] = CellAddress{
			VOBID:       t.u16(b),
			CellID:      t.u8(b + 2),
			StartSector: t.u32(b + 4),
			EndSector:   t.u32(b + 8),
		}
	}
	return cells, nil
}

func decodeVOBUMap(r region, sector uint32) ([]uint32, error) {
	off, err := sectorOffset(sector, r.op)
	if err != nil {
		return nil, err
	}
	head, err := r.sub(off, consts.VOBU_ADMAP_HEADER_SIZE)
	if err != nil {
		return nil, err
	}
	lastByte := uint64(head.u32(0))
	if lastByte+1 > 0xffffffff {
		return nil, dvderr.Newf(r.op, dvderr.ErrIntegerOverflow, "last byte %#x", lastByte)
	}
	if lastByte+1 < consts.VOBU_ADMAP_HEADER_SIZE {
		return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "last byte %d inside the header", lastByte)
	}
	t, err := r.sub(off, lastByte+1)
	if err != nil {
		return nil, err
	}
	n := int((t.size() - consts.VOBU_ADMAP_HEADER_SIZE) / consts.VOBU_ADMAP_ENTRY_SIZE)
	sectors := make([]uint32, n)
	for i := range sectors {
		sectors[i] = t.u32(consts.VOBU_ADMAP_HEADER_SIZE + i*consts.VOBU_ADMAP_ENTRY_SIZE)
	}
	return sectors, nil
}

func decodeTimeMapTable(r region, sector uint32) ([]TimeMap, error) {
	t, hdr, err := r.tableAtSector(sector)
	if err != nil {
		return nil, err
	}
	size, err := arraySize(uint64(hdr.Count), 4, r.op)
	if err != nil {
		return nil, err
	}
	offsets, err := t.sub(consts.TABLE_HEADER_SIZE, size)
	if err != nil {
		return nil, err
	}

	maps := make([]TimeMap, hdr.Count)
	for i := range maps {
		off := uint64(offsets.u32(i * 4))
		head, err := t.sub(off, consts.TMAP_HEADER_SIZE)
		if err != nil {
			return nil, err
		}
		count := uint64(head.u16(2))
		entries, err := t.sub(off+consts.TMAP_HEADER_SIZE, count*consts.TMAP_ENTRY_SIZE)
		if err != nil {
			return nil, err
		}
		tm := TimeMap{TimeUnit: head.u8(0), Entries: make([]TimeMapEntry, count)}
		for j := range tm.Entries {
			v := entries.u32(j * consts.TMAP_ENTRY_SIZE)
			tm.Entries[j] = TimeMapEntry{Sector: v & 0x7fffffff, Discontinuous: v&0x80000000 != 0}
		}
		maps[i] = tm
	}
	return maps, nil
}
