package fixture

import (
	"github.com/bgrewell/dvd-kit/pkg/consts"
)

// Cell describes one program cell of a PGC.
type Cell struct {
	Category uint16
	First    uint32
	Last     uint32
	VOBID    uint16
	CellID   uint8
	Seconds  int
}

// Address describes one entry of the cell address table.
type Address struct {
	VOBID  uint16
	CellID uint8
	Start  uint32
	End    uint32
}

// PGC describes a program chain. Programs holds the 1-based entry cell of every program.
type PGC struct {
	EntryID      uint8
	Cells        []Cell
	Programs     []uint8
	PreCommands  int
	PostCommands int
	AudioControl []uint16
	SubpControl  []uint32
}

// Part is one chapter entry of the part-of-title table.
type Part struct {
	PGC     uint16
	Program uint16
}

// TimeMap describes a time map for one PGC.
type TimeMap struct {
	Unit    uint8
	Sectors []uint32
}

// Audio describes one title audio stream.
type Audio struct {
	Coding   uint8
	Channels uint8
	Language string
}

// VTS describes a whole title set information file.
type VTS struct {
	// TitleVOBSector is the offset of the title VOBs from the start of the VTS, in sectors.
	TitleVOBSector uint32
	Titles         [][]Part
	PGCs           []PGC
	Addresses      []Address
	VOBUs          []uint32
	TimeMaps       []TimeMap
	Wide           bool
	Audio          []Audio
	Subpictures    []string
}

// BuildVTS encodes layout as a VTS_nn_0.IFO buffer. Tables follow the VTSI_MAT in the order part of title,
// PGC table, cell addresses, VOBU map, time map, each starting on its own sector.
func BuildVTS(layout VTS) []byte {
	b := &buffer{}
	b.putBytes(0, []byte(consts.VTS_IDENTIFIER))
	b.put8(0x21, 0x11)
	b.put32(0x80, 0x3ff)
	b.put32(0xc4, layout.TitleVOBSector)

	var video uint8 = 0x40 // MPEG-2, NTSC
	if layout.Wide {
		video |= 0x0c
	}
	b.put8(0x200, video)
	b.put16(0x202, uint16(len(layout.Audio)))
	for i, a := range layout.Audio {
		off := 0x204 + i*consts.AUDIO_ATTRIBUTES_SIZE
		lt := uint8(0)
		if a.Language != "" {
			lt = 1
		}
		b.put8(off, a.Coding<<5|lt<<2)
		b.put8(off+1, (a.Channels-1)&0x07)
		if a.Language != "" {
			b.putBytes(off+2, []byte(a.Language))
		}
	}
	b.put16(0x254, uint16(len(layout.Subpictures)))
	for i, lang := range layout.Subpictures {
		off := 0x256 + i*consts.SUBPICTURE_ATTRS_SIZE
		b.put8(off, 1)
		b.putBytes(off+2, []byte(lang))
	}
	b.pad()

	b.put32(0xc8, b.appendSector(partOfTitleTable(layout.Titles)))
	b.put32(0xcc, b.appendSector(pgcTable(layout.PGCs)))
	b.put32(0xe0, b.appendSector(cellAddressTable(layout.Addresses)))
	if len(layout.VOBUs) > 0 {
		b.put32(0xe4, b.appendSector(vobuMap(layout.VOBUs)))
	}
	if len(layout.TimeMaps) > 0 {
		b.put32(0xd4, b.appendSector(timeMapTable(layout.TimeMaps)))
	}
	data := b.pad()
	b.put32(0x1c, uint32(len(data)/consts.DVD_SECTOR_SIZE-1))
	return b.data
}

func partOfTitleTable(titles [][]Part) []byte {
	t := &buffer{}
	t.put16(0, uint16(len(titles)))
	off := consts.TABLE_HEADER_SIZE + 4*len(titles)
	for i, parts := range titles {
		t.put32(consts.TABLE_HEADER_SIZE+4*i, uint32(off))
		for _, p := range parts {
			t.put16(off, p.PGC)
			t.put16(off+2, p.Program)
			off += consts.PTT_ENTRY_SIZE
		}
	}
	t.grow(off)
	t.put32(4, uint32(len(t.data)-1))
	return t.data
}

func pgcTable(pgcs []PGC) []byte {
	t := &buffer{}
	t.put16(0, uint16(len(pgcs)))
	off := consts.TABLE_HEADER_SIZE + consts.PGCI_SRP_SIZE*len(pgcs)
	for i, p := range pgcs {
		srp := consts.TABLE_HEADER_SIZE + consts.PGCI_SRP_SIZE*i
		t.put8(srp, p.EntryID)
		t.put32(srp+4, uint32(off))
		body := pgcBytes(p)
		t.putBytes(off, body)
		off += len(body)
	}
	t.put32(4, uint32(len(t.data)-1))
	return t.data
}

func pgcBytes(p PGC) []byte {
	g := &buffer{}
	total := 0
	for _, c := range p.Cells {
		total += c.Seconds
	}
	g.put8(0x02, uint8(len(p.Programs)))
	g.put8(0x03, uint8(len(p.Cells)))
	pt := bcdTime(total)
	g.putBytes(0x04, pt[:])
	for i, ac := range p.AudioControl {
		g.put16(0x0c+2*i, ac)
	}
	for i, sc := range p.SubpControl {
		g.put32(0x1c+4*i, sc)
	}
	g.grow(consts.PGC_HEADER_SIZE)

	off := consts.PGC_HEADER_SIZE
	if p.PreCommands+p.PostCommands > 0 {
		g.put16(0xe4, uint16(off))
		g.put16(off, uint16(p.PreCommands))
		g.put16(off+2, uint16(p.PostCommands))
		n := p.PreCommands + p.PostCommands
		g.put16(off+6, uint16(consts.COMMAND_TABLE_HEADER_LEN+n*consts.VM_COMMAND_SIZE-1))
		for i := 0; i < n; i++ {
			c := off + consts.COMMAND_TABLE_HEADER_LEN + i*consts.VM_COMMAND_SIZE
			g.putBytes(c, []byte{0x71, 0x00, 0x00, 0x0f, 0x00, byte(i), 0x00, 0x00})
		}
		off += consts.COMMAND_TABLE_HEADER_LEN + n*consts.VM_COMMAND_SIZE
	}
	if len(p.Programs) > 0 {
		g.put16(0xe6, uint16(off))
		g.putBytes(off, p.Programs)
		off += len(p.Programs)
		if off%2 == 1 {
			off++
		}
	}
	if len(p.Cells) > 0 {
		g.put16(0xe8, uint16(off))
		for i, c := range p.Cells {
			e := off + i*consts.CELL_PLAYBACK_SIZE
			g.put16(e, c.Category)
			t := bcdTime(c.Seconds)
			g.putBytes(e+4, t[:])
			g.put32(e+8, c.First)
			g.put32(e+16, c.Last)
			g.put32(e+20, c.Last)
		}
		off += len(p.Cells) * consts.CELL_PLAYBACK_SIZE
		g.put16(0xea, uint16(off))
		for i, c := range p.Cells {
			e := off + i*consts.CELL_POSITION_SIZE
			g.put16(e, c.VOBID)
			g.put8(e+3, c.CellID)
		}
		off += len(p.Cells) * consts.CELL_POSITION_SIZE
	}
	g.grow(off)
	return g.data
}

func cellAddressTable(cells []Address) []byte {
	t := &buffer{}
	vobs := map[uint16]bool{}
	for i, c := range cells {
		e := consts.TABLE_HEADER_SIZE + i*consts.CELL_ADDRESS_SIZE
		t.put16(e, c.VOBID)
		t.put8(e+2, c.CellID)
		t.put32(e+4, c.Start)
		t.put32(e+8, c.End)
		vobs[c.VOBID] = true
	}
	t.grow(consts.TABLE_HEADER_SIZE + len(cells)*consts.CELL_ADDRESS_SIZE)
	t.put16(0, uint16(len(vobs)))
	t.put32(4, uint32(len(t.data)-1))
	return t.data
}

func vobuMap(sectors []uint32) []byte {
	t := &buffer{}
	for i, s := range sectors {
		t.put32(consts.VOBU_ADMAP_HEADER_SIZE+4*i, s)
	}
	t.put32(0, uint32(len(t.data)-1))
	return t.data
}

func timeMapTable(maps []TimeMap) []byte {
	t := &buffer{}
	t.put16(0, uint16(len(maps)))
	off := consts.TABLE_HEADER_SIZE + 4*len(maps)
	for i, m := range maps {
		t.put32(consts.TABLE_HEADER_SIZE+4*i, uint32(off))
		t.put8(off, m.Unit)
		t.put16(off+2, uint16(len(m.Sectors)))
		for j, s := range m.Sectors {
			t.put32(off+consts.TMAP_HEADER_SIZE+4*j, s)
		}
		off += consts.TMAP_HEADER_SIZE + 4*len(m.Sectors)
	}
	t.grow(off)
	t.put32(4, uint32(len(t.data)-1))
	return t.data
}
