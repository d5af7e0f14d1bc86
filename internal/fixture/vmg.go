package fixture

import (
	"github.com/bgrewell/dvd-kit/pkg/consts"
)

// Title describes one TT_SRPT entry.
type Title struct {
	Angles        uint8
	Chapters      uint16
	TitleSet      uint8
	TitleSetTitle uint8
	// Sector is the start sector of the owning VTS on the disc.
	Sector uint32
}

// Country describes one parental management country. Masks[level-1] lists one mask per title set,
// the video manager entry included at index 0.
type Country struct {
	Code  string
	Masks [consts.PARENTAL_LEVELS][]uint16
}

// VMG describes a video manager information file.
type VMG struct {
	Provider  string
	TitleSets uint16
	Titles    []Title
	FirstPlay *PGC
	Countries []Country
}

// BuildVMG encodes layout as a VIDEO_TS.IFO buffer: VMGI_MAT, an optional first play PGC inside the first
// sector, then the title table and the parental table on sectors of their own.
func BuildVMG(layout VMG) []byte {
	b := &buffer{}
	b.putBytes(0, []byte(consts.VMG_IDENTIFIER))
	b.put8(0x21, 0x11)
	b.put32(0x22, 0x00fe0000)
	b.put16(0x26, 1)
	b.put16(0x28, 1)
	b.put16(0x3e, layout.TitleSets)
	b.putBytes(0x40, []byte(layout.Provider))
	b.put32(0x80, 0x3ff)
	b.put8(0x100, 0x40)
	b.grow(0x400)
	if layout.FirstPlay != nil {
		b.put32(0x84, 0x400)
		b.putBytes(0x400, pgcBytes(*layout.FirstPlay))
	}
	b.pad()

	b.put32(0xc4, b.appendSector(titleTable(layout.Titles)))
	if len(layout.Countries) > 0 {
		b.put32(0xcc, b.appendSector(parentalTable(layout.TitleSets, layout.Countries)))
	}
	data := b.pad()
	b.put32(0x1c, uint32(len(data)/consts.DVD_SECTOR_SIZE-1))
	return b.data
}

func titleTable(titles []Title) []byte {
	t := &buffer{}
	t.put16(0, uint16(len(titles)))
	for i, title := range titles {
		e := consts.TABLE_HEADER_SIZE + i*consts.TT_SRPT_ENTRY_SIZE
		t.put8(e, 0x3c)
		t.put8(e+1, title.Angles)
		t.put16(e+2, title.Chapters)
		t.put8(e+6, title.TitleSet)
		t.put8(e+7, title.TitleSetTitle)
		t.put32(e+8, title.Sector)
	}
	t.grow(consts.TABLE_HEADER_SIZE + len(titles)*consts.TT_SRPT_ENTRY_SIZE)
	t.put32(4, uint32(len(t.data)-1))
	return t.data
}

func parentalTable(titleSets uint16, countries []Country) []byte {
	t := &buffer{}
	t.put16(0, uint16(len(countries)))
	t.put16(2, titleSets)
	perLevel := int(titleSets) + 1
	off := consts.PTL_MAIT_HEADER_SIZE + consts.PTL_MAIT_COUNTRY_SIZE*len(countries)
	for i, c := range countries {
		e := consts.PTL_MAIT_HEADER_SIZE + consts.PTL_MAIT_COUNTRY_SIZE*i
		t.putBytes(e, []byte(c.Code))
		t.put16(e+4, uint16(off))
		for level := 0; level < consts.PARENTAL_LEVELS; level++ {
			base := off + (consts.PARENTAL_LEVELS-1-level)*perLevel*2
			for v := 0; v < perLevel; v++ {
				var mask uint16
				if v < len(c.Masks[level]) {
					mask = c.Masks[level][v]
				}
				t.put16(base+2*v, mask)
			}
		}
		off += consts.PARENTAL_LEVELS * perLevel * 2
	}
	t.grow(off)
	t.put32(4, uint32(len(t.data)-1))
	return t.data
}
