package fixture

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bgrewell/dvd-kit/pkg/consts"
)

// ScenarioVTS is a single title with seven cells and chapters starting at cells 0, 2 and 5. Cell 2
// opens an angle block (0x5) and cell 4 carries the exit marker (0x9). Every cell has exactly one
// address entry, cell i covering sectors [10*i, 10*i+9].
func ScenarioVTS() VTS {
	var cells []Cell
	var addrs []Address
	for i := 0; i < 7; i++ {
		c := Cell{First: uint32(10 * i), Last: uint32(10*i + 9), VOBID: 1, CellID: uint8(i + 1), Seconds: 10}
		switch i {
		case 2:
			c.Category = 0x5000
		case 4:
			c.Category = 0x9000
		}
		cells = append(cells, c)
		addrs = append(addrs, Address{VOBID: 1, CellID: uint8(i + 1), Start: c.First, End: c.Last})
	}
	return VTS{
		TitleVOBSector: 16,
		Titles:         [][]Part{{{1, 1}, {1, 2}, {1, 3}}},
		PGCs:           []PGC{{EntryID: 0x81, Cells: cells, Programs: []uint8{1, 3, 6}}},
		Addresses:      addrs,
		VOBUs:          []uint32{0, 10, 20, 30, 40, 50, 60},
		TimeMaps:       []TimeMap{{Unit: 10, Sectors: []uint32{10, 20, 30, 40, 50, 60}}},
		Audio:          []Audio{{Coding: 0, Channels: 6, Language: "en"}},
		Subpictures:    []string{"fr"},
	}
}

// FeatureCells is the program chain of the feature title: a plain cell, a two angle interleaved block
// (0x5 then 0xD) whose angle units alternate on disc, and a closing plain cell.
func FeatureCells() []Cell {
	return []Cell{
		{First: 0, Last: 99, VOBID: 1, CellID: 1, Seconds: 100},
		{Category: 0x5000, First: 100, Last: 159, VOBID: 1, CellID: 2, Seconds: 40},
		{Category: 0xd000, First: 120, Last: 179, VOBID: 1, CellID: 3, Seconds: 40},
		{First: 180, Last: 279, VOBID: 1, CellID: 4, Seconds: 100},
	}
}

// FeatureAddresses is the cell address table of FeatureVTS in physical order.
func FeatureAddresses() []Address {
	return []Address{
		{1, 1, 0, 99},
		{1, 2, 100, 119},
		{1, 3, 120, 139},
		{1, 2, 140, 159},
		{1, 3, 160, 179},
		{1, 4, 180, 279},
		{2, 1, 280, 329},
		{2, 2, 330, 379},
	}
}

// FeatureVTS holds two titles: the angle feature (PGC 1, chapters at cells 0, 1 and 3) and a short
// extra (PGC 2, two cells in VOB 2).
func FeatureVTS() VTS {
	extra := []Cell{
		{First: 280, Last: 329, VOBID: 2, CellID: 1, Seconds: 20},
		{First: 330, Last: 379, VOBID: 2, CellID: 2, Seconds: 20},
	}
	return VTS{
		TitleVOBSector: 32,
		Titles: [][]Part{
			{{1, 1}, {1, 2}, {1, 3}},
			{{2, 1}, {2, 2}},
		},
		PGCs: []PGC{
			{EntryID: 0x81, Cells: FeatureCells(), Programs: []uint8{1, 2, 4}, PreCommands: 1, PostCommands: 1,
				AudioControl: []uint16{0x8000, 0x8100}, SubpControl: []uint32{0x80000000}},
			{EntryID: 0x82, Cells: extra, Programs: []uint8{1, 2}},
		},
		Addresses: FeatureAddresses(),
		Wide:      true,
		Audio: []Audio{
			{Coding: 0, Channels: 6, Language: "en"},
			{Coding: 2, Channels: 2, Language: "de"},
		},
		Subpictures: []string{"en"},
	}
}

// Disc is a complete VIDEO_TS tree: file name to content.
type Disc struct {
	Files map[string][]byte
}

// SampleVMG is the video manager matching SampleDisc: titles 1 and 2 live in VTS 1, title 3 in VTS 2.
func SampleVMG() VMG {
	return VMG{
		Provider:  "DVD-KIT FIXTURE",
		TitleSets: 2,
		Titles: []Title{
			{Angles: 2, Chapters: 3, TitleSet: 1, TitleSetTitle: 1, Sector: 1024},
			{Angles: 1, Chapters: 2, TitleSet: 1, TitleSetTitle: 2, Sector: 1024},
			{Angles: 2, Chapters: 3, TitleSet: 2, TitleSetTitle: 1, Sector: 4096},
		},
		FirstPlay: &PGC{PreCommands: 2},
		Countries: []Country{{Code: "US", Masks: [consts.PARENTAL_LEVELS][]uint16{{0, 1, 1}, {0, 1, 1}}}},
	}
}

// SampleDisc builds the IFO, BUP and VOB files of a two title set disc. Title VOBs of VTS 1 are split
// over two parts to exercise VOB concatenation.
func SampleDisc() Disc {
	d := Disc{Files: map[string][]byte{}}
	vmg := BuildVMG(SampleVMG())
	d.Files[consts.VMG_IFO_NAME] = vmg
	d.Files[consts.VMG_BUP_NAME] = vmg

	for n, layout := range map[int]VTS{1: FeatureVTS(), 2: ScenarioVTS()} {
		ifo := BuildVTS(layout)
		d.Files[fmt.Sprintf(consts.VTS_IFO_PATTERN, n)] = ifo
		d.Files[fmt.Sprintf(consts.VTS_BUP_PATTERN, n)] = ifo

		sectors := 0
		for _, a := range layout.Addresses {
			if int(a.End)+1 > sectors {
				sectors = int(a.End) + 1
			}
		}
		vob := SectorPattern(n, 0, sectors)
		if n == 1 {
			d.Files[fmt.Sprintf(consts.VTS_VOB_PATTERN, n, 1)] = vob[:200*consts.DVD_SECTOR_SIZE]
			d.Files[fmt.Sprintf(consts.VTS_VOB_PATTERN, n, 2)] = vob[200*consts.DVD_SECTOR_SIZE:]
		} else {
			d.Files[fmt.Sprintf(consts.VTS_VOB_PATTERN, n, 1)] = vob
		}
	}
	return d
}

// SectorPattern returns count sectors where every sector starts with the title set number and its
// sector number inside the title VOBs, so reads can be checked for position.
func SectorPattern(titleSet, first, count int) []byte {
	data := make([]byte, count*consts.DVD_SECTOR_SIZE)
	for i := 0; i < count; i++ {
		s := data[i*consts.DVD_SECTOR_SIZE:]
		binary.BigEndian.PutUint32(s[0:], uint32(titleSet))
		binary.BigEndian.PutUint32(s[4:], uint32(first+i))
	}
	return data
}

// SectorID decodes the title set and sector number written by SectorPattern.
func SectorID(sector []byte) (titleSet int, number uint32) {
	return int(binary.BigEndian.Uint32(sector[0:])), binary.BigEndian.Uint32(sector[4:])
}

// Names returns the file names in sorted order.
func (d Disc) Names() []string {
	names := make([]string, 0, len(d.Files))
	for name := range d.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFolder writes the disc as root/VIDEO_TS/* and returns the VIDEO_TS path.
func (d Disc) WriteFolder(root string) (string, error) {
	dir := filepath.Join(root, consts.VIDEO_TS_DIR)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	for _, name := range d.Names() {
		if err := os.WriteFile(filepath.Join(dir, name), d.Files[name], 0o644); err != nil {
			return "", err
		}
	}
	return dir, nil
}
