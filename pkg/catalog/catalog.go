// Package catalog exposes the titles of a disc as decoded from the video manager.
package catalog

import (
	"sort"

	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/ifo"
)

// Title is one playable title of the disc.
type Title struct {
	// ID is the 1-based global title number.
	ID           uint32 `yaml:"id"`
	ChapterCount uint16 `yaml:"chapters"`
	// AngleCount is at least 1.
	AngleCount uint8 `yaml:"angles"`
	// VTS is the owning title set number.
	VTS int `yaml:"vts"`
	// VTSTitle is the title number inside the title set.
	VTSTitle int `yaml:"vts_title"`
	// StartSector is the disc sector the title set starts at.
	StartSector  uint32 `yaml:"start_sector"`
	PlaybackType uint8  `yaml:"playback_type"`
	ParentalMask uint16 `yaml:"parental_mask"`
}

// Catalog is the read-only title table of a disc.
type Catalog struct {
	titles []Title
}

// New builds the catalog from a decoded video manager. Title set references outside the disc's title
// set count are rejected.
func New(vmg *ifo.VMG) (*Catalog, error) {
	c := &Catalog{titles: make([]Title, len(vmg.Titles))}
	for i, e := range vmg.Titles {
		if e.TitleSet == 0 || (vmg.TitleSetCount != 0 && uint16(e.TitleSet) > vmg.TitleSetCount) {
			return nil, dvderr.Newf("catalog.New", dvderr.ErrFormat, "title %d refers to title set %d of %d",
				i+1, e.TitleSet, vmg.TitleSetCount)
		}
		if e.TitleSetTitle == 0 {
			return nil, dvderr.Newf("catalog.New", dvderr.ErrFormat, "title %d has no title set title", i+1)
		}
		angles := e.AngleCount
		if angles == 0 {
			angles = 1
		}
		c.titles[i] = Title{
			ID:           uint32(i + 1),
			ChapterCount: e.ChapterCount,
			AngleCount:   angles,
			VTS:          int(e.TitleSet),
			VTSTitle:     int(e.TitleSetTitle),
			StartSector:  e.TitleSetSector,
			PlaybackType: e.PlaybackType,
			ParentalMask: e.ParentalMask,
		}
	}
	return c, nil
}

// TitleCount returns the number of titles.
func (c *Catalog) TitleCount() uint32 {
	return uint32(len(c.titles))
}

// GetTitle returns title id, 1-based.
func (c *Catalog) GetTitle(id uint32) (Title, error) {
	if id < 1 || id > c.TitleCount() {
		return Title{}, dvderr.Newf("catalog.GetTitle", dvderr.ErrOutOfRange, "title %d of %d", id, len(c.titles))
	}
	return c.titles[id-1], nil
}

// Titles returns a copy of all titles in id order.
func (c *Catalog) Titles() []Title {
	return append([]Title(nil), c.titles...)
}

// TitleSets returns the distinct title set numbers referenced by titles, ascending.
func (c *Catalog) TitleSets() []int {
	seen := map[int]bool{}
	var sets []int
	for _, t := range c.titles {
		if !seen[t.VTS] {
			seen[t.VTS] = true
			sets = append(sets, t.VTS)
		}
	}
	sort.Ints(sets)
	return sets
}
