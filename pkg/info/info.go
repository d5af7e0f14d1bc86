// Package info holds a serialisable summary of a decoded disc: its titles, their chapters and cells, and
// the streams each title offers.
package info

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

type Disc struct {
	Provider   string  `yaml:"provider"`
	RegionMask string  `yaml:"region_mask"`
	TitleSets  int     `yaml:"title_sets"`
	Titles     []Title `yaml:"titles"`
}

type Title struct {
	ID       uint32        `yaml:"id"`
	VTS      int           `yaml:"vts"`
	VTSTitle int           `yaml:"vts_title"`
	PGC      int           `yaml:"pgc"`
	Angles   int           `yaml:"angles"`
	Duration time.Duration `yaml:"duration"`
	Chapters []Chapter     `yaml:"chapters"`
	Cells    []Cell        `yaml:"cells,omitempty"`
	Audio    []Stream      `yaml:"audio,omitempty"`
	Subtitle []Stream      `yaml:"subtitles,omitempty"`
	// Error is set when the title could not be indexed. The other fields come from the title table only.
	Error string `yaml:"error,omitempty"`
}

type Chapter struct {
	Number    int           `yaml:"number"`
	FirstCell int           `yaml:"first_cell"`
	Duration  time.Duration `yaml:"duration"`
}

type Cell struct {
	Index       int           `yaml:"index"`
	Block       string        `yaml:"block,omitempty"`
	FirstSector uint32        `yaml:"first_sector"`
	LastSector  uint32        `yaml:"last_sector"`
	Duration    time.Duration `yaml:"duration"`
}

type Stream struct {
	Number   int    `yaml:"number"`
	ID       string `yaml:"id"`
	Coding   string `yaml:"coding,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// StreamID formats a demux stream id the way stream selectors print them.
func StreamID(id uint16) string {
	return fmt.Sprintf("0x%04x", id)
}

// YAML returns the summary as a YAML document.
func (d *Disc) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// Parse reads a summary produced by YAML.
func Parse(data []byte) (*Disc, error) {
	d := &Disc{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to parse disc summary: %w", err)
	}
	return d, nil
}

// ChapterCount returns the number of chapters over all titles.
func (d *Disc) ChapterCount() int {
	n := 0
	for _, t := range d.Titles {
		n += len(t.Chapters)
	}
	return n
}
