package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bgrewell/dvd-kit"
	"github.com/bgrewell/dvd-kit/pkg/info"
	"github.com/bgrewell/dvd-kit/pkg/logging"
	"github.com/bgrewell/dvd-kit/pkg/option"
	"github.com/bgrewell/usage"
	"github.com/fatih/color"
)

var (
	heading = color.New(color.FgHiCyan, color.Bold)
	label   = color.New(color.FgHiWhite)
	failure = color.New(color.FgHiRed)
)

func printTitle(t info.Title) {
	heading.Printf("Title %d", t.ID)
	fmt.Printf("  vts %d/%d  pgc %d  angles %d  %s\n", t.VTS, t.VTSTitle, t.PGC, t.Angles, t.Duration)
	if t.Error != "" {
		failure.Printf("  %s\n", t.Error)
		return
	}
	for _, c := range t.Chapters {
		label.Printf("  chapter %-3d", c.Number)
		fmt.Printf(" cell %-3d %s\n", c.FirstCell, c.Duration)
	}
	for _, c := range t.Cells {
		block := c.Block
		if block == "" {
			block = "-"
		}
		fmt.Printf("    cell %-3d %-17s %8d-%-8d %s\n", c.Index, block, c.FirstSector, c.LastSector, c.Duration)
	}
	for _, s := range t.Audio {
		fmt.Printf("  audio %d %s %s %s\n", s.Number, s.ID, s.Coding, s.Language)
	}
	for _, s := range t.Subtitle {
		fmt.Printf("  subtitle %d %s %s\n", s.Number, s.ID, s.Language)
	}
}

// printWindows lists the sector windows a player reads for every angle of t.
func printWindows(d *dvd.Disc, t info.Title) {
	for angle := 1; angle <= t.Angles; angle++ {
		windows, err := d.Windows(dvd.Selection{Title: t.ID, Angle: angle})
		if err != nil {
			failure.Printf("  angle %d: %v\n", angle, err)
			continue
		}
		parts := make([]string, 0, len(windows))
		for _, w := range windows {
			parts = append(parts, fmt.Sprintf("%d-%d", w.Start, w.End))
		}
		label.Printf("  angle %d", angle)
		fmt.Printf(" %s\n", strings.Join(parts, " "))
	}
}

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("ifoview"),
		usage.WithApplicationDescription("ifoview prints the titles, chapters and cells of a DVD-Video folder or image."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print verbose output", "", nil)
	asYAML := u.AddBooleanOption("y", "yaml", false, "Print the summary as YAML", "", nil)
	path := u.AddArgument(1, "dvd-path", "Path to a VIDEO_TS folder or a disc image", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if path == nil || *path == "" {
		u.PrintError(fmt.Errorf("location of the disc <dvd-path> must be provided"))
		os.Exit(1)
	}

	opts := []option.OpenOption{option.WithStrictCategories(false)}
	if *verbose {
		opts = append(opts, option.WithLogger(logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_DEBUG, true))))
	}

	d, err := dvd.Open(*path, opts...)
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer d.Close()

	summary := d.Summary()
	if *asYAML {
		data, err := summary.YAML()
		if err != nil {
			u.PrintError(err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	heading.Println(strings.TrimSpace(summary.Provider))
	fmt.Printf("region mask %s  title sets %d  titles %d  chapters %d\n\n",
		summary.RegionMask, summary.TitleSets, len(summary.Titles), summary.ChapterCount())
	for _, t := range summary.Titles {
		printTitle(t)
		if t.Error == "" {
			printWindows(d, t)
		}
		fmt.Println()
	}
}
