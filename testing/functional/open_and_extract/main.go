package main

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"

	"github.com/bgrewell/dvd-kit"
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/info"
	"github.com/bgrewell/dvd-kit/pkg/logging"
	"github.com/bgrewell/dvd-kit/pkg/option"
	"github.com/bgrewell/usage"
)

// hashWindows reads the windows of sel straight from the source, bypassing the cursor.
func hashWindows(d *dvd.Disc, sel dvd.Selection) (string, error) {
	title, err := d.Catalog().GetTitle(sel.Title)
	if err != nil {
		return "", err
	}
	windows, err := d.Windows(sel)
	if err != nil {
		return "", err
	}

	hash := md5.New()
	buf := make([]byte, consts.DVD_SECTOR_SIZE)
	for _, w := range windows {
		if err := d.Source().SeekSector(title.VTS, w.Start); err != nil {
			return "", err
		}
		for s := w.Start; s <= w.End; s++ {
			if _, err := io.ReadFull(readerFunc(d.Source().ReadBlocks), buf); err != nil {
				return "", err
			}
			hash.Write(buf)
		}
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("open_and_extract"),
		usage.WithApplicationDescription("open_and_extract is a functional testing application that is part of dvd-kit and is designed to verify that the decode, navigation and extraction logic of dvd-kit agree with each other."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Enable trace logging", "", nil)
	input := u.AddArgument(1, "input", "The VIDEO_TS folder or disc image to run the tests against", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if input == nil || *input == "" {
		u.PrintError(fmt.Errorf("location of the input disc <input> must be provided"))
		os.Exit(1)
	}

	opts := []option.OpenOption{option.WithStrictCategories(false)}
	if *verbose {
		opts = append(opts, option.WithLogger(logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_TRACE, true))))
	}
	d, err := dvd.Open(*input, opts...)
	if err != nil {
		fmt.Printf("Failed to open disc: %s\n", err)
		os.Exit(1)
	}
	defer d.Close()

	// The summary must survive a YAML round trip.
	summary := d.Summary()
	data, err := summary.YAML()
	if err != nil {
		fmt.Printf("Failed to render summary: %s\n", err)
		os.Exit(1)
	}
	reparsed, err := info.Parse(data)
	if err != nil {
		fmt.Printf("Failed to parse summary: %s\n", err)
		os.Exit(1)
	}
	if reparsed.ChapterCount() != summary.ChapterCount() {
		fmt.Printf("Chapter count changed after round trip: %d != %d\n", reparsed.ChapterCount(), summary.ChapterCount())
		os.Exit(1)
	}

	failed := false
	for _, t := range d.Catalog().Titles() {
		for angle := 1; angle <= int(t.AngleCount); angle++ {
			sel := dvd.Selection{Title: t.ID, Angle: angle}

			expected, err := hashWindows(d, sel)
			if err != nil {
				fmt.Printf("Title %d angle %d: failed to read windows: %s\n", t.ID, angle, err)
				failed = true
				continue
			}

			hash := md5.New()
			written, err := d.ExtractTitle(context.Background(), hash, sel)
			if err != nil {
				fmt.Printf("Title %d angle %d: failed to extract: %s\n", t.ID, angle, err)
				failed = true
				continue
			}
			sectors, err := d.TitleSectors(sel)
			if err != nil {
				fmt.Printf("Title %d angle %d: failed to count sectors: %s\n", t.ID, angle, err)
				failed = true
				continue
			}

			actual := fmt.Sprintf("%x", hash.Sum(nil))
			switch {
			case written != sectors*consts.DVD_SECTOR_SIZE:
				fmt.Printf("Title %d angle %d: wrote %d bytes, expected %d sectors\n", t.ID, angle, written, sectors)
				failed = true
			case actual != expected:
				fmt.Printf("Title %d angle %d: MD5 of extraction does not match MD5 of windows:\n  Windows:   %s\n  Extracted: %s\n",
					t.ID, angle, expected, actual)
				failed = true
			default:
				fmt.Printf("Title %d angle %d: ok (%d sectors)\n", t.ID, angle, sectors)
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}
