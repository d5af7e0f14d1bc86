package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bgrewell/dvd-kit"
	"github.com/bgrewell/dvd-kit/pkg/logging"
	"github.com/bgrewell/dvd-kit/pkg/option"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

var (
	version = "dev"
)

// truncateString truncates the input string to the specified max length.
// If truncation occurs, it prepends "..." to indicate the string has been shortened.
func truncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return input[len(input)-maxLength:]
	}
	return "..." + input[len(input)-(maxLength-3):]
}

// CreateProgressCallback returns a callback that updates the spinner's message.
func CreateProgressCallback(spinner *yacspin.Spinner, output string) option.ExtractionProgressCallback {
	return func(
		title int,
		chapter int,
		chapterCount int,
		sectorsRead int64,
		totalSectors int64,
	) {
		if spinner == nil {
			return
		}

		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}

		percent := 100.0
		if totalSectors > 0 {
			percent = float64(sectorsRead) / float64(totalSectors) * 100
		}
		fixedPart := fmt.Sprintf(" [title %d chapter %d/%d] ", title, chapter, chapterCount)
		suffixPart := fmt.Sprintf(" - %.2f%%", percent)

		availableSpace := width - len(fixedPart) - len(suffixPart) - 6
		if availableSpace < 10 {
			availableSpace = 10
		}

		spinner.Message(fixedPart + truncateString(output, availableSpace) + suffixPart)
	}
}

// InitializeSpinner sets up and starts the yacspin spinner.
func InitializeSpinner() (*yacspin.Spinner, error) {
	settings := yacspin.Config{
		Frequency:         100 * time.Millisecond,
		ShowCursor:        false,
		SpinnerAtEnd:      false,
		CharSet:           yacspin.CharSets[14],
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopFailCharacter: "✗",
		StopCharacter:     "✓",
	}

	spinner, err := yacspin.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}

	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start spinner: %w", err)
	}

	return spinner, nil
}

// openOptions builds the disc options for the command line. Unknown cell categories are tolerated so
// damaged discs can still be extracted.
func openOptions(backup, debug, trace bool) []option.OpenOption {
	opts := []option.OpenOption{option.WithPreferBackup(backup), option.WithStrictCategories(false)}
	switch {
	case trace:
		opts = append(opts, option.WithLogger(logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_TRACE, true))))
	case debug:
		opts = append(opts, option.WithLogger(logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_DEBUG, true))))
	}
	return opts
}

func usage() {
	fmt.Println("dvdextract v" + version)
	fmt.Println("Usage: dvdextract [options] <path-to-dvd>")
	fmt.Println("  -v               Enable verbose (debug) logging")
	fmt.Println("  -vv              Enable trace logging")
	fmt.Println("  -t <title>       Title to extract (default: 1)")
	fmt.Println("  -c <chapter>     First chapter to extract (default: 1)")
	fmt.Println("  -C <chapter>     Last chapter to extract (default: last chapter of the title)")
	fmt.Println("  -a <angle>       Angle to extract (default: 1)")
	fmt.Println("  -backup          Read the .BUP copies of the IFO files first")
	fmt.Println("  -o <file>        Output file (default './title_<title>.vob')")
}

func main() {
	// Logging level flags
	debug := flag.Bool("v", false, "Enable verbose (debug) logging")
	trace := flag.Bool("vv", false, "Enable trace logging")

	// Selection
	title := flag.Uint("t", 1, "Title to extract")
	first := flag.Int("c", 1, "First chapter to extract")
	last := flag.Int("C", 0, "Last chapter to extract")
	angle := flag.Int("a", 1, "Angle to extract")
	backup := flag.Bool("backup", false, "Read the .BUP copies of the IFO files first")

	outputFile := flag.String("o", "", "Output file")

	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}
	dvdPath := flag.Arg(0)

	output := *outputFile
	if output == "" {
		output = fmt.Sprintf("./title_%02d.vob", *title)
	}
	output = filepath.Clean(output)

	opts := openOptions(*backup, *debug, *trace)

	// The spinner would interleave with log output, so it only runs when logging is quiet.
	var spinner *yacspin.Spinner
	if !*debug && !*trace {
		var err error
		spinner, err = InitializeSpinner()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize spinner: %v\n", err)
			fmt.Fprintf(os.Stderr, "Progress updates will be disabled.\n")
		}
	}
	opts = append(opts, option.WithExtractionProgress(CreateProgressCallback(spinner, output)))

	fail := func(msg string, err error) {
		if spinner != nil {
			spinner.StopFailMessage(fmt.Sprintf(" %s: %v", msg, err))
			spinner.StopFail()
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		}
		os.Exit(1)
	}

	d, err := dvd.Open(dvdPath, opts...)
	if err != nil {
		fail("Failed to open disc", err)
	}
	defer d.Close()

	f, err := os.Create(output)
	if err != nil {
		fail("Failed to create output file", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sel := dvd.Selection{
		Title:        uint32(*title),
		FirstChapter: *first,
		LastChapter:  *last,
		Angle:        *angle,
	}
	written, err := d.ExtractTitle(ctx, f, sel)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fail(fmt.Sprintf("Failed to extract title %d", *title), err)
	}

	msg := fmt.Sprintf(" Title %d extracted to %s (%d bytes)", *title, output, written)
	if spinner != nil {
		spinner.StopMessage(msg)
		spinner.Stop()
		return
	}
	fmt.Println(msg)
}
