package option

import (
	"github.com/bgrewell/dvd-kit/pkg/logging"
)

// ExtractionProgressCallback is called after every block read while a title is extracted.
// Parameters:
// - title: The title being extracted.
// - chapter: The chapter the cursor is in.
// - chapterCount: The number of chapters of the title.
// - sectorsRead: The number of sectors written so far.
// - totalSectors: The number of sectors the extraction is expected to write.
type ExtractionProgressCallback func(
	title int,
	chapter int,
	chapterCount int,
	sectorsRead int64,
	totalSectors int64,
)

// OpenOptions controls how a disc is opened.
type OpenOptions struct {
	// PreferBackup reads the .BUP copy of an IFO first and only falls back to the .IFO when it fails.
	PreferBackup bool
	// StrictCategories rejects cells whose block type bits are not a known angle pattern.
	StrictCategories bool
	// ExtractionProgressCallback receives progress updates from Disc.ExtractTitle.
	ExtractionProgressCallback ExtractionProgressCallback
	Logger                     *logging.Logger
}

type OpenOption func(*OpenOptions)

// DefaultOpenOptions returns the options used when Open is called without any.
func DefaultOpenOptions() *OpenOptions {
	return &OpenOptions{
		StrictCategories: true,
		Logger:           logging.DefaultLogger(),
	}
}

func WithExtractionProgress(callback ExtractionProgressCallback) OpenOption {
	return func(o *OpenOptions) {
		o.ExtractionProgressCallback = callback
	}
}

func WithLogger(logger *logging.Logger) OpenOption {
	return func(o *OpenOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func WithPreferBackup(preferBackup bool) OpenOption {
	return func(o *OpenOptions) {
		o.PreferBackup = preferBackup
	}
}

func WithStrictCategories(strict bool) OpenOption {
	return func(o *OpenOptions) {
		o.StrictCategories = strict
	}
}
