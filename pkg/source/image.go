package source

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/iso9660"
	"github.com/bgrewell/dvd-kit/pkg/option"
)

// image reads files from the VIDEO_TS directory of an ISO9660 image.
type image struct {
	file *os.File
	iso  *iso9660.ISO9660
}

// OpenImage opens the disc image at location.
func OpenImage(location string, opts ...option.Option) (Source, error) {
	o := option.Apply(opts...)
	file, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	iso, err := iso9660.Open(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}
	o.Logger.Named("source").Debug("opened image", "location", location, "volume", iso.VolumeID())
	return newDisc(&image{file: file, iso: iso}, o.Logger.Named("source")), nil
}

func (i *image) open(name string) (io.ReaderAt, int64, error) {
	r, err := i.iso.Open(path.Join("/", consts.VIDEO_TS_DIR, name))
	if err != nil {
		return nil, 0, err
	}
	return r, r.Size(), nil
}

func (i *image) readFile(name string) ([]byte, error) {
	r, size, err := i.open(name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (i *image) close() error {
	return i.file.Close()
}
