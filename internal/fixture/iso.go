package fixture

import (
	"fmt"
	"os"
	"path"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/filesystem/iso9660"

	"github.com/bgrewell/dvd-kit/pkg/consts"
)

// WriteISO authors an ISO9660 image at location holding the disc under /VIDEO_TS. The image is written
// by go-diskfs so readers are tested against an independent ISO9660 implementation.
func (d Disc) WriteISO(location string) error {
	var size int64 = 4 * 1024 * 1024
	for _, data := range d.Files {
		size += int64(len(data))
	}

	img, err := diskfs.Create(location, size, diskfs.Raw, diskfs.SectorSizeDefault)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	img.LogicalBlocksize = consts.ISO9660_SECTOR_SIZE

	fs, err := img.CreateFilesystem(disk.FilesystemSpec{
		Partition:   0,
		FSType:      filesystem.TypeISO9660,
		VolumeLabel: "DVDKIT",
	})
	if err != nil {
		return fmt.Errorf("failed to create filesystem: %w", err)
	}

	dir := "/" + consts.VIDEO_TS_DIR
	if err := fs.Mkdir(dir); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, name := range d.Names() {
		f, err := fs.OpenFile(path.Join(dir, name), os.O_CREATE|os.O_RDWR)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := f.Write(d.Files[name]); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	iso, ok := fs.(*iso9660.FileSystem)
	if !ok {
		return fmt.Errorf("unexpected filesystem type %T", fs)
	}
	if err := iso.Finalize(iso9660.FinalizeOptions{}); err != nil {
		return fmt.Errorf("failed to finalize image: %w", err)
	}
	return nil
}
