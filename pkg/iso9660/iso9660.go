// Package iso9660 is a minimal read-only ISO9660 reader used to locate the VIDEO_TS files of a disc image.
package iso9660

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/iso9660/descriptor"
	"github.com/bgrewell/dvd-kit/pkg/iso9660/directory"
	"github.com/bgrewell/dvd-kit/pkg/logging"
	"github.com/bgrewell/dvd-kit/pkg/option"
)

// ErrNotISO9660 is returned when no primary volume descriptor is found.
var ErrNotISO9660 = errors.New("not an ISO9660 image")

// maxDescriptors bounds the volume descriptor scan on damaged images.
const maxDescriptors = 64

// ISO9660 is an opened image.
type ISO9660 struct {
	reader    io.ReaderAt
	pvd       *descriptor.PrimaryVolumeDescriptor
	blockSize int64
	log       *logging.Logger
}

// Open reads the volume descriptor set of r and returns the image.
func Open(r io.ReaderAt, opts ...option.Option) (*ISO9660, error) {
	o := option.Apply(opts...)
	log := o.Logger.Named("iso9660")

	var buf [consts.ISO9660_SECTOR_SIZE]byte
	for i := 0; i < maxDescriptors; i++ {
		sector := int64(consts.ISO9660_SYSTEM_AREA_SECTORS + i)
		if _, err := r.ReadAt(buf[:], sector*consts.ISO9660_SECTOR_SIZE); err != nil {
			return nil, fmt.Errorf("%w: reading volume descriptor %d: %v", ErrNotISO9660, sector, err)
		}

		header := descriptor.VolumeDescriptorHeader{}
		if err := header.Unmarshal(buf[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotISO9660, err)
		}
		switch header.VolumeDescriptorType {
		case descriptor.TYPE_TERMINATOR_DESCRIPTOR:
			return nil, fmt.Errorf("%w: no primary volume descriptor", ErrNotISO9660)
		case descriptor.TYPE_PRIMARY_DESCRIPTOR:
			pvd := &descriptor.PrimaryVolumeDescriptor{}
			if err := pvd.Unmarshal(buf[:]); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrNotISO9660, err)
			}
			log.Debug("found primary volume descriptor", "sector", sector, "volume", pvd.VolumeIdentifier,
				"blocks", pvd.VolumeSpaceSize, "block_size", pvd.LogicalBlockSize)
			return &ISO9660{reader: r, pvd: pvd, blockSize: int64(pvd.LogicalBlockSize), log: log}, nil
		default:
			log.Trace("skipping volume descriptor", "sector", sector, "type", header.VolumeDescriptorType)
		}
	}
	return nil, fmt.Errorf("%w: volume descriptor set is not terminated", ErrNotISO9660)
}

// VolumeID returns the volume identifier of the primary volume descriptor.
func (iso *ISO9660) VolumeID() string {
	return iso.pvd.VolumeIdentifier
}

// PrimaryVolumeDescriptor returns the decoded PVD.
func (iso *ISO9660) PrimaryVolumeDescriptor() *descriptor.PrimaryVolumeDescriptor {
	return iso.pvd
}

// ReadDir lists the records of the directory at path, without the "." and ".." entries. Path
// components are matched case-insensitively and without version suffixes.
func (iso *ISO9660) ReadDir(path string) ([]*directory.DirectoryRecord, error) {
	dir, err := iso.Lookup(path)
	if err != nil {
		return nil, err
	}
	if !dir.IsDirectory() {
		return nil, fmt.Errorf("%s: not a directory", path)
	}
	return iso.readDirectory(dir)
}

// Lookup returns the record of path.
func (iso *ISO9660) Lookup(path string) (*directory.DirectoryRecord, error) {
	current := iso.pvd.RootDirectoryRecord
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		if !current.IsDirectory() {
			return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		}
		records, err := iso.readDirectory(current)
		if err != nil {
			return nil, err
		}
		want := directory.NormalizeName(part)
		var next *directory.DirectoryRecord
		for _, rec := range records {
			if rec.Name() == want {
				next = rec
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		}
		current = next
	}
	return current, nil
}

// Open returns a reader over the data of the file at path.
func (iso *ISO9660) Open(path string) (*io.SectionReader, error) {
	rec, err := iso.Lookup(path)
	if err != nil {
		return nil, err
	}
	if rec.IsDirectory() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	return iso.Section(rec), nil
}

// Section returns a reader over the data of a file record.
func (iso *ISO9660) Section(rec *directory.DirectoryRecord) *io.SectionReader {
	return io.NewSectionReader(iso.reader, rec.Offset(iso.blockSize), int64(rec.DataLength))
}

// readDirectory decodes the records of a directory extent. Records never cross a sector boundary; a zero
// length byte marks the padding at the end of a sector.
func (iso *ISO9660) readDirectory(dir *directory.DirectoryRecord) ([]*directory.DirectoryRecord, error) {
	buf := make([]byte, dir.DataLength)
	if _, err := iso.reader.ReadAt(buf, dir.Offset(iso.blockSize)); err != nil {
		return nil, fmt.Errorf("failed to read directory at LBA %d: %w", dir.LocationOfExtent, err)
	}

	var records []*directory.DirectoryRecord
	sectorSize := int(iso.blockSize)
	for index := 0; index < len(buf); {
		length := int(buf[index])
		if length == 0 {
			index = (index/sectorSize + 1) * sectorSize
			continue
		}
		if index+length > len(buf) {
			return nil, fmt.Errorf("directory record at %d runs past the extent", index)
		}
		rec := &directory.DirectoryRecord{}
		if err := rec.Unmarshal(buf[index : index+length]); err != nil {
			return nil, fmt.Errorf("failed to parse directory record: %w", err)
		}
		index += length
		if rec.IsSpecial() {
			continue
		}
		if rec.FileFlags.MultiExtent {
			iso.log.Warn("multi-extent file, only the first extent is used", "name", rec.Name())
		}
		records = append(records, rec)
	}
	return records, nil
}
