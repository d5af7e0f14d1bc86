package descriptor

import (
	"fmt"
	"strings"
	"time"

	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/iso9660/directory"
	"github.com/bgrewell/dvd-kit/pkg/iso9660/encoding"
)

// Field offsets inside the primary volume descriptor sector.
const (
	offSystemIdentifier      = 8
	offVolumeIdentifier      = 40
	offVolumeSpaceSize       = 80
	offLogicalBlockSize      = 128
	offRootDirectoryRecord   = 156
	offVolumeSetIdentifier   = 190
	offPublisherIdentifier   = 318
	offApplicationIdentifier = 574
	offVolumeCreationDate    = 813
)

// PrimaryVolumeDescriptor holds the fields of the PVD needed to locate files.
type PrimaryVolumeDescriptor struct {
	VolumeDescriptorHeader
	SystemIdentifier          string                     `json:"system_identifier"`
	VolumeIdentifier          string                     `json:"volume_identifier"`
	VolumeSpaceSize           uint32                     `json:"volume_space_size"`
	LogicalBlockSize          uint16                     `json:"logical_block_size"`
	RootDirectoryRecord       *directory.DirectoryRecord `json:"root_directory_record"`
	VolumeSetIdentifier       string                     `json:"volume_set_identifier"`
	PublisherIdentifier       string                     `json:"publisher_identifier"`
	ApplicationIdentifier     string                     `json:"application_identifier"`
	VolumeCreationDateAndTime time.Time                  `json:"volume_creation_date_and_time"`
}

// Unmarshal decodes a full descriptor sector.
func (pvd *PrimaryVolumeDescriptor) Unmarshal(data []byte) error {
	if len(data) < consts.ISO9660_SECTOR_SIZE {
		return fmt.Errorf("primary volume descriptor needs %d bytes, got %d", consts.ISO9660_SECTOR_SIZE, len(data))
	}
	if err := pvd.VolumeDescriptorHeader.Unmarshal(data); err != nil {
		return err
	}
	if pvd.VolumeDescriptorType != TYPE_PRIMARY_DESCRIPTOR {
		return fmt.Errorf("descriptor type %d is not a primary volume descriptor", pvd.VolumeDescriptorType)
	}

	text := func(off, n int) string {
		return strings.TrimRight(string(data[off:off+n]), " \x00")
	}
	pvd.SystemIdentifier = text(offSystemIdentifier, 32)
	pvd.VolumeIdentifier = text(offVolumeIdentifier, 32)
	pvd.VolumeSetIdentifier = text(offVolumeSetIdentifier, 128)
	pvd.PublisherIdentifier = text(offPublisherIdentifier, 128)
	pvd.ApplicationIdentifier = text(offApplicationIdentifier, 128)

	var err error
	if pvd.VolumeSpaceSize, err = encoding.UnmarshalUint32LSBMSB(data[offVolumeSpaceSize:]); err != nil {
		return fmt.Errorf("failed to unmarshal Volume Space Size: %w", err)
	}
	if pvd.LogicalBlockSize, err = encoding.UnmarshalUint16LSBMSB(data[offLogicalBlockSize:]); err != nil {
		return fmt.Errorf("failed to unmarshal Logical Block Size: %w", err)
	}
	if pvd.LogicalBlockSize == 0 {
		return fmt.Errorf("logical block size is zero")
	}

	root := &directory.DirectoryRecord{}
	if err = root.Unmarshal(data[offRootDirectoryRecord : offRootDirectoryRecord+directory.MinRecordLength]); err != nil {
		return fmt.Errorf("failed to unmarshal root directory record: %w", err)
	}
	pvd.RootDirectoryRecord = root

	// Some authoring tools leave the creation date blank or malformed.
	pvd.VolumeCreationDateAndTime, _ = encoding.UnmarshalDateTime(data[offVolumeCreationDate:])
	return nil
}
