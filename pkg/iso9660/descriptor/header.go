package descriptor

import (
	"fmt"

	"github.com/bgrewell/dvd-kit/pkg/consts"
)

// HeaderSize is the size of the header every volume descriptor starts with.
const HeaderSize = 7

type VolumeDescriptorHeader struct {
	// Volume Descriptor Types.
	//  | 0 = Boot Record
	//  | 1 = Primary
	//  | 2 = Supplementary
	//  | 3 = Partition
	//  | 255 = Terminator
	VolumeDescriptorType VolumeDescriptorType `json:"volume_descriptor_type"`
	// Standard Identifier should always be 'CD001'.
	StandardIdentifier      string `json:"standard_identifier"`
	VolumeDescriptorVersion uint8  `json:"volume_descriptor_version"`
}

// Unmarshal parses the first 7 bytes of a volume descriptor sector.
func (vdh *VolumeDescriptorHeader) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("volume descriptor header needs %d bytes, got %d", HeaderSize, len(data))
	}
	vdh.VolumeDescriptorType = VolumeDescriptorType(data[0])
	vdh.StandardIdentifier = string(data[1:6])
	vdh.VolumeDescriptorVersion = data[6]

	if vdh.StandardIdentifier != consts.ISO9660_STD_IDENTIFIER {
		return fmt.Errorf("unexpected standard identifier: %q", vdh.StandardIdentifier)
	}
	return nil
}
