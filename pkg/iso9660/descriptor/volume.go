package descriptor

// VolumeDescriptorType represents the type of volume descriptor in the ISO9660 standard.
type VolumeDescriptorType byte

const (
	TYPE_BOOT_RECORD              VolumeDescriptorType = 0x00
	TYPE_PRIMARY_DESCRIPTOR       VolumeDescriptorType = 0x01
	TYPE_SUPPLEMENTARY_DESCRIPTOR VolumeDescriptorType = 0x02
	TYPE_PARTITION_DESCRIPTOR     VolumeDescriptorType = 0x03
	TYPE_TERMINATOR_DESCRIPTOR    VolumeDescriptorType = 0xFF
)
