package consts

const (
	// DVD logical block size. Every sector pointer in an IFO file counts blocks of this size.
	DVD_SECTOR_SIZE = 2048

	// Identifier at offset 0 of VIDEO_TS.IFO.
	VMG_IDENTIFIER = "DVDVIDEO-VMG"

	// Identifier at offset 0 of every VTS_nn_0.IFO.
	VTS_IDENTIFIER = "DVDVIDEO-VTS"

	// Length of both identifiers.
	IFO_IDENTIFIER_SIZE = 12

	// Directory holding the DVD-Video files on a disc or in a folder rip.
	VIDEO_TS_DIR = "VIDEO_TS"

	// Video manager information and its backup copy.
	VMG_IFO_NAME = "VIDEO_TS.IFO"
	VMG_BUP_NAME = "VIDEO_TS.BUP"

	// Printf patterns for title set files. Title VOBs are split into parts 1..9, part 0 holds the menus.
	VTS_IFO_PATTERN = "VTS_%02d_0.IFO"
	VTS_BUP_PATTERN = "VTS_%02d_0.BUP"
	VTS_VOB_PATTERN = "VTS_%02d_%d.VOB"

	// Highest title set number and highest title VOB part number.
	MAX_TITLE_SETS = 99
	MAX_VOB_PARTS  = 9

	// Size of a single PGC header, sub-tables excluded.
	PGC_HEADER_SIZE = 236

	// Fixed entry sizes of the IFO sub-tables.
	TT_SRPT_ENTRY_SIZE       = 12
	PGCI_SRP_SIZE            = 8
	CELL_PLAYBACK_SIZE       = 24
	CELL_POSITION_SIZE       = 4
	CELL_ADDRESS_SIZE        = 12
	PTT_ENTRY_SIZE           = 4
	VM_COMMAND_SIZE          = 8
	TABLE_HEADER_SIZE        = 8
	AUDIO_ATTRIBUTES_SIZE    = 8
	SUBPICTURE_ATTRS_SIZE    = 6
	MAX_AUDIO_STREAMS        = 8
	MAX_SUBPICTURE_STREAMS   = 32
	PALETTE_ENTRIES          = 16
	PARENTAL_LEVELS          = 8
	PTL_MAIT_COUNTRY_SIZE    = 8
	PTL_MAIT_HEADER_SIZE     = 8
	TMAP_HEADER_SIZE         = 4
	TMAP_ENTRY_SIZE          = 4
	VOBU_ADMAP_HEADER_SIZE   = 4
	VOBU_ADMAP_ENTRY_SIZE    = 4
	COMMAND_TABLE_HEADER_LEN = 8

	// Number of system area sectors before the ISO9660 volume descriptor set.
	ISO9660_SYSTEM_AREA_SECTORS = 16

	// Standard ISO9660 identifier.
	ISO9660_STD_IDENTIFIER = "CD001"

	// ISO9660 logical block size.
	ISO9660_SECTOR_SIZE = 2048

	// Separators allowed by ISO9660 0x2E and 0x3B.
	ISO9660_SEPARATOR_1 = "."
	ISO9660_SEPARATOR_2 = ";"
)
