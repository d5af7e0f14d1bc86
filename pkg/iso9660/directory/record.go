package directory

import (
	"fmt"
	"strings"
	"time"

	"github.com/bgrewell/dvd-kit/pkg/iso9660/encoding"
)

// MinRecordLength is the size of a directory record with a one byte identifier.
const MinRecordLength = 34

type DirectoryRecord struct {
	// LengthOfDirectoryRecord is the length of the record in bytes.
	LengthOfDirectoryRecord uint8 `json:"length_of_directory_record"`
	// ExtendedAttributeRecordLength is non-zero when an extended attribute record precedes the file data
	// inside the extent.
	ExtendedAttributeRecordLength uint8 `json:"extended_attribute_record_length"`
	// LocationOfExtent is the first logical block of the extent.
	//  | Encoding: BothByteOrder
	LocationOfExtent uint32 `json:"location_of_extent"`
	// DataLength is the size of the file section in bytes.
	//  | Encoding: BothByteOrder
	DataLength uint32 `json:"data_length"`
	// RecordingDateAndTime is the time the extent was recorded.
	//  | Encoding: 7-byte time format
	RecordingDateAndTime time.Time `json:"recording_date_and_time"`
	FileFlags            FileFlags `json:"file_flags"`
	// FileIdentifier is the raw identifier, including any ";1" version suffix. The root and parent entries
	// carry a single 0x00 or 0x01 byte.
	FileIdentifier string `json:"file_identifier"`
}

// IsDirectory checks if the entry is a Directory
func (dr *DirectoryRecord) IsDirectory() bool {
	return dr.FileFlags.Directory
}

// IsSpecial checks for "." or ".."
func (dr *DirectoryRecord) IsSpecial() bool {
	return dr.FileIdentifier == "\x00" || dr.FileIdentifier == "\x01"
}

// Name returns the identifier with the version suffix and a trailing dot removed, upper cased. VIDEO_TS
// file names are upper case by definition so lookups compare names in this form.
func (dr *DirectoryRecord) Name() string {
	switch dr.FileIdentifier {
	case "\x00":
		return "."
	case "\x01":
		return ".."
	}
	return NormalizeName(dr.FileIdentifier)
}

// NormalizeName puts name into the form returned by Name.
func NormalizeName(name string) string {
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, ".")
	return strings.ToUpper(name)
}

// Offset returns the byte offset of the file data inside the image.
func (dr *DirectoryRecord) Offset(blockSize int64) int64 {
	return (int64(dr.LocationOfExtent) + int64(dr.ExtendedAttributeRecordLength)) * blockSize
}

// Unmarshal decodes a DirectoryRecord from the provided byte slice.
// It expects that data contains at least LengthOfDirectoryRecord bytes. Padding and the system use area
// that follow the identifier are skipped.
func (dr *DirectoryRecord) Unmarshal(data []byte) error {
	if len(data) < MinRecordLength {
		return fmt.Errorf("data too short to contain a DirectoryRecord: %d bytes", len(data))
	}
	recordLength := int(data[0])
	if recordLength < MinRecordLength || len(data) < recordLength {
		return fmt.Errorf("data length %d is less than expected record length %d", len(data), recordLength)
	}
	dr.LengthOfDirectoryRecord = data[0]
	dr.ExtendedAttributeRecordLength = data[1]

	loc, err := encoding.UnmarshalUint32LSBMSB(data[2:10])
	if err != nil {
		return fmt.Errorf("failed to unmarshal Location Of Extent: %w", err)
	}
	dr.LocationOfExtent = loc

	dataLen, err := encoding.UnmarshalUint32LSBMSB(data[10:18])
	if err != nil {
		return fmt.Errorf("failed to unmarshal Data Length: %w", err)
	}
	dr.DataLength = dataLen
	dr.RecordingDateAndTime = encoding.UnmarshalRecordingDateTime(data[18:25])

	ff, err := UnmarshalFileFlags(data[25])
	if err != nil {
		return fmt.Errorf("failed to unmarshal File Flags: %w", err)
	}
	dr.FileFlags = ff

	fiLen := int(data[32])
	if 33+fiLen > recordLength {
		return fmt.Errorf("insufficient data for File Identifier")
	}
	dr.FileIdentifier = string(data[33 : 33+fiLen])
	return nil
}
