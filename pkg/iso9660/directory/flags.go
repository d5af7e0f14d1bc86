package directory

import "fmt"

// FileFlags holds the flag values from a Directory Record's File Flags field.
// The bits are numbered from 0 (LSB) to 7 (MSB) as follows:
//
//	Bit 0 ("Hidden"): If 0, the file's existence shall be made known to the user; if 1, it need not be.
//	Bit 1 ("Directory"): 0 indicates a file; 1 indicates a directory.
//	Bit 2 ("AssociatedFile"): 0 means not an Associated File; 1 means it is.
//	Bit 7 ("MultiExtent"): 0 means this is the final Directory Record for the file; 1 means it is not.
type FileFlags struct {
	Hidden         bool `json:"hidden"`
	Directory      bool `json:"directory"`
	AssociatedFile bool `json:"associated_file"`
	MultiExtent    bool `json:"multi_extent"`
}

// UnmarshalFileFlags converts a byte into a FileFlags struct.
// It returns an error if any reserved bits (bits 5 and 6) are nonzero.
func UnmarshalFileFlags(b byte) (FileFlags, error) {
	if b&0x60 != 0 {
		return FileFlags{}, fmt.Errorf("invalid file flags: reserved bits must be zero, got 0x%02X", b)
	}
	return FileFlags{
		Hidden:         (b & 0x01) != 0,
		Directory:      (b & 0x02) != 0,
		AssociatedFile: (b & 0x04) != 0,
		MultiExtent:    (b & 0x80) != 0,
	}, nil
}
