package chain

import (
	"fmt"

	"github.com/bgrewell/dvd-kit/pkg/dvderr"
)

// BlockType is the angle block role of a program cell.
type BlockType int

const (
	// None is an ordinary cell shared by every angle.
	None BlockType = iota
	// InterleavedEntry is the first cell of an angle block. The next angle-count cells are parallel
	// alternatives, one per angle.
	InterleavedEntry
	// InterleavedExit is a later cell of an angle block, the alternative that rejoins the common chain.
	InterleavedExit
)

func (b BlockType) String() string {
	switch b {
	case None:
		return "none"
	case InterleavedEntry:
		return "interleaved-entry"
	case InterleavedExit:
		return "interleaved-exit"
	default:
		return fmt.Sprintf("BlockType(%d)", int(b))
	}
}

// Interleaved reports whether the cell belongs to an angle block.
func (b BlockType) Interleaved() bool {
	return b == InterleavedEntry || b == InterleavedExit
}

// Classify maps the raw cell category word onto a BlockType. Only the top nibble matters: two bits of
// block mode (first, middle, last) followed by two bits of block type (01 = angle block).
//
//	0x5 first cell of an angle block   -> InterleavedEntry
//	0x9 middle cell, 0xD last cell     -> InterleavedExit
//	block type 00                      -> None
//
// Every other pattern has never been seen on pressed media and is rejected with ErrFormat.
func Classify(category uint16) (BlockType, error) {
	nibble := category >> 12
	switch {
	case nibble == 0x5:
		return InterleavedEntry, nil
	case nibble == 0x9 || nibble == 0xd:
		return InterleavedExit, nil
	case nibble&0x3 == 0:
		return None, nil
	default:
		return None, dvderr.Newf("chain.Classify", dvderr.ErrFormat, "unknown block bits %#x in category %#04x", nibble, category)
	}
}

// AngleBias returns how many cells a transition landing on a cell of type b skips so the selected angle
// is played: angle-1 on entering a block, angleCount-angle on its exit marker, 0 elsewhere.
func AngleBias(b BlockType, angle, angleCount int) int {
	switch b {
	case InterleavedEntry:
		return angle - 1
	case InterleavedExit:
		return angleCount - angle
	default:
		return 0
	}
}
