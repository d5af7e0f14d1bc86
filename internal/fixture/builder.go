// Package fixture builds synthetic DVD-Video structures for tests: IFO buffers laid out exactly like
// authored discs, folder rips and ISO9660 images.
package fixture

import (
	"encoding/binary"

	"github.com/bgrewell/dvd-kit/pkg/consts"
)

// buffer is a growable big-endian byte buffer with sector aligned table placement.
type buffer struct {
	data []byte
}

func (b *buffer) grow(n int) {
	if n > len(b.data) {
		b.data = append(b.data, make([]byte, n-len(b.data))...)
	}
}

func (b *buffer) put8(off int, v uint8) {
	b.grow(off + 1)
	b.data[off] = v
}

func (b *buffer) put16(off int, v uint16) {
	b.grow(off + 2)
	binary.BigEndian.PutUint16(b.data[off:], v)
}

func (b *buffer) put32(off int, v uint32) {
	b.grow(off + 4)
	binary.BigEndian.PutUint32(b.data[off:], v)
}

func (b *buffer) put64(off int, v uint64) {
	b.grow(off + 8)
	binary.BigEndian.PutUint64(b.data[off:], v)
}

func (b *buffer) putBytes(off int, v []byte) {
	b.grow(off + len(v))
	copy(b.data[off:], v)
}

// appendSector places table at the next free sector and returns that sector number.
func (b *buffer) appendSector(table []byte) uint32 {
	sector := (len(b.data) + consts.DVD_SECTOR_SIZE - 1) / consts.DVD_SECTOR_SIZE
	b.grow(sector * consts.DVD_SECTOR_SIZE)
	b.data = append(b.data, table...)
	return uint32(sector)
}

// pad extends the buffer to a whole number of sectors.
func (b *buffer) pad() []byte {
	sectors := (len(b.data) + consts.DVD_SECTOR_SIZE - 1) / consts.DVD_SECTOR_SIZE
	b.grow(sectors * consts.DVD_SECTOR_SIZE)
	return b.data
}

// bcdTime encodes whole seconds as an hh:mm:ss BCD playback time at 25 fps.
func bcdTime(seconds int) [4]byte {
	enc := func(v int) byte { return byte((v/10)<<4 | v%10) }
	return [4]byte{enc(seconds / 3600 % 100), enc(seconds / 60 % 60), enc(seconds % 60), 0x40}
}
