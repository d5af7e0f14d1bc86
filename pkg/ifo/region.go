package ifo

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
)

// region is a window onto an IFO buffer. Accessors take offsets relative to the window start and
// are only called after the window has been sized with sub, so they never need their own checks.
type region struct {
	data []byte
	op   string
}

func newRegion(data []byte, op string) region {
	return region{data: data, op: op}
}

// sub returns the window [off, off+length). A window running past the buffer is ErrTruncatedData.
func (r region) sub(off, length uint64) (region, error) {
	end := off + length
	if end < off || end > math.MaxInt {
		return region{}, dvderr.Newf(r.op, dvderr.ErrIntegerOverflow, "window %d+%d", off, length)
	}
	if end > uint64(len(r.data)) {
		return region{}, dvderr.Newf(r.op, dvderr.ErrTruncatedData,
			"need %d bytes at offset %d, have %d", length, off, len(r.data))
	}
	return region{data: r.data[off:end], op: r.op}, nil
}

// named returns the same window reporting failures under a different operation name.
func (r region) named(op string) region {
	return region{data: r.data, op: op}
}

func (r region) size() uint64 {
	return uint64(len(r.data))
}

func (r region) u8(off int) uint8 {
	return r.data[off]
}

func (r region) u16(off int) uint16 {
	return binary.BigEndian.Uint16(r.data[off:])
}

func (r region) u32(off int) uint32 {
	return binary.BigEndian.Uint32(r.data[off:])
}

func (r region) u64(off int) uint64 {
	return binary.BigEndian.Uint64(r.data[off:])
}

func (r region) bytes(off, n int) []byte {
	out := make([]byte, n)
	copy(out, r.data[off:off+n])
	return out
}

// text returns an ASCII field with NUL and space padding removed.
func (r region) text(off, n int) string {
	return string(bytes.TrimRight(r.data[off:off+n], "\x00 "))
}

// arraySize returns count*size, failing when the product does not fit 32-bit IFO address arithmetic.
func arraySize(count, size uint64, op string) (uint64, error) {
	if size != 0 && count > math.MaxUint32/size {
		return 0, dvderr.Newf(op, dvderr.ErrIntegerOverflow, "%d entries of %d bytes", count, size)
	}
	return count * size, nil
}

// sectorOffset converts a logical block number into a byte offset inside the IFO.
func sectorOffset(sector uint32, op string) (uint64, error) {
	return arraySize(uint64(sector), consts.DVD_SECTOR_SIZE, op)
}

// tableHeader is the 8-byte header shared by most IFO tables: an entry count, two reserved bytes and
// the offset of the last byte of the table.
type tableHeader struct {
	Count    uint16
	LastByte uint32
}

// table reads the common header at off and returns the window spanning the whole table.
func (r region) table(off uint64) (region, tableHeader, error) {
	head, err := r.sub(off, consts.TABLE_HEADER_SIZE)
	if err != nil {
		return region{}, tableHeader{}, err
	}
	hdr := tableHeader{Count: head.u16(0), LastByte: head.u32(4)}
	t, err := r.sub(off, uint64(hdr.LastByte)+1)
	if err != nil {
		return region{}, tableHeader{}, err
	}
	return t, hdr, nil
}

// tableAtSector locates a top-level table addressed by a sector pointer.
func (r region) tableAtSector(sector uint32) (region, tableHeader, error) {
	off, err := sectorOffset(sector, r.op)
	if err != nil {
		return region{}, tableHeader{}, err
	}
	return r.table(off)
}
