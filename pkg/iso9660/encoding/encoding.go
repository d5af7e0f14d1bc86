// Package encoding decodes the mixed-endian and date fields used by ISO9660 descriptors and directory records.
package encoding

import (
	"encoding/binary"
	"fmt"
	"time"
)

// UnmarshalUint32LSBMSB converts an 8-byte field encoded in both little‑ and big‑endian orders back to a
// uint32 value. Both halves must agree.
func UnmarshalUint32LSBMSB(data []byte) (uint32, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("both-byte field needs 8 bytes, got %d", len(data))
	}
	little := binary.LittleEndian.Uint32(data[0:4])
	big := binary.BigEndian.Uint32(data[4:8])
	if little != big {
		return 0, fmt.Errorf("mismatched both-byte orders: little-endian value %d != big-endian value %d", little, big)
	}
	return little, nil
}

// UnmarshalUint16LSBMSB converts a 4-byte field encoded in both little‑ and big‑endian orders back to a
// uint16 value. Both halves must agree.
func UnmarshalUint16LSBMSB(data []byte) (uint16, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("both-byte field needs 4 bytes, got %d", len(data))
	}
	little := binary.LittleEndian.Uint16(data[0:2])
	big := binary.BigEndian.Uint16(data[2:4])
	if little != big {
		return 0, fmt.Errorf("mismatched both-byte orders: little-endian value %d != big-endian value %d", little, big)
	}
	return little, nil
}

// UnmarshalDateTime converts a 17-byte volume descriptor date (ASCII "YYYYMMDDhhmmsscc" plus a signed
// offset in 15-minute intervals) into a time.Time. Sixteen '0' digits with offset 0 mean unspecified and
// give the zero time.
func UnmarshalDateTime(b []byte) (time.Time, error) {
	if len(b) < 17 {
		return time.Time{}, fmt.Errorf("date field needs 17 bytes, got %d", len(b))
	}
	unspecified := b[16] == 0
	for i := 0; i < 16 && unspecified; i++ {
		unspecified = b[i] == '0' || b[i] == 0
	}
	if unspecified {
		return time.Time{}, nil
	}

	var year, mon, day, hour, min, sec, hundredths int
	if _, err := fmt.Sscanf(string(b[:16]), "%4d%2d%2d%2d%2d%2d%2d",
		&year, &mon, &day, &hour, &min, &sec, &hundredths); err != nil {
		return time.Time{}, fmt.Errorf("parse error: %v", err)
	}
	offset15 := int8(b[16])
	if offset15 < -48 || offset15 > 52 {
		return time.Time{}, fmt.Errorf("offset %d out of ISO9660 bounds", offset15)
	}
	loc := time.UTC
	if offset15 != 0 {
		loc = time.FixedZone("", int(offset15)*900)
	}
	return time.Date(year, time.Month(mon), day, hour, min, sec, hundredths*10_000_000, loc), nil
}

// UnmarshalRecordingDateTime converts the 7-byte directory record date into a time.Time:
//
//	years since 1900, month, day, hour, minute, second, offset from GMT in 15-minute intervals
//
// All zero bytes mean unspecified and give the zero time.
func UnmarshalRecordingDateTime(b []byte) time.Time {
	if len(b) < 7 {
		return time.Time{}
	}
	zero := true
	for _, v := range b[:7] {
		if v != 0 {
			zero = false
			break
		}
	}
	if zero {
		return time.Time{}
	}
	loc := time.FixedZone("ISO9660", int(int8(b[6]))*15*60)
	return time.Date(int(b[0])+1900, time.Month(b[1]), int(b[2]), int(b[3]), int(b[4]), int(b[5]), 0, loc)
}
