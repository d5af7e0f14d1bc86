package ifo

import (
	"fmt"
	"time"
)

// PlaybackTime is the 4-byte BCD duration used by PGCs and cells.
type PlaybackTime struct {
	Hours   uint8
	Minutes uint8
	Seconds uint8
	Frames  uint8
	// FrameRate is 25 or 30, 0 when the rate bits are not set.
	FrameRate uint8
}

func bcd(b uint8) uint8 {
	return (b>>4)*10 + b&0x0f
}

// decodePlaybackTime decodes hh mm ss ff where the top two bits of ff carry the frame rate
// (01 = 25 fps, 11 = 30 fps). Digits are not validated, some authoring tools write garbage here.
func decodePlaybackTime(r region, off int) PlaybackTime {
	pt := PlaybackTime{
		Hours:   bcd(r.u8(off)),
		Minutes: bcd(r.u8(off + 1)),
		Seconds: bcd(r.u8(off + 2)),
		Frames:  bcd(r.u8(off+3) & 0x3f),
	}
	switch r.u8(off+3) >> 6 {
	case 1:
		pt.FrameRate = 25
	case 3:
		pt.FrameRate = 30
	}
	return pt
}

// Duration converts the time into a time.Duration, frames included when the frame rate is known.
func (pt PlaybackTime) Duration() time.Duration {
	d := time.Duration(pt.Hours)*time.Hour +
		time.Duration(pt.Minutes)*time.Minute +
		time.Duration(pt.Seconds)*time.Second
	if pt.FrameRate != 0 {
		d += time.Duration(pt.Frames) * time.Second / time.Duration(pt.FrameRate)
	}
	return d
}

func (pt PlaybackTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%02d", pt.Hours, pt.Minutes, pt.Seconds, pt.Frames)
}
