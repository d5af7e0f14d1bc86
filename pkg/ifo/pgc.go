package ifo

import (
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
)

// PGC is a decoded Program Chain.
type PGC struct {
	// ProgramCount is the number of programs. Each program is a chapter candidate.
	ProgramCount uint8
	// CellCount is the number of cells in the chain.
	CellCount uint8
	// PlaybackTime is the total playback time of the chain.
	PlaybackTime PlaybackTime
	// ProhibitedOps is the user operation mask.
	ProhibitedOps uint32
	// AudioControl maps logical audio streams to physical ones. Bit 15 marks the stream available,
	// bits 8-14 hold the physical stream number.
	AudioControl [consts.MAX_AUDIO_STREAMS]uint16
	// SubpictureControl maps logical sub-picture streams, bit 31 marks availability and the four bytes
	// carry the physical stream for 4:3, wide, letterbox and pan-scan display.
	SubpictureControl [consts.MAX_SUBPICTURE_STREAMS]uint32
	NextPGC           uint16
	PrevPGC           uint16
	GoUpPGC           uint16
	StillTime         uint8
	PlaybackMode      uint8
	Palette           [consts.PALETTE_ENTRIES]uint32
	// Commands is nil when the chain has no command table.
	Commands *CommandTable
	// ProgramMap holds the 1-based entry cell of every program.
	ProgramMap []uint8
	// CellPlayback describes the logical sector range of every cell.
	CellPlayback []CellPlayback
	// CellPosition links every cell to its physical VOB/cell id pair.
	CellPosition []CellPosition
}

// CellPlayback is one 24-byte cell playback entry.
type CellPlayback struct {
	// Category is the raw 16-bit category word. The top nibble carries the angle block bits.
	Category            uint16
	StillTime           uint8
	CommandNumber       uint8
	PlaybackTime        PlaybackTime
	FirstSector         uint32
	FirstILVUEndSector  uint32
	LastVOBUStartSector uint32
	LastSector          uint32
}

// CellPosition is one 4-byte cell position entry.
type CellPosition struct {
	VOBID  uint16
	CellID uint8
}

// decodePGC decodes the chain whose header starts at off. Sub-table offsets inside the header are
// relative to the chain itself.
func decodePGC(r region, off uint64) (*PGC, error) {
	h, err := r.sub(off, consts.PGC_HEADER_SIZE)
	if err != nil {
		return nil, err
	}

	pgc := &PGC{
		ProgramCount:  h.u8(0x02),
		CellCount:     h.u8(0x03),
		PlaybackTime:  decodePlaybackTime(h, 0x04),
		ProhibitedOps: h.u32(0x08),
		NextPGC:       h.u16(0x9c),
		PrevPGC:       h.u16(0x9e),
		GoUpPGC:       h.u16(0xa0),
		StillTime:     h.u8(0xa2),
		PlaybackMode:  h.u8(0xa3),
	}
	for i := range pgc.AudioControl {
		pgc.AudioControl[i] = h.u16(0x0c + i*2)
	}
	for i := range pgc.SubpictureControl {
		pgc.SubpictureControl[i] = h.u32(0x1c + i*4)
	}
	for i := range pgc.Palette {
		pgc.Palette[i] = h.u32(0xa4 + i*4)
	}

	commandOff := uint64(h.u16(0xe4))
	programOff := uint64(h.u16(0xe6))
	playbackOff := uint64(h.u16(0xe8))
	positionOff := uint64(h.u16(0xea))

	if commandOff != 0 {
		if pgc.Commands, err = decodeCommandTable(r, off+commandOff); err != nil {
			return nil, err
		}
	}

	if pgc.ProgramCount > 0 {
		if programOff == 0 {
			return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "%d programs without a program map", pgc.ProgramCount)
		}
		pm, err := r.sub(off+programOff, uint64(pgc.ProgramCount))
		if err != nil {
			return nil, err
		}
		pgc.ProgramMap = pm.bytes(0, int(pgc.ProgramCount))
	}

	if pgc.CellCount > 0 {
		if playbackOff == 0 || positionOff == 0 {
			return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "%d cells without playback or position table", pgc.CellCount)
		}
		n := int(pgc.CellCount)
		cp, err := r.sub(off+playbackOff, uint64(n*consts.CELL_PLAYBACK_SIZE))
		if err != nil {
			return nil, err
		}
		pos, err := r.sub(off+positionOff, uint64(n*consts.CELL_POSITION_SIZE))
		if err != nil {
			return nil, err
		}
		pgc.CellPlayback = make([]CellPlayback, n)
		pgc.CellPosition = make([]CellPosition, n)
		for i := 0; i < n; i++ {
			b := i * consts.CELL_PLAYBACK_SIZE
			pgc.CellPlayback[i] = CellPlayback{
				Category:            cp.u16(b),
				StillTime:           cp.u8(b + 2),
				CommandNumber:       cp.u8(b + 3),
				PlaybackTime:        decodePlaybackTime(cp, b+4),
				FirstSector:         cp.u32(b + 8),
				FirstILVUEndSector:  cp.u32(b + 12),
				LastVOBUStartSector: cp.u32(b + 16),
				LastSector:          cp.u32(b + 20),
			}
			p := i * consts.CELL_POSITION_SIZE
			pgc.CellPosition[i] = CellPosition{VOBID: pos.u16(p), CellID: pos.u8(p + 3)}
		}
	}
	return pgc, nil
}
