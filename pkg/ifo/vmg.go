package ifo

import (
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/option"
)

// VMG is the decoded Video Manager information file (VIDEO_TS.IFO).
type VMG struct {
	// Identifier is always "DVDVIDEO-VMG".
	Identifier string
	// LastSector is the last sector of the whole VMG set (IFO, menu VOB and backup).
	LastSector uint32
	// IFOLastSector is the last sector of the IFO itself.
	IFOLastSector uint32
	// Version is the specification version, major in the high nibble.
	Version uint8
	// Category carries the region mask in bits 16-23.
	Category     uint32
	VolumeCount  uint16
	VolumeNumber uint16
	DiscSide     uint8
	// TitleSetCount is the number of VTS on the disc.
	TitleSetCount uint16
	ProviderID    string
	POSCode       uint64
	// IFOLastByte is the last byte of the VMGI_MAT.
	IFOLastByte uint32
	// FirstPlayOffset is the byte offset of the first play PGC, 0 when absent.
	FirstPlayOffset uint32
	Pointers        VMGPointers

	MenuVideo      VideoAttributes
	MenuAudio      []AudioAttributes
	MenuSubpicture []SubpictureAttributes

	// Titles is the title search pointer table (TT_SRPT).
	Titles []TitleEntry
	// FirstPlay is the first play PGC, nil when the disc has none or it could not be decoded.
	FirstPlay *PGC
	// Parental is the parental management table, nil when absent or undecodable.
	Parental *ParentalTable
}

// VMGPointers holds the sector pointers of the VMGI_MAT. Zero means the table is absent.
type VMGPointers struct {
	MenuVOB         uint32
	TitleTable      uint32
	MenuPGCIUT      uint32
	Parental        uint32
	TitleSetAttr    uint32
	TextData        uint32
	MenuCellAddress uint32
	MenuVOBUMap     uint32
}

// TitleEntry is one 12-byte TT_SRPT entry.
type TitleEntry struct {
	PlaybackType uint8
	AngleCount   uint8
	ChapterCount uint16
	ParentalMask uint16
	// TitleSet is the owning VTS number.
	TitleSet uint8
	// TitleSetTitle is the title number inside the VTS.
	TitleSetTitle uint8
	// TitleSetSector is the start sector of the VTS on the disc.
	TitleSetSector uint32
}

// RegionMask returns the region lock bits, a set bit forbids playback in that region.
func (v *VMG) RegionMask() uint8 {
	return uint8(v.Category >> 16)
}

// DecodeVMG decodes a VIDEO_TS.IFO (or .BUP) buffer.
func DecodeVMG(data []byte, opts ...option.Option) (*VMG, error) {
	o := option.Apply(opts...)
	log := o.Logger.Named("ifo")

	r := newRegion(data, "ifo.DecodeVMG")
	m, err := r.sub(0, 0x200)
	if err != nil {
		return nil, err
	}
	if id := m.text(0, consts.IFO_IDENTIFIER_SIZE); id != consts.VMG_IDENTIFIER {
		return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "identifier %q", id)
	}

	vmg := &VMG{
		Identifier:      consts.VMG_IDENTIFIER,
		LastSector:      m.u32(0x0c),
		IFOLastSector:   m.u32(0x1c),
		Version:         m.u8(0x21),
		Category:        m.u32(0x22),
		VolumeCount:     m.u16(0x26),
		VolumeNumber:    m.u16(0x28),
		DiscSide:        m.u8(0x2a),
		TitleSetCount:   m.u16(0x3e),
		ProviderID:      m.text(0x40, 32),
		POSCode:         m.u64(0x60),
		IFOLastByte:     m.u32(0x80),
		FirstPlayOffset: m.u32(0x84),
		Pointers: VMGPointers{
			MenuVOB:         m.u32(0xc0),
			TitleTable:      m.u32(0xc4),
			MenuPGCIUT:      m.u32(0xc8),
			Parental:        m.u32(0xcc),
			TitleSetAttr:    m.u32(0xd0),
			TextData:        m.u32(0xd4),
			MenuCellAddress: m.u32(0xd8),
			MenuVOBUMap:     m.u32(0xdc),
		},
	}
	attrs := decodeStreamAttributes(m, 0x100, 1)
	vmg.MenuVideo, vmg.MenuAudio, vmg.MenuSubpicture = attrs.Video, attrs.Audio, attrs.Subpicture

	if vmg.Pointers.TitleTable == 0 {
		return nil, dvderr.Newf(r.op, dvderr.ErrFormat, "no title search pointer table")
	}
	if vmg.Titles, err = decodeTitleTable(r.named("ifo.tt_srpt"), vmg.Pointers.TitleTable); err != nil {
		return nil, err
	}
	log.Debug("decoded video manager", "titles", len(vmg.Titles), "title_sets", vmg.TitleSetCount,
		"provider", vmg.ProviderID)

	if vmg.FirstPlayOffset != 0 {
		fp, err := decodePGC(r.named("ifo.first_play_pgc"), uint64(vmg.FirstPlayOffset))
		if err != nil {
			log.Warn("skipping first play PGC", "error", err)
		} else {
			vmg.FirstPlay = fp
		}
	}

	if vmg.Pointers.Parental != 0 {
		pt, err := decodeParentalTable(r.named("ifo.ptl_mait"), vmg.Pointers.Parental)
		if err != nil {
			log.Warn("skipping parental management table", "error", err)
		} else {
			vmg.Parental = pt
		}
	}
	return vmg, nil
}

func decodeTitleTable(r region, sector uint32) ([]TitleEntry, error) {
	t, hdr, err := r.tableAtSector(sector)
	if err != nil {
		return nil, err
	}
	size, err := arraySize(uint64(hdr.Count), consts.TT_SRPT_ENTRY_SIZE, r.op)
	if err != nil {
		return nil, err
	}
	body, err := t.sub(consts.TABLE_HEADER_SIZE, size)
	if err != nil {
		return nil, err
	}

	titles := make([]TitleEntry, hdr.Count)
	for i := range titles {
		b := i * consts.TT_SRPT_ENTRY_SIZE
		titles[i] = TitleEntry{
			PlaybackType:   body.u8(b),
			AngleCount:     body.u8(b + 1),
			ChapterCount:   body.u16(b + 2),
			ParentalMask:   body.u16(b + 4),
			TitleSet:       body.u8(b + 6),
			TitleSetTitle:  body.u8(b + 7),
			TitleSetSector: body.u32(b + 8),
		}
	}
	return titles, nil
}
