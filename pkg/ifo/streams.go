package ifo

// StreamKind separates audio from sub-picture streams.
type StreamKind int

const (
	StreamAudio StreamKind = iota
	StreamSubpicture
)

// Program stream id of DVD private streams. Sub-stream ids ride in the first payload byte.
const privateStream1 = 0xbd

// Stream labels one elementary stream that a PGC makes available.
type Stream struct {
	Kind StreamKind
	// Logical is the 1-based stream number as the menus present it.
	Logical int
	// ID is the demux key: for MPEG audio the PES stream id, for private streams
	// (sub-stream id << 8) | 0xbd.
	ID       uint16
	Coding   string
	Language string
}

// Streams lists the elementary streams available in pgc, labelled with the title set attributes.
// Streams whose control word is not marked available are skipped.
func (pgc *PGC) Streams(video VideoAttributes, audio []AudioAttributes, subpicture []SubpictureAttributes) []Stream {
	var streams []Stream
	for i, attr := range audio {
		if i >= len(pgc.AudioControl) {
			break
		}
		control := pgc.AudioControl[i]
		if control&0x8000 == 0 {
			continue
		}
		position := uint16(control&0x7f00) >> 8

		var id uint16
		switch attr.Coding {
		case AudioAC3:
			id = (0x80+position)<<8 | privateStream1
		case AudioMPEG1, AudioMPEG2:
			id = 0xc0 + position
		case AudioLPCM:
			id = (0xa0+position)<<8 | privateStream1
		case AudioDTS:
			id = (0x88+position)<<8 | privateStream1
		default:
			continue
		}
		streams = append(streams, Stream{
			Kind:     StreamAudio,
			Logical:  i + 1,
			ID:       id,
			Coding:   attr.CodingName(),
			Language: attr.Language,
		})
	}

	for i, attr := range subpicture {
		if i >= len(pgc.SubpictureControl) {
			break
		}
		control := pgc.SubpictureControl[i]
		if control&0x80000000 == 0 {
			continue
		}
		var position uint32
		if video.Wide() {
			switch video.PermittedDisplay {
			case 1:
				position = control & 0xff
			case 2:
				position = (control >> 8) & 0xff
			default:
				position = (control >> 16) & 0xff
			}
		} else {
			position = (control >> 24) & 0x7f
		}
		streams = append(streams, Stream{
			Kind:     StreamSubpicture,
			Logical:  i + 1,
			ID:       uint16(0x20+position)<<8 | privateStream1,
			Coding:   "spu",
			Language: attr.Language,
		})
	}
	return streams
}
