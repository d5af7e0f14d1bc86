package ifo

import (
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// VideoAttributes is the 2-byte video attribute word of a VMG or VTS domain.
type VideoAttributes struct {
	// MPEGVersion is 0 for MPEG-1, 1 for MPEG-2.
	MPEGVersion uint8 `yaml:"mpeg_version"`
	// Standard is 0 for NTSC, 1 for PAL.
	Standard uint8 `yaml:"standard"`
	// AspectRatio is 0 for 4:3, 3 for 16:9.
	AspectRatio uint8 `yaml:"aspect_ratio"`
	// PermittedDisplay holds the pan-scan/letterbox permission bits.
	PermittedDisplay uint8 `yaml:"permitted_display"`
	// PictureSize is 0 for 720 lines wide, 1 for 704, 2 for 352, 3 for 352 at half height.
	PictureSize uint8 `yaml:"picture_size"`
	Letterboxed bool  `yaml:"letterboxed"`
	FilmMode    bool  `yaml:"film_mode"`
}

func decodeVideoAttributes(r region, off int) VideoAttributes {
	b0, b1 := r.u8(off), r.u8(off+1)
	return VideoAttributes{
		MPEGVersion:      b0 >> 6,
		Standard:         (b0 >> 4) & 0x03,
		AspectRatio:      (b0 >> 2) & 0x03,
		PermittedDisplay: b0 & 0x03,
		PictureSize:      (b1 >> 2) & 0x03,
		Letterboxed:      b1&0x02 != 0,
		FilmMode:         b1&0x01 != 0,
	}
}

// Wide reports a 16:9 display aspect ratio.
func (v VideoAttributes) Wide() bool {
	return v.AspectRatio == 3
}

// Audio coding modes, top three bits of the first attribute byte.
const (
	AudioAC3   = 0
	AudioMPEG1 = 2
	AudioMPEG2 = 3
	AudioLPCM  = 4
	AudioDTS   = 6
)

// AudioAttributes is one 8-byte audio stream attribute entry.
type AudioAttributes struct {
	Coding          uint8  `yaml:"coding"`
	MultichannelExt bool   `yaml:"multichannel_ext"`
	LanguageType    uint8  `yaml:"language_type"`
	ApplicationMode uint8  `yaml:"application_mode"`
	Quantization    uint8  `yaml:"quantization"`
	SampleRate      uint32 `yaml:"sample_rate"`
	Channels        uint8  `yaml:"channels"`
	Language        string `yaml:"language"`
	LanguageExt     uint8  `yaml:"language_ext"`
	CodeExtension   uint8  `yaml:"code_extension"`
}

func decodeAudioAttributes(r region, off int) AudioAttributes {
	b0, b1 := r.u8(off), r.u8(off+1)
	a := AudioAttributes{
		Coding:          b0 >> 5,
		MultichannelExt: b0&0x10 != 0,
		LanguageType:    (b0 >> 2) & 0x03,
		ApplicationMode: b0 & 0x03,
		Quantization:    b1 >> 6,
		SampleRate:      48000,
		Channels:        b1&0x07 + 1,
		LanguageExt:     r.u8(off + 4),
		CodeExtension:   r.u8(off + 5),
	}
	if (b1>>4)&0x03 == 1 {
		a.SampleRate = 96000
	}
	if a.LanguageType == 1 {
		a.Language = languageCode(r, off+2)
	}
	return a
}

// CodingName names the coding mode the way stream labels show it.
func (a AudioAttributes) CodingName() string {
	switch a.Coding {
	case AudioAC3:
		return "ac3"
	case AudioMPEG1, AudioMPEG2:
		return "mpeg"
	case AudioLPCM:
		return "lpcm"
	case AudioDTS:
		return "dts"
	default:
		return "unknown"
	}
}

// SubpictureAttributes is one 6-byte sub-picture stream attribute entry.
type SubpictureAttributes struct {
	CodingMode    uint8  `yaml:"coding_mode"`
	LanguageType  uint8  `yaml:"language_type"`
	Language      string `yaml:"language"`
	LanguageExt   uint8  `yaml:"language_ext"`
	CodeExtension uint8  `yaml:"code_extension"`
}

func decodeSubpictureAttributes(r region, off int) SubpictureAttributes {
	s := SubpictureAttributes{
		CodingMode:    r.u8(off) >> 5,
		LanguageType:  r.u8(off) & 0x03,
		LanguageExt:   r.u8(off + 4),
		CodeExtension: r.u8(off + 5),
	}
	if s.LanguageType == 1 {
		s.Language = languageCode(r, off+2)
	}
	return s
}

// languageCode reads a two letter ISO 639 code. Zero bytes mean no language.
func languageCode(r region, off int) string {
	if r.u8(off) == 0 || r.u8(off+1) == 0 {
		return ""
	}
	return string([]byte{r.u8(off), r.u8(off + 1)})
}

// LanguageName turns an ISO 639 code from an attribute table into an English display name.
// Codes x/text does not know are returned unchanged.
func LanguageName(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// streamAttributes holds the attribute block shared by the VMGI_MAT and VTSI_MAT layouts: a video word,
// an audio count with up to eight entries and a sub-picture count with maxSubpictures entries.
type streamAttributes struct {
	Video      VideoAttributes
	Audio      []AudioAttributes
	Subpicture []SubpictureAttributes
}

// decodeStreamAttributes decodes the block starting at off (0x100 for menus, 0x200 for VTS titles).
func decodeStreamAttributes(r region, off int, maxSubpictures int) streamAttributes {
	sa := streamAttributes{Video: decodeVideoAttributes(r, off)}

	audioCount := int(r.u16(off + 2))
	if audioCount > consts.MAX_AUDIO_STREAMS {
		audioCount = consts.MAX_AUDIO_STREAMS
	}
	for i := 0; i < audioCount; i++ {
		sa.Audio = append(sa.Audio, decodeAudioAttributes(r, off+4+i*consts.AUDIO_ATTRIBUTES_SIZE))
	}

	subpCount := int(r.u16(off + 0x54))
	if subpCount > maxSubpictures {
		subpCount = maxSubpictures
	}
	for i := 0; i < subpCount; i++ {
		sa.Subpicture = append(sa.Subpicture, decodeSubpictureAttributes(r, off+0x56+i*consts.SUBPICTURE_ATTRS_SIZE))
	}
	return sa
}
