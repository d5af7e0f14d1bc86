package ifo

import (
	"encoding/binary"
	"testing"

	"github.com/bgrewell/dvd-kit/internal/fixture"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/stretchr/testify/require"
)

func TestDecodeVMG(t *testing.T) {
	vmg, err := DecodeVMG(fixture.BuildVMG(fixture.SampleVMG()))
	require.NoError(t, err)

	t.Run("identity", func(t *testing.T) {
		require.Equal(t, "DVDVIDEO-VMG", vmg.Identifier)
		require.Equal(t, "DVD-KIT FIXTURE", vmg.ProviderID)
		require.Equal(t, uint16(2), vmg.TitleSetCount)
		require.Equal(t, uint8(0x11), vmg.Version)
		require.Equal(t, uint8(0xfe), vmg.RegionMask())
		require.Equal(t, uint16(1), vmg.VolumeCount)
	})

	t.Run("title table", func(t *testing.T) {
		require.Len(t, vmg.Titles, 3)
		require.Equal(t, TitleEntry{
			PlaybackType:   0x3c,
			AngleCount:     2,
			ChapterCount:   3,
			TitleSet:       1,
			TitleSetTitle:  1,
			TitleSetSector: 1024,
		}, vmg.Titles[0])
		require.Equal(t, uint8(2), vmg.Titles[2].TitleSet)
		require.Equal(t, uint16(2), vmg.Titles[1].ChapterCount)
	})

	t.Run("first play", func(t *testing.T) {
		require.NotNil(t, vmg.FirstPlay)
		require.Len(t, vmg.FirstPlay.Commands.Pre, 2)
		require.Zero(t, vmg.FirstPlay.CellCount)
	})

	t.Run("parental table", func(t *testing.T) {
		require.NotNil(t, vmg.Parental)
		require.Equal(t, uint16(2), vmg.Parental.TitleSetCount)
		require.Len(t, vmg.Parental.Countries, 1)
		us := vmg.Parental.Countries[0]
		require.Equal(t, "US", us.Code)
		require.Equal(t, []uint16{0, 1, 1}, us.Masks[0])
		require.Equal(t, []uint16{0, 1, 1}, us.Masks[1])
		require.Equal(t, []uint16{0, 0, 0}, us.Masks[7])
	})
}

func TestDecodeVMGErrors(t *testing.T) {
	valid := fixture.BuildVMG(fixture.SampleVMG())

	t.Run("bad identifier", func(t *testing.T) {
		data := append([]byte{}, valid...)
		copy(data, "DVDVIDEO-VTS")
		_, err := DecodeVMG(data)
		require.ErrorIs(t, err, dvderr.ErrFormat)
	})

	t.Run("empty buffer", func(t *testing.T) {
		_, err := DecodeVMG(nil)
		require.ErrorIs(t, err, dvderr.ErrTruncatedData)
	})

	t.Run("no title table", func(t *testing.T) {
		data := append([]byte{}, valid...)
		binary.BigEndian.PutUint32(data[0xc4:], 0)
		_, err := DecodeVMG(data)
		require.ErrorIs(t, err, dvderr.ErrFormat)
	})

	t.Run("title count past the end", func(t *testing.T) {
		data := append([]byte{}, valid...)
		tt := binary.BigEndian.Uint32(data[0xc4:]) * 2048
		binary.BigEndian.PutUint16(data[tt:], 200)
		_, err := DecodeVMG(data)
		require.ErrorIs(t, err, dvderr.ErrTruncatedData)
	})

	t.Run("broken parental table is dropped", func(t *testing.T) {
		data := append([]byte{}, valid...)
		binary.BigEndian.PutUint32(data[0xcc:], 0x7fff)
		vmg, err := DecodeVMG(data)
		require.NoError(t, err)
		require.Nil(t, vmg.Parental)
		require.Len(t, vmg.Titles, 3)
	})
}
