package encoding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBothByteOrders(t *testing.T) {
	t.Run("uint32", func(t *testing.T) {
		v, err := UnmarshalUint32LSBMSB([]byte{0x78, 0x56, 0x34, 0x12, 0x12, 0x34, 0x56, 0x78})
		require.NoError(t, err)
		require.Equal(t, uint32(0x12345678), v)
	})

	t.Run("uint16", func(t *testing.T) {
		v, err := UnmarshalUint16LSBMSB([]byte{0x34, 0x12, 0x12, 0x34})
		require.NoError(t, err)
		require.Equal(t, uint16(0x1234), v)
	})

	t.Run("mismatch", func(t *testing.T) {
		_, err := UnmarshalUint32LSBMSB([]byte{1, 0, 0, 0, 0, 0, 0, 2})
		require.Error(t, err)
		_, err = UnmarshalUint16LSBMSB([]byte{1, 0, 0, 2})
		require.Error(t, err)
	})

	t.Run("short", func(t *testing.T) {
		_, err := UnmarshalUint32LSBMSB([]byte{1, 0, 0, 0})
		require.Error(t, err)
		_, err = UnmarshalUint16LSBMSB([]byte{1})
		require.Error(t, err)
	})
}

func TestUnmarshalDateTime(t *testing.T) {
	t.Run("unspecified", func(t *testing.T) {
		b := []byte("0000000000000000\x00")
		tm, err := UnmarshalDateTime(b)
		require.NoError(t, err)
		require.True(t, tm.IsZero())
	})

	t.Run("utc", func(t *testing.T) {
		tm, err := UnmarshalDateTime([]byte("2023060112000050\x00"))
		require.NoError(t, err)
		require.Equal(t, time.Date(2023, 6, 1, 12, 0, 0, 500_000_000, time.UTC), tm)
	})

	t.Run("offset", func(t *testing.T) {
		tm, err := UnmarshalDateTime([]byte("2023123123593037\x0c"))
		require.NoError(t, err)
		_, offset := tm.Zone()
		require.Equal(t, 3*3600, offset)
		require.Equal(t, 37, tm.Nanosecond()/10_000_000)
	})

	t.Run("offset out of range", func(t *testing.T) {
		_, err := UnmarshalDateTime([]byte("2023010100000000\x35"))
		require.Error(t, err)
	})
}

func TestUnmarshalRecordingDateTime(t *testing.T) {
	require.True(t, UnmarshalRecordingDateTime(make([]byte, 7)).IsZero())

	tm := UnmarshalRecordingDateTime([]byte{124, 2, 29, 13, 45, 10, 0xfc})
	require.Equal(t, 2024, tm.Year())
	require.Equal(t, time.February, tm.Month())
	require.Equal(t, 29, tm.Day())
	require.Equal(t, 13, tm.Hour())
	_, offset := tm.Zone()
	require.Equal(t, -3600, offset)
}
