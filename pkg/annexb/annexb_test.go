package annexb

import (
	"testing"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/stretchr/testify/require"
)

func unitBytes(units []Unit) [][]byte {
	out := make([][]byte, len(units))
	for i, u := range units {
		out[i] = u.Data
	}
	return out
}

func TestSplit(t *testing.T) {
	for _, ca := range []struct {
		name  string
		in    []byte
		units [][]byte
	}{
		{
			"empty",
			nil,
			[][]byte{},
		},
		{
			"no start code",
			[]byte{0xAA, 0x00, 0x00, 0x02, 0x00, 0x01, 0xBB},
			[][]byte{},
		},
		{
			"single zero before one",
			[]byte{0x00, 0x01, 0xAA, 0x00, 0x01},
			[][]byte{},
		},
		{
			"two units",
			[]byte{0x00, 0x00, 0x01, 0xAA, 0x00, 0x00, 0x01, 0xBB, 0xBB},
			[][]byte{
				{0x00, 0x00, 0x01, 0xAA},
				{0x00, 0x00, 0x01, 0xBB, 0xBB},
			},
		},
		{
			"four byte prefix",
			[]byte{0x00, 0x00, 0x00, 0x01, 0xAA},
			[][]byte{
				{0x00, 0x00, 0x00, 0x01, 0xAA},
			},
		},
		{
			"four byte prefix between units",
			[]byte{0x00, 0x00, 0x00, 0x01, 0xAA, 0x00, 0x00, 0x00, 0x01, 0xBB},
			[][]byte{
				{0x00, 0x00, 0x00, 0x01, 0xAA},
				{0x00, 0x00, 0x00, 0x01, 0xBB},
			},
		},
		{
			"leading garbage is skipped",
			[]byte{0xFF, 0xEE, 0x00, 0x00, 0x01, 0x09, 0xF0},
			[][]byte{
				{0x00, 0x00, 0x01, 0x09, 0xF0},
			},
		},
		{
			"trailing zeros stay in the last unit",
			[]byte{0x00, 0x00, 0x01, 0x65, 0x88, 0x00, 0x00, 0x00},
			[][]byte{
				{0x00, 0x00, 0x01, 0x65, 0x88, 0x00, 0x00, 0x00},
			},
		},
		{
			"empty payload",
			[]byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x01},
			[][]byte{
				{0x00, 0x00, 0x01},
				{0x00, 0x00, 0x01},
			},
		},
		{
			"emulation prevention is not a start code",
			[]byte{0x00, 0x00, 0x01, 0x67, 0x00, 0x00, 0x03, 0x01, 0x42},
			[][]byte{
				{0x00, 0x00, 0x01, 0x67, 0x00, 0x00, 0x03, 0x01, 0x42},
			},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			require.Equal(t, ca.units, unitBytes(Split(ca.in)))
		})
	}
}

func TestSplitSingleStartCode(t *testing.T) {
	for n := 0; n < 64; n++ {
		stream := []byte{0x00, 0x00, 0x01}
		for i := 0; i < n; i++ {
			stream = append(stream, byte(0x80|i))
		}

		units := Split(stream)
		require.Len(t, units, 1)
		require.Equal(t, 0, units[0].Offset)
		require.Equal(t, len(stream), units[0].End())
	}
}

func TestSplitCoversStream(t *testing.T) {
	stream := []byte{
		0x12, 0x34,
		0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0xC0, 0x1E,
		0x00, 0x00, 0x01, 0x68, 0xCE,
		0x00, 0x00, 0x00, 0x00, 0x01, 0x65, 0x88, 0x84,
		0x00, 0x00, 0x01, 0x41, 0x9A,
	}

	units := Split(stream)
	require.Len(t, units, 4)
	require.Equal(t, 2, units[0].Offset)

	for i := 1; i < len(units); i++ {
		require.Equal(t, units[i-1].End(), units[i].Offset)
	}
	require.Equal(t, len(stream), units[len(units)-1].End())
}

func TestUnitsRestartable(t *testing.T) {
	stream := []byte{0x00, 0x00, 0x01, 0xAA, 0x00, 0x00, 0x01, 0xBB}
	seq := Units(stream)

	var first, second []Unit
	for u := range seq {
		first = append(first, u)
	}
	for u := range seq {
		second = append(second, u)
	}
	require.Equal(t, first, second)
	require.Len(t, first, 2)
}

func TestUnitsEarlyBreak(t *testing.T) {
	stream := []byte{0x00, 0x00, 0x01, 0xAA, 0x00, 0x00, 0x01, 0xBB, 0x00, 0x00, 0x01, 0xCC}

	count := 0
	for range Units(stream) {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)
}

func TestScannerReset(t *testing.T) {
	s := NewScanner([]byte{0x00, 0x00, 0x01, 0xAA, 0x00, 0x00, 0x01, 0xBB})

	u, ok := s.Next()
	require.True(t, ok)
	require.Equal(t, 0, u.Offset)

	u, ok = s.Next()
	require.True(t, ok)
	require.Equal(t, 4, u.Offset)

	_, ok = s.Next()
	require.False(t, ok)
	_, ok = s.Next()
	require.False(t, ok)

	s.Reset()
	u, ok = s.Next()
	require.True(t, ok)
	require.Equal(t, 0, u.Offset)
}

func TestUnitDoesNotAliasNext(t *testing.T) {
	stream := []byte{0x00, 0x00, 0x01, 0xAA, 0x00, 0x00, 0x01, 0xBB}
	units := Split(stream)
	require.Len(t, units, 2)

	grown := append(units[0].Data, 0xFF)
	require.Equal(t, byte(0x00), stream[4])
	require.Equal(t, byte(0xFF), grown[4])
}

func TestUnitHeader(t *testing.T) {
	units := Split([]byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0x42,
		0x00, 0x00, 0x01, 0x68, 0xCE,
		0x00, 0x00, 0x01, 0x65, 0x88,
		0x00, 0x00, 0x01, 0x41, 0x9A,
		0x00, 0x00, 0x01,
	})
	require.Len(t, units, 5)

	require.Equal(t, 4, units[0].PrefixLen())
	require.Equal(t, []byte{0x67, 0x42}, units[0].Payload())
	require.Equal(t, h264.NALUTypeSPS, units[0].Type())
	require.True(t, units[0].IsParameterSet())
	require.False(t, units[0].IsVCL())

	require.Equal(t, 3, units[1].PrefixLen())
	require.Equal(t, h264.NALUTypePPS, units[1].Type())
	require.True(t, units[1].IsParameterSet())

	require.Equal(t, h264.NALUTypeIDR, units[2].Type())
	require.True(t, units[2].IsVCL())

	require.Equal(t, h264.NALUTypeNonIDR, units[3].Type())
	require.True(t, units[3].IsVCL())

	require.Empty(t, units[4].Payload())
	require.Equal(t, h264.NALUType(0), units[4].Type())
}

func TestSplitMatchesMediacommon(t *testing.T) {
	stream := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0xC0, 0x1E, 0xD9,
		0x00, 0x00, 0x00, 0x01, 0x68, 0xCE, 0x3C, 0x80,
		0x00, 0x00, 0x00, 0x01, 0x65, 0x88, 0x84, 0x21, 0xA0,
	}

	var au h264.AnnexB
	require.NoError(t, au.Unmarshal(stream))

	units := Split(stream)
	require.Len(t, units, len(au))
	for i, u := range units {
		require.Equal(t, au[i], u.Payload())
	}
}

func BenchmarkSplit(b *testing.B) {
	stream := make([]byte, 0, 1<<20)
	for len(stream) < 1<<20-16 {
		stream = append(stream, 0x00, 0x00, 0x00, 0x01, 0x41)
		for i := 0; i < 1000; i++ {
			stream = append(stream, byte(0x10+i%200))
		}
	}
	b.SetBytes(int64(len(stream)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for range Units(stream) {
		}
	}
}
