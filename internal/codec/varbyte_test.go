package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeKnownValues(t *testing.T) {
	cases := []struct {
		n    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}
	for _, c := range cases {
		got := Encode(c.n, nil)
		require.Equal(t, c.want, got)
	}
}

func TestRoundTripSingle(t *testing.T) {
	for _, n := range []uint32{0, 1, 126, 127, 128, 300, 16383, 16384, 1 << 20, 1<<30 - 1} {
		buf := Encode(n, nil)
		pos := 0
		got, err := Decode(buf, &pos)
		require.NoError(t, err)
		require.Equal(t, n, got)
		require.Equal(t, len(buf), pos)
	}
}

func TestRoundTripList(t *testing.T) {
	ns := []uint32{0, 1, 2, 127, 128, 999999, 1 << 29}
	buf := EncodeList(ns)
	got, err := DecodeList(buf)
	require.NoError(t, err)
	require.Equal(t, ns, got)
}

func TestDecodeTruncated(t *testing.T) {
	buf := []byte{0x80, 0x80} // continuation set on both, no terminator
	pos := 0
	_, err := Decode(buf, &pos)
	require.ErrorAs(t, err, &TruncatedError{})
}

func TestDecodeOverflow(t *testing.T) {
	buf := make([]byte, 0, 6)
	for i := 0; i < 5; i++ {
		buf = append(buf, 0x80)
	}
	buf = append(buf, 0x01)
	pos := 0
	_, err := Decode(buf, &pos)
	require.ErrorAs(t, err, &OverflowError{})
}

func TestGapRoundTrip(t *testing.T) {
	docIDs := []uint32{3, 7, 9, 100, 101, 50000}
	buf := EncodeGaps(docIDs)
	got, err := DecodeGaps(buf, len(docIDs))
	require.NoError(t, err)
	require.Equal(t, docIDs, got)
}
