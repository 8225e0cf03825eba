package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecToBCD(t *testing.T) {
	tests := []struct {
		in   uint32
		want uint32
	}{
		{0, 0x0},
		{7, 0x7},
		{10, 0x10},
		{7000, 0x7000},
		{11800, 0x11800},
		{17410, 0x17410},
		{99999999, 0x99999999},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, DecToBCD(tt.in), "DecToBCD(%d)", tt.in)
	}
}

func TestBCDRoundTrip(t *testing.T) {
	samples := []uint32{0, 1, 9, 10, 99, 100, 1234, 7000, 11800, 17410, 1000000, 12345678, 99999999}
	for n := uint32(0); n < 20000; n += 7 {
		samples = append(samples, n)
	}

	for _, n := range samples {
		require.Equalf(t, n, BCDToDec(DecToBCD(n)), "round trip of %d", n)
	}
}

func TestEncodeBCDFrequency(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want uint32
	}{
		{"two fractional digits", "118.00", DecToBCD(11800)},
		{"one fractional digit", "174.1", DecToBCD(17410)},
		{"no fractional digits", "121", DecToBCD(12100)},
		{"extra digits truncate", "118.005", DecToBCD(11800)},
		{"surrounding whitespace", "  122.80 ", DecToBCD(12280)},
		{"blank is zero", "", 0},
		{"adf frequency", "350.5", DecToBCD(35050)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeBCDFrequency(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeBCDInteger(t *testing.T) {
	got, err := EncodeBCDInteger("7000")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x7000), got)

	got, err = EncodeBCDInteger("1200.9")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1200), got)
}

func TestEncodeAborts(t *testing.T) {
	tests := []struct {
		name    string
		encode  func(string) (uint32, error)
		in      string
		invalid bool
	}{
		{"frequency text", EncodeBCDFrequency, "not-a-number", true},
		{"frequency exponent", EncodeBCDFrequency, "1e2", true},
		{"frequency fraction syntax", EncodeBCDFrequency, "1/2", true},
		{"frequency negative", EncodeBCDFrequency, "-118.0", false},
		{"frequency too many digits", EncodeBCDFrequency, "1000000.00", false},
		{"transponder text", EncodeBCDInteger, "squawk", true},
		{"raw text", EncodeRaw, "abc", true},
		{"raw decimal", EncodeRaw, "1.5", true},
		{"raw overflow", EncodeRaw, "4294967295", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.encode(tt.in)
			require.Error(t, err)
			assert.True(t, IsAbort(err))
			assert.Zero(t, got)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidNumber)
			} else {
				assert.ErrorIs(t, err, ErrOutOfRange)
			}
		})
	}
}

func TestEncodeRaw(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{"   ", 0},
		{"0", 0},
		{"1", 1},
		{"+5", 5},
		{" 3000 ", 3000},
		{"-1", 0xFFFFFFFF},
		{"-500", 0xFFFFFE0C},
		{"2147483647", 0x7FFFFFFF},
		{"-2147483648", 0x80000000},
	}

	for _, tt := range tests {
		got, err := EncodeRaw(tt.in)
		require.NoErrorf(t, err, "EncodeRaw(%q)", tt.in)
		assert.Equalf(t, tt.want, got, "EncodeRaw(%q)", tt.in)
	}
}
