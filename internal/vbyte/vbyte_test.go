package vbyte

import (
	"reflect"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]int{
		nil,
		{0},
		{5},
		{0, 1, 2, 3},
		{10, 20, 300, 301, 302, 100000},
		{128, 256, 16384, 2097152},
	}
	for _, positions := range cases {
		blob := EncodePositions(positions)
		got := DecodePositions(blob)
		if len(positions) == 0 {
			if len(got) != 0 {
				t.Fatalf("DecodePositions(empty) = %v, want empty", got)
			}
			continue
		}
		if !reflect.DeepEqual(got, positions) {
			t.Fatalf("round trip mismatch: got %v, want %v", got, positions)
		}
	}
}

func TestEncodeIsDeltaCoded(t *testing.T) {
	// The first value (1000 >= 128) takes two bytes; the second is stored as
	// its delta of 1, one byte. Encoding both values raw would take four.
	blob := EncodePositions([]int{1000, 1001})
	if len(blob) != 3 {
		t.Fatalf("expected 3-byte encoding (2 for 1000, 1 for delta 1), got %d bytes", len(blob))
	}
}
