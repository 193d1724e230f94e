package stream

import (
	"bytes"
	"testing"
)

const testSeedHex = "9e3779b97f4a7c15f39cc0605cedc8341082276bf3a27251f86c6a11d0c18e95"

func mustRead(t *testing.T, offset, length uint64) []byte {
	t.Helper()
	b, err := ReadSegment(testSeedHex, offset, length)
	if err != nil {
		t.Fatalf("ReadSegment(%d, %d): %v", offset, length, err)
	}
	return b
}

func TestGenerator_Deterministic(t *testing.T) {
	a, err := NewGenerator(testSeedHex)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	b, err := NewGenerator(testSeedHex)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	for i := 0; i < 64; i++ {
		if !bytes.Equal(a.Next(), b.Next()) {
			t.Fatalf("chunk %d differs between two generators with the same seed", i)
		}
	}
}

func TestGenerator_ChunkSize(t *testing.T) {
	g, err := NewGenerator(testSeedHex)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if got := len(g.Next()); got != ChunkSize {
		t.Fatalf("chunk length = %d, want %d", got, ChunkSize)
	}
}

func TestGenerator_DifferentSeedsDiverge(t *testing.T) {
	a, err := NewGenerator(testSeedHex)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	b, err := NewGenerator("243f6a8885a308d313198a2e03707344a4093822299f31d0082efa98ec4e6c89")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if bytes.Equal(a.Next(), b.Next()) {
		t.Fatalf("different seeds produced an identical first chunk")
	}
}

func TestGenerator_SkipMatchesSequentialReads(t *testing.T) {
	sequential, err := NewGenerator(testSeedHex)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	for i := 0; i < 10; i++ {
		sequential.Next()
	}
	want := sequential.Next()

	skipped, err := NewGenerator(testSeedHex)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	skipped.Skip(10)
	if got := skipped.Next(); !bytes.Equal(got, want) {
		t.Fatalf("Skip(10) then Next differs from eleven sequential Nexts")
	}
}

func TestNewGenerator_RejectsBadSeeds(t *testing.T) {
	for _, seedHex := range []string{"", "zz", "abc"} {
		if _, err := NewGenerator(seedHex); err == nil {
			t.Fatalf("NewGenerator(%q): expected error", seedHex)
		}
	}
}

func TestReadSegment_ZeroLength(t *testing.T) {
	got := mustRead(t, 12345, 0)
	if len(got) != 0 {
		t.Fatalf("zero-length read returned %d bytes", len(got))
	}
}

func TestReadSegment_ExactLength(t *testing.T) {
	for _, length := range []uint64{1, 15, 16, 17, 100, 1000} {
		if got := mustRead(t, 0, length); uint64(len(got)) != length {
			t.Fatalf("ReadSegment(0, %d) returned %d bytes", length, len(got))
		}
	}
}

func TestReadSegment_Composition(t *testing.T) {
	// read(a, b+c) == read(a, b) ++ read(a+b, c) for assorted split points,
	// including splits inside chunks and on chunk boundaries.
	cases := []struct{ a, b, c uint64 }{
		{0, 64, 64},
		{0, 1, 127},
		{7, 9, 33},
		{100, 50, 50},
		{16, 16, 16},
		{3, 0, 40},
		{250, 13, 0},
	}
	for _, tc := range cases {
		whole := mustRead(t, tc.a, tc.b+tc.c)
		left := mustRead(t, tc.a, tc.b)
		right := mustRead(t, tc.a+tc.b, tc.c)
		if !bytes.Equal(whole, append(append([]byte(nil), left...), right...)) {
			t.Fatalf("composition violated for a=%d b=%d c=%d", tc.a, tc.b, tc.c)
		}
	}
}

func TestReadSegment_SubsliceOfLargerRead(t *testing.T) {
	full := mustRead(t, 0, 256)
	segment := mustRead(t, 100, 50)
	if !bytes.Equal(segment, full[100:150]) {
		t.Fatalf("ReadSegment(100, 50) does not match the slice of ReadSegment(0, 256)")
	}
}
