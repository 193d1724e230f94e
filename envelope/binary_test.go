package envelope

import (
	"bytes"
	"testing"

	"goldenseed.dev/gqs/seed"
)

func streamEnvelope() *Envelope {
	return &Envelope{
		Version:  Version,
		SeedID:   seed.DefaultID,
		Offset:   1600,
		Length:   512,
		Checksum: ChecksumOf([]byte("stream data")),
		Payload:  StreamPayload{},
		Metadata: map[string]any{"note": "dropped by binary form"},
	}
}

func deltaEnvelope(t *testing.T) *Envelope {
	t.Helper()
	raw := bytes.Repeat([]byte{0x5a}, 64)
	compressed, err := CompressDelta(raw)
	if err != nil {
		t.Fatalf("CompressDelta: %v", err)
	}
	return &Envelope{
		Version:  Version,
		SeedID:   "pi",
		Offset:   0,
		Length:   64,
		Checksum: ChecksumOf(raw),
		Payload:  DeltaPayload{Raw: raw, Compressed: compressed},
	}
}

func TestBinaryRoundTrip_Stream(t *testing.T) {
	e := streamEnvelope()
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	if !bytes.HasPrefix(b, Magic) {
		t.Fatalf("binary form does not start with the magic bytes")
	}

	got, err := FromBinary(b)
	if err != nil {
		t.Fatalf("FromBinary: %v", err)
	}
	if got.Version != e.Version || got.SeedID != e.SeedID || got.SeedHex != "" {
		t.Fatalf("seed fields differ after round trip: %+v", got)
	}
	if got.Offset != e.Offset || got.Length != e.Length || got.Checksum != e.Checksum {
		t.Fatalf("segment fields differ after round trip: %+v", got)
	}
	if got.Mode() != ModeStream {
		t.Fatalf("mode after round trip = %s, want stream", got.Mode())
	}
}

func TestBinaryRoundTrip_Delta(t *testing.T) {
	e := deltaEnvelope(t)
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	got, err := FromBinary(b)
	if err != nil {
		t.Fatalf("FromBinary: %v", err)
	}
	delta, ok := got.Payload.(DeltaPayload)
	if !ok {
		t.Fatalf("payload after round trip is %T, want DeltaPayload", got.Payload)
	}
	raw, err := DecompressDelta(delta.Compressed)
	if err != nil {
		t.Fatalf("DecompressDelta: %v", err)
	}
	want := e.Payload.(DeltaPayload).Raw
	if !bytes.Equal(raw, want) {
		t.Fatalf("delta bytes differ after round trip")
	}
}

func TestBinaryRoundTrip_Catalog(t *testing.T) {
	e := streamEnvelope()
	e.Payload = CatalogPayload{}
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	got, err := FromBinary(b)
	if err != nil {
		t.Fatalf("FromBinary: %v", err)
	}
	if got.Mode() != ModeCatalog {
		t.Fatalf("mode after round trip = %s, want catalog", got.Mode())
	}
}

func TestBinaryRoundTrip_ExplicitSeed(t *testing.T) {
	e := streamEnvelope()
	e.SeedID = ""
	e.SeedHex = "deadbeefcafe0123"
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	got, err := FromBinary(b)
	if err != nil {
		t.Fatalf("FromBinary: %v", err)
	}
	if got.SeedHex != e.SeedHex {
		t.Fatalf("explicit seed lost by binary form: got %q", got.SeedHex)
	}
	if got.SeedID != "" {
		t.Fatalf("binary form invented a seed id: %q", got.SeedID)
	}
}

func TestBinaryRoundTrip_RawDeltaIsCompressedOnWrite(t *testing.T) {
	e := deltaEnvelope(t)
	e.Payload = DeltaPayload{Raw: bytes.Repeat([]byte{0x5a}, 64)}
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	got, err := FromBinary(b)
	if err != nil {
		t.Fatalf("FromBinary: %v", err)
	}
	raw, err := DecompressDelta(got.Payload.(DeltaPayload).Compressed)
	if err != nil {
		t.Fatalf("DecompressDelta: %v", err)
	}
	if !bytes.Equal(raw, bytes.Repeat([]byte{0x5a}, 64)) {
		t.Fatalf("delta bytes differ after compression on write")
	}
}

func TestFromBinary_InvalidMagic(t *testing.T) {
	e := streamEnvelope()
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	b[0] = 'X'
	if _, err := FromBinary(b); !IsKind(err, KindFormat) {
		t.Fatalf("corrupted magic: got %v, want KindFormat", err)
	}
	if _, err := FromBinary(nil); !IsKind(err, KindFormat) {
		t.Fatalf("empty buffer: got %v, want KindFormat", err)
	}
}

func TestFromBinary_Truncated(t *testing.T) {
	e := deltaEnvelope(t)
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	// Every strict prefix longer than the magic must fail cleanly as a
	// format error, never panic.
	for n := len(Magic); n < len(b); n++ {
		_, err := FromBinary(b[:n])
		if !IsKind(err, KindFormat) {
			t.Fatalf("prefix of %d bytes: got %v, want KindFormat", n, err)
		}
	}
}

func TestFromBinary_UnknownModeTag(t *testing.T) {
	e := streamEnvelope()
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	b[len(Magic)+1] = 7
	if _, err := FromBinary(b); !IsKind(err, KindMode) {
		t.Fatalf("unknown mode tag: got %v, want KindMode", err)
	}
}

func TestFromBinary_StreamWithDeltaRejected(t *testing.T) {
	e := deltaEnvelope(t)
	b, err := e.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	b[len(Magic)+1] = byte(ModeStream)
	if _, err := FromBinary(b); !IsKind(err, KindFormat) {
		t.Fatalf("stream envelope with delta: got %v, want KindFormat", err)
	}
}

func TestToBinary_RejectsInvalidEnvelopes(t *testing.T) {
	noPayload := streamEnvelope()
	noPayload.Payload = nil
	if _, err := noPayload.ToBinary(); !IsKind(err, KindFormat) {
		t.Fatalf("missing payload: got %v, want KindFormat", err)
	}

	badChecksum := streamEnvelope()
	badChecksum.Checksum = "not-hex"
	if _, err := badChecksum.ToBinary(); !IsKind(err, KindFormat) {
		t.Fatalf("bad checksum: got %v, want KindFormat", err)
	}

	emptyDelta := streamEnvelope()
	emptyDelta.Payload = DeltaPayload{}
	if _, err := emptyDelta.ToBinary(); !IsKind(err, KindFormat) {
		t.Fatalf("empty delta payload: got %v, want KindFormat", err)
	}
}

func TestDecompressDelta_Corrupt(t *testing.T) {
	if _, err := DecompressDelta([]byte("not a zlib stream")); !IsKind(err, KindDelta) {
		t.Fatalf("corrupt delta: got %v, want KindDelta", err)
	}
}
