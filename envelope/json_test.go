package envelope

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestJSONRoundTrip_Stream(t *testing.T) {
	e := streamEnvelope()
	e.CreatedAt = 1756500000.25
	e.CatalogKey = "assets/logo"

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Version != e.Version || got.SeedID != e.SeedID {
		t.Fatalf("seed fields differ: %+v", got)
	}
	if got.Offset != e.Offset || got.Length != e.Length || got.Checksum != e.Checksum {
		t.Fatalf("segment fields differ: %+v", got)
	}
	if got.Mode() != ModeStream {
		t.Fatalf("mode = %s, want stream", got.Mode())
	}
	if got.CreatedAt != e.CreatedAt {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, e.CreatedAt)
	}
	if got.CatalogKey != e.CatalogKey {
		t.Fatalf("catalog_key = %q, want %q", got.CatalogKey, e.CatalogKey)
	}
	if got.Metadata["note"] != "dropped by binary form" {
		t.Fatalf("metadata lost: %v", got.Metadata)
	}
}

func TestJSONRoundTrip_Delta(t *testing.T) {
	e := deltaEnvelope(t)
	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	delta, ok := got.Payload.(DeltaPayload)
	if !ok {
		t.Fatalf("payload is %T, want DeltaPayload", got.Payload)
	}
	raw, err := DecompressDelta(delta.Compressed)
	if err != nil {
		t.Fatalf("DecompressDelta: %v", err)
	}
	if !bytes.Equal(raw, e.Payload.(DeltaPayload).Raw) {
		t.Fatalf("delta bytes differ after JSON round trip")
	}
}

func TestToDict_PrefersCompressedDelta(t *testing.T) {
	e := deltaEnvelope(t)
	d := e.ToDict()
	if _, ok := d["delta"]; ok {
		t.Fatalf("raw delta emitted alongside the compressed form")
	}
	want := hex.EncodeToString(e.Payload.(DeltaPayload).Compressed)
	if d["delta_compressed"] != want {
		t.Fatalf("delta_compressed = %v", d["delta_compressed"])
	}
}

func TestToDict_OmitsOptionalFields(t *testing.T) {
	d := streamEnvelope().ToDict()
	for _, key := range []string{"seed_hex", "delta", "delta_compressed", "catalog_key"} {
		if _, ok := d[key]; ok {
			t.Fatalf("%q present on an envelope that does not use it", key)
		}
	}
}

func TestFromDict_Defaults(t *testing.T) {
	e, err := FromDict(map[string]any{
		"checksum": ChecksumOf(nil),
	})
	if err != nil {
		t.Fatalf("FromDict: %v", err)
	}
	if e.Version != Version {
		t.Fatalf("default version = %d, want %d", e.Version, Version)
	}
	if e.SeedID != "golden_ratio" {
		t.Fatalf("default seed id = %q", e.SeedID)
	}
	if e.Mode() != ModeStream {
		t.Fatalf("default mode = %s, want stream", e.Mode())
	}
}

func TestFromDict_RawDelta(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	e, err := FromDict(map[string]any{
		"mode":     "delta",
		"length":   4,
		"checksum": ChecksumOf(raw),
		"delta":    hex.EncodeToString(raw),
	})
	if err != nil {
		t.Fatalf("FromDict: %v", err)
	}
	delta := e.Payload.(DeltaPayload)
	if !bytes.Equal(delta.Raw, raw) {
		t.Fatalf("raw delta = %x", delta.Raw)
	}
}

func TestFromDict_Errors(t *testing.T) {
	cases := []struct {
		name string
		d    map[string]any
		kind Kind
	}{
		{"unknown mode", map[string]any{"mode": "mirror", "checksum": ChecksumOf(nil)}, KindMode},
		{"negative offset", map[string]any{"offset": -1, "checksum": ChecksumOf(nil)}, KindFormat},
		{"bad checksum", map[string]any{"checksum": "zzzz"}, KindFormat},
		{"delta without payload", map[string]any{"mode": "delta", "checksum": ChecksumOf(nil)}, KindFormat},
		{"delta not hex", map[string]any{"mode": "delta", "delta": "xy", "checksum": ChecksumOf(nil)}, KindFormat},
	}
	for _, tc := range cases {
		if _, err := FromDict(tc.d); !IsKind(err, tc.kind) {
			t.Fatalf("%s: got %v, want Kind%s", tc.name, err, tc.kind)
		}
	}
}

func TestFromJSON_Malformed(t *testing.T) {
	if _, err := FromJSON([]byte("{")); !IsKind(err, KindFormat) {
		t.Fatalf("malformed JSON: got %v, want KindFormat", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{ModeStream, ModeDelta, ModeCatalog} {
		got, err := ParseMode(mode.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", mode.String(), err)
		}
		if got != mode {
			t.Fatalf("ParseMode(%q) = %v", mode.String(), got)
		}
	}
	if _, err := ParseMode("mirror"); !IsKind(err, KindMode) {
		t.Fatalf("unknown mode name: got %v, want KindMode", err)
	}
}
