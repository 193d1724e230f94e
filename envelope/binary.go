package envelope

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// Magic identifies a binary envelope. A buffer that does not start with
// these four bytes is rejected outright.
var Magic = []byte("GQSE")

// Binary layout, all integers little-endian:
//
//	magic(4) | version(1) | mode(1) | seed_id_len(u16) | seed_id |
//	offset(u64) | length(u64) | checksum(32 raw) |
//	delta_len(u32) | delta(zlib, delta_len bytes)
//
// The binary form is the bit-exact interchange contract. It always stores
// the delta zlib-compressed, never raw, and it carries neither metadata nor
// the creation timestamp. An explicit hex seed is stored in the seed-id
// field with a "hex:" prefix so custom-seed envelopes survive the round
// trip.
const (
	hexSeedPrefix = "hex:"
	checksumSize  = 32
)

// ToBinary serializes the envelope to the compact binary format.
func (e *Envelope) ToBinary() ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	if e.Version < 0 || e.Version > math.MaxUint8 {
		return nil, NewError(KindFormat, fmt.Sprintf("version %d does not fit in one byte", e.Version))
	}

	seedField := e.SeedID
	if e.SeedHex != "" {
		seedField = hexSeedPrefix + e.SeedHex
	}
	if len(seedField) > math.MaxUint16 {
		return nil, NewError(KindFormat, "seed id too long for binary form")
	}

	checksum, err := hex.DecodeString(e.Checksum)
	if err != nil || len(checksum) != checksumSize {
		return nil, NewError(KindFormat, "checksum is not 32 hex bytes")
	}

	var deltaBytes []byte
	if delta, ok := e.Payload.(DeltaPayload); ok {
		if delta.Compressed != nil {
			deltaBytes = delta.Compressed
		} else {
			deltaBytes, err = CompressDelta(delta.Raw)
			if err != nil {
				return nil, err
			}
		}
	}
	if uint64(len(deltaBytes)) > math.MaxUint32 {
		return nil, NewError(KindFormat, "delta too long for binary form")
	}

	out := make([]byte, 0, len(Magic)+2+2+len(seedField)+16+checksumSize+4+len(deltaBytes))
	out = append(out, Magic...)
	out = append(out, byte(e.Version), byte(e.Mode()))
	out = binary.LittleEndian.AppendUint16(out, uint16(len(seedField)))
	out = append(out, seedField...)
	out = binary.LittleEndian.AppendUint64(out, e.Offset)
	out = binary.LittleEndian.AppendUint64(out, e.Length)
	out = append(out, checksum...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(deltaBytes)))
	out = append(out, deltaBytes...)
	return out, nil
}

// FromBinary deserializes an envelope from the compact binary format.
func FromBinary(data []byte) (*Envelope, error) {
	if len(data) < len(Magic) || !bytes.Equal(data[:len(Magic)], Magic) {
		return nil, NewError(KindFormat, "invalid envelope magic bytes")
	}
	r := reader{buf: data, pos: len(Magic)}

	version, err := r.byte("version")
	if err != nil {
		return nil, err
	}
	modeByte, err := r.byte("mode")
	if err != nil {
		return nil, err
	}
	if modeByte > uint8(ModeCatalog) {
		return nil, NewError(KindMode, fmt.Sprintf("unknown envelope mode tag: %d", modeByte))
	}
	mode := Mode(modeByte)

	seedLen, err := r.uint16("seed id length")
	if err != nil {
		return nil, err
	}
	seedField, err := r.take(int(seedLen), "seed id")
	if err != nil {
		return nil, err
	}
	offset, err := r.uint64("offset")
	if err != nil {
		return nil, err
	}
	length, err := r.uint64("length")
	if err != nil {
		return nil, err
	}
	checksum, err := r.take(checksumSize, "checksum")
	if err != nil {
		return nil, err
	}
	deltaLen, err := r.uint32("delta length")
	if err != nil {
		return nil, err
	}
	deltaBytes, err := r.take(int(deltaLen), "delta")
	if err != nil {
		return nil, err
	}

	e := &Envelope{
		Version:  int(version),
		Offset:   offset,
		Length:   length,
		Checksum: hex.EncodeToString(checksum),
		Metadata: map[string]any{},
	}

	seedStr := string(seedField)
	if rest, ok := bytes.CutPrefix(seedField, []byte(hexSeedPrefix)); ok {
		e.SeedHex = string(rest)
	} else {
		e.SeedID = seedStr
	}

	switch mode {
	case ModeDelta:
		if deltaLen == 0 {
			return nil, NewError(KindFormat, "delta envelope carries no delta")
		}
		e.Payload = DeltaPayload{Compressed: append([]byte(nil), deltaBytes...)}
	case ModeStream, ModeCatalog:
		if deltaLen != 0 {
			return nil, NewError(KindFormat, fmt.Sprintf("%s envelope carries a delta", mode))
		}
		if mode == ModeStream {
			e.Payload = StreamPayload{}
		} else {
			e.Payload = CatalogPayload{}
		}
	}

	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// BinarySize returns the size of the binary form. This is the basis for all
// compression-ratio statistics.
func (e *Envelope) BinarySize() (int, error) {
	b, err := e.ToBinary()
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// CompressionRatio returns Length divided by the binary envelope size. The
// header alone is non-zero, so the ratio is always finite; the infinity case
// is handled for completeness.
func (e *Envelope) CompressionRatio() (float64, error) {
	size, err := e.BinarySize()
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return math.Inf(1), nil
	}
	return float64(e.Length) / float64(size), nil
}

// CompressDelta produces the zlib stream the binary form stores. The wire
// contract mandates zlib (RFC 1950); compression level is best-compression.
func CompressDelta(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, WrapError(KindDelta, "zlib writer", err)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, WrapError(KindDelta, "compressing delta", err)
	}
	if err := w.Close(); err != nil {
		return nil, WrapError(KindDelta, "compressing delta", err)
	}
	return buf.Bytes(), nil
}

// DecompressDelta inflates a stored delta. Corrupt or truncated input is a
// KindDelta error.
func DecompressDelta(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, WrapError(KindDelta, "corrupt delta payload", err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapError(KindDelta, "corrupt delta payload", err)
	}
	return raw, nil
}

// reader is a bounds-checked cursor over a binary envelope buffer. Every
// short read is a format error naming the field that was truncated.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) take(n int, field string) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, NewError(KindFormat, fmt.Sprintf("truncated envelope: %s", field))
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) byte(field string) (uint8, error) {
	b, err := r.take(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint16(field string) (uint16, error) {
	b, err := r.take(2, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) uint32(field string) (uint32, error) {
	b, err := r.take(4, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) uint64(field string) (uint64, error) {
	b, err := r.take(8, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
