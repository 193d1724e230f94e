// Package codec encodes arbitrary data into seed envelopes and decodes
// envelopes back into verified bytes.
//
// Encode classifies its input: data that appears verbatim within the scanned
// prefix of the stream becomes a stream-mode envelope (constant size, no
// payload); everything else falls back to a zlib-compressed XOR delta
// against the stream. Decode regenerates the referenced segment, applies the
// delta if present, and verifies the SHA-256 checksum before returning.
// Decode never returns partial results.
//
// This is not general-purpose compression. The delta path degenerates to
// compressed literal data when the stream shares no structure with the
// input; only the stream-match path has an unbounded ratio.
package codec

import (
	"bytes"
	"fmt"
	"time"

	"goldenseed.dev/gqs/envelope"
	"goldenseed.dev/gqs/seed"
	"goldenseed.dev/gqs/stream"
)

// DefaultScanDepth is the number of stream chunks Encode materializes while
// searching for a stream match when the caller does not say otherwise.
const DefaultScanDepth = 1000

// Options tunes Encode and EncodeStreamReference.
type Options struct {
	// SeedHex is an explicit hex seed. When set it overrides the seed name
	// at both encode and decode time.
	SeedHex string

	// ScanDepth bounds the stream-match search, in chunks. It is a hard
	// cap: the scanner never materializes more chunks than this, so it also
	// bounds worst-case encode latency. Zero means DefaultScanDepth.
	ScanDepth int
}

func (o Options) scanDepth() int {
	if o.ScanDepth <= 0 {
		return DefaultScanDepth
	}
	return o.ScanDepth
}

// Encode builds an envelope describing data against the named seed's
// stream. seedID may be empty, meaning the default seed.
func Encode(data []byte, seedID string, opts Options) (*envelope.Envelope, error) {
	if seedID == "" {
		seedID = seed.DefaultID
	}
	seedHex, err := seed.Resolve(seedID, opts.SeedHex)
	if err != nil {
		return nil, envelope.WrapError(envelope.KindSeed, err.Error(), err)
	}

	checksum := envelope.ChecksumOf(data)

	// Zero-length input is trivially a stream segment; no scanning.
	if len(data) == 0 {
		return &envelope.Envelope{
			Version:   envelope.Version,
			SeedID:    seedID,
			SeedHex:   opts.SeedHex,
			Checksum:  checksum,
			Payload:   envelope.StreamPayload{},
			Metadata:  map[string]any{"scan_chunks": 0},
			CreatedAt: nowUnix(),
		}, nil
	}

	if offset, scanned, ok := scanForMatch(seedHex, data, opts.scanDepth()); ok {
		return &envelope.Envelope{
			Version:   envelope.Version,
			SeedID:    seedID,
			SeedHex:   opts.SeedHex,
			Offset:    offset,
			Length:    uint64(len(data)),
			Checksum:  checksum,
			Payload:   envelope.StreamPayload{},
			Metadata:  map[string]any{"scan_chunks": scanned},
			CreatedAt: nowUnix(),
		}, nil
	}

	// Delta fallback: XOR against the stream prefix of the same length.
	segment, err := stream.ReadSegment(seedHex, 0, uint64(len(data)))
	if err != nil {
		return nil, err
	}
	delta := make([]byte, len(data))
	for i := range data {
		delta[i] = data[i] ^ segment[i]
	}
	compressed, err := envelope.CompressDelta(delta)
	if err != nil {
		return nil, err
	}

	return &envelope.Envelope{
		Version:  envelope.Version,
		SeedID:   seedID,
		SeedHex:  opts.SeedHex,
		Offset:   0,
		Length:   uint64(len(data)),
		Checksum: checksum,
		Payload:  envelope.DeltaPayload{Raw: delta, Compressed: compressed},
		Metadata: map[string]any{
			"delta_raw_size":        len(delta),
			"delta_compressed_size": len(compressed),
		},
		CreatedAt: nowUnix(),
	}, nil
}

// scanForMatch materializes up to scanDepth chunks and reports the leftmost
// offset at which data occurs in the accumulated stream prefix. The search
// is incremental (each chunk only scans the window the previous pass could
// not have seen) but the winner is identical to re-searching the whole
// buffer each time: the first match found is the leftmost.
func scanForMatch(seedHex string, data []byte, scanDepth int) (uint64, int, bool) {
	g, err := stream.NewGenerator(seedHex)
	if err != nil {
		return 0, 0, false
	}

	buf := make([]byte, 0, scanDepth*stream.ChunkSize)
	searchFrom := 0
	for chunk := 0; chunk < scanDepth; chunk++ {
		buf = append(buf, g.Next()...)
		if len(data) > len(buf) {
			continue
		}
		if p := bytes.Index(buf[searchFrom:], data); p >= 0 {
			return uint64(searchFrom + p), chunk + 1, true
		}
		searchFrom = len(buf) - len(data) + 1
	}
	return 0, 0, false
}

// Decode reconstructs and verifies the data an envelope describes.
func Decode(env *envelope.Envelope) ([]byte, error) {
	return DecodeWithMode(env, env.Mode())
}

// DecodeWithMode reconstructs an envelope as if it had the given mode. Most
// callers use Decode; the override exists for catalog resolution, which
// reads catalog-tagged entries as stream segments without mutating the
// shared envelope.
func DecodeWithMode(env *envelope.Envelope, mode envelope.Mode) ([]byte, error) {
	seedHex, err := seed.Resolve(env.SeedID, env.SeedHex)
	if err != nil {
		return nil, envelope.WrapError(envelope.KindSeed, err.Error(), err)
	}

	var data []byte
	switch mode {
	case envelope.ModeStream:
		data, err = stream.ReadSegment(seedHex, env.Offset, env.Length)
		if err != nil {
			return nil, err
		}

	case envelope.ModeDelta:
		payload, ok := env.Payload.(envelope.DeltaPayload)
		if !ok {
			return nil, envelope.NewError(envelope.KindMode,
				fmt.Sprintf("delta decode of a %s envelope", env.Mode()))
		}
		data, err = applyDelta(seedHex, env, payload)
		if err != nil {
			return nil, err
		}

	case envelope.ModeCatalog:
		return nil, envelope.NewError(envelope.KindCatalog,
			"catalog envelope must be resolved through a catalog")

	default:
		return nil, envelope.NewError(envelope.KindMode,
			fmt.Sprintf("unknown envelope mode: %s", mode))
	}

	// The sole end-to-end integrity guard: catches wrong seeds, corrupted
	// envelopes, and encode/decode drift alike.
	if actual := envelope.ChecksumOf(data); actual != env.Checksum {
		return nil, envelope.NewError(envelope.KindChecksum,
			fmt.Sprintf("checksum mismatch: expected %s, got %s", env.Checksum, actual))
	}
	return data, nil
}

// applyDelta regenerates the stream segment and XORs the stored delta back
// onto it. The compressed form is preferred when both are present.
func applyDelta(seedHex string, env *envelope.Envelope, payload envelope.DeltaPayload) ([]byte, error) {
	segment, err := stream.ReadSegment(seedHex, env.Offset, env.Length)
	if err != nil {
		return nil, err
	}

	delta := payload.Raw
	if payload.Compressed != nil {
		delta, err = envelope.DecompressDelta(payload.Compressed)
		if err != nil {
			return nil, err
		}
	}
	if uint64(len(delta)) != env.Length {
		return nil, envelope.NewError(envelope.KindDelta,
			fmt.Sprintf("delta length %d does not match envelope length %d", len(delta), env.Length))
	}

	data := make([]byte, len(segment))
	for i := range segment {
		data[i] = segment[i] ^ delta[i]
	}
	return data, nil
}

// EncodeStreamReference builds a stream-mode envelope for an explicit
// segment. The envelope size is independent of length, so this is the path
// with unbounded compression ratio. The referenced bytes are generated once
// to compute the checksum.
func EncodeStreamReference(seedID string, offset, length uint64, opts Options) (*envelope.Envelope, error) {
	if seedID == "" {
		seedID = seed.DefaultID
	}
	seedHex, err := seed.Resolve(seedID, opts.SeedHex)
	if err != nil {
		return nil, envelope.WrapError(envelope.KindSeed, err.Error(), err)
	}
	data, err := stream.ReadSegment(seedHex, offset, length)
	if err != nil {
		return nil, err
	}
	return &envelope.Envelope{
		Version:   envelope.Version,
		SeedID:    seedID,
		SeedHex:   opts.SeedHex,
		Offset:    offset,
		Length:    length,
		Checksum:  envelope.ChecksumOf(data),
		Payload:   envelope.StreamPayload{},
		Metadata:  map[string]any{},
		CreatedAt: nowUnix(),
	}, nil
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
