// Package stream implements the deterministic seed-derived byte stream.
//
// A stream is an unbounded sequence of fixed-size chunks derived purely from
// a hex seed. The generator is a hash chain: the state is initialized to
// sha256(seed) and each step hashes the previous state together with a
// monotonic counter, so chunk i is a pure function of (seed, i). There is no
// entropy source, no wall-clock dependency, and no I/O.
//
// NOT FOR CRYPTOGRAPHY. The stream is designed for reproducibility, not
// unpredictability.
package stream

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// ChunkSize is the number of bytes each generator step yields. This value is
// a protocol constant: envelope offsets are interpreted against a stream of
// 16-byte chunks, so changing it breaks every existing envelope.
const ChunkSize = 16

// Generator produces the deterministic chunk sequence for one seed.
//
// A Generator owns its (digest, counter) state exclusively. Instances are
// cheap; concurrent callers must each construct their own rather than share
// a cursor.
type Generator struct {
	state   [sha256.Size]byte
	counter uint64
}

// NewGenerator constructs a generator positioned at chunk 0.
//
// seedHex must be a non-empty, even-length hex string.
func NewGenerator(seedHex string) (*Generator, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("stream: invalid seed hex: %w", err)
	}
	if len(seed) == 0 {
		return nil, errors.New("stream: empty seed")
	}
	g := &Generator{state: sha256.Sum256(seed)}
	return g, nil
}

// Next returns the next ChunkSize bytes of the stream and advances the
// generator by one chunk.
func (g *Generator) Next() []byte {
	block := g.step()
	chunk := make([]byte, ChunkSize)
	// Fold the 32-byte block to 16 bytes by XOR-ing its halves.
	for i := 0; i < ChunkSize; i++ {
		chunk[i] = block[i] ^ block[i+ChunkSize]
	}
	return chunk
}

// Skip advances past n chunks without materializing their bytes. The cost is
// proportional to n: the hash chain must still be walked, there is no O(1)
// jump. Callers referencing large offsets pay linear generation cost.
func (g *Generator) Skip(n uint64) {
	for i := uint64(0); i < n; i++ {
		g.step()
	}
}

// step advances the hash chain: state' = sha256(state || counter), with the
// counter encoded little-endian. Returns the new 32-byte state block.
func (g *Generator) step() [sha256.Size]byte {
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], g.counter)

	h := sha256.New()
	h.Write(g.state[:])
	h.Write(ctr[:])
	h.Sum(g.state[:0])

	g.counter++
	return g.state
}

// ReadSegment returns exactly length bytes of the stream starting at byte
// offset. A zero length returns an empty slice without touching the
// generator.
//
// Segments compose: for any split b+c, ReadSegment(seed, a, b+c) equals
// ReadSegment(seed, a, b) followed by ReadSegment(seed, a+b, c). Both the
// encode-time scanner and decode-time reconstruction rely on this.
func ReadSegment(seedHex string, offset, length uint64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}

	g, err := NewGenerator(seedHex)
	if err != nil {
		return nil, err
	}

	g.Skip(offset / ChunkSize)
	trim := int(offset % ChunkSize)

	out := make([]byte, 0, length+ChunkSize)
	first := g.Next()
	out = append(out, first[trim:]...)
	for uint64(len(out)) < length {
		out = append(out, g.Next()...)
	}
	return out[:length], nil
}
