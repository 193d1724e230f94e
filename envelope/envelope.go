// Package envelope defines the seed envelope: a compact descriptor holding
// everything needed to regenerate specific data from a deterministic stream.
//
// An envelope never contains the data it describes. It names a seed, a
// stream segment, a reconstruction mode, and the SHA-256 checksum of the
// original plaintext. The checksum is always over the reconstructed data,
// never over the envelope itself.
package envelope

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Version is the current envelope format version.
const Version = 1

// Mode identifies the reconstruction strategy of an envelope. The numeric
// values are stored in the binary wire format and must not be renumbered.
type Mode uint8

const (
	// ModeStream: the data is a literal segment of the stream.
	ModeStream Mode = 0
	// ModeDelta: the data is a stream segment XOR a stored delta.
	ModeDelta Mode = 1
	// ModeCatalog: the entry reconstructs as a stream segment but is
	// resolved through a shared catalog by key.
	ModeCatalog Mode = 2
)

// String returns the wire name of a mode ("stream", "delta", "catalog").
func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeDelta:
		return "delta"
	case ModeCatalog:
		return "catalog"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// ParseMode parses a mode from its wire name.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "stream":
		return ModeStream, nil
	case "delta":
		return ModeDelta, nil
	case "catalog":
		return ModeCatalog, nil
	default:
		return 0, NewError(KindMode, fmt.Sprintf("unknown envelope mode: %q", name))
	}
}

// Payload is the mode-specific part of an envelope. Exactly one variant
// exists per mode, and each variant carries only the fields its mode needs,
// so "delta envelope without a delta" is unrepresentable.
type Payload interface {
	Mode() Mode
}

// StreamPayload marks a pure stream-segment envelope. It carries nothing:
// the shared offset/length fields fully describe the reconstruction.
type StreamPayload struct{}

func (StreamPayload) Mode() Mode { return ModeStream }

// DeltaPayload carries the XOR delta between the data and its stream
// segment. At least one of Raw and Compressed is non-nil; Compressed holds a
// zlib stream whose decompressed length equals the envelope Length.
type DeltaPayload struct {
	Raw        []byte
	Compressed []byte
}

func (DeltaPayload) Mode() Mode { return ModeDelta }

// CatalogPayload marks an envelope that is resolved through a catalog. The
// underlying reconstruction is a stream segment; the catalog key lives in
// the envelope's CatalogKey field because delta-mode catalog entries carry a
// key too.
type CatalogPayload struct{}

func (CatalogPayload) Mode() Mode { return ModeCatalog }

// Envelope is the serializable reconstruction recipe. Immutable once
// constructed; decode reads it without modification.
type Envelope struct {
	Version int

	// SeedID names a registered seed. SeedHex, when non-empty, is an
	// explicit seed that overrides SeedID at decode time.
	SeedID  string
	SeedHex string

	// Offset and Length select the stream segment, in bytes.
	Offset uint64
	Length uint64

	// Checksum is the lowercase hex SHA-256 of the original data.
	Checksum string

	Payload Payload

	// CatalogKey is set on catalog-registered envelopes regardless of
	// payload variant.
	CatalogKey string

	// Metadata is free-form and carried only by the JSON form.
	Metadata map[string]any

	// CreatedAt is a unix timestamp in seconds. Informational only.
	CreatedAt float64
}

// Mode returns the mode implied by the payload variant.
func (e *Envelope) Mode() Mode {
	return e.Payload.Mode()
}

// ChecksumOf returns the lowercase hex SHA-256 of data, the form stored in
// the Checksum field.
func ChecksumOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// validate checks the structural invariants shared by both wire formats.
func (e *Envelope) validate() error {
	if e.Payload == nil {
		return NewError(KindFormat, "envelope has no payload")
	}
	if d, ok := e.Payload.(DeltaPayload); ok {
		if d.Raw == nil && d.Compressed == nil {
			return NewError(KindFormat, "delta envelope carries no delta")
		}
	}
	if sum, err := hex.DecodeString(e.Checksum); err != nil || len(sum) != sha256.Size {
		return NewError(KindFormat, fmt.Sprintf("checksum is not %d hex bytes: %q", sha256.Size, e.Checksum))
	}
	return nil
}
