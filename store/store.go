// Package store defines content-addressed storage for binary envelopes.
//
// Stores hold envelopes, never data: a filled store is still "zero
// bandwidth" in the codec's sense, because everything in it is a
// reconstruction recipe. Objects are immutable and keyed strictly by CIDv1
// (raw + sha2-256) of the stored bytes.
//
// Contract for implementations:
//   - Put MUST be idempotent and MUST reject bytes that do not parse as a
//     binary envelope.
//   - Stored objects MUST be immutable.
//   - Get MUST return ErrNotFound when the CID is absent.
package store

import (
	"errors"

	"github.com/ipfs/go-cid"

	"goldenseed.dev/gqs/envelope"
)

var (
	ErrNotFound    = errors.New("store: not found")
	ErrInvalidCID  = errors.New("store: invalid cid")
	ErrCIDMismatch = errors.New("store: cid mismatch")
	ErrImmutable   = errors.New("store: immutable object mismatch")
	ErrNotEnvelope = errors.New("store: object is not a binary envelope")
)

// IsNotFound reports whether err indicates an absent object.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Store is the minimal content-addressable envelope store interface.
type Store interface {
	Put(envelopeBytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// ValidateObject enforces the Put contract: only binary envelopes are
// storable. Implementations call this before writing.
func ValidateObject(b []byte) error {
	if _, err := envelope.FromBinary(b); err != nil {
		return errors.Join(ErrNotEnvelope, err)
	}
	return nil
}
