// Package testkit provides a conformance suite run against every envelope
// store implementation.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"goldenseed.dev/gqs/cidutil"
	"goldenseed.dev/gqs/codec"
	"goldenseed.dev/gqs/store"
)

// NewStore constructs a fresh, empty store for a test. The returned store
// must be isolated from other tests.
type NewStore func(t *testing.T) store.Store

// EnvelopeBytes returns the binary form of a small stream-reference
// envelope, the canonical storable object.
func EnvelopeBytes(t *testing.T, offset, length uint64) []byte {
	t.Helper()
	env, err := codec.EncodeStreamReference("golden_ratio", offset, length, codec.Options{})
	if err != nil {
		t.Fatalf("EncodeStreamReference: %v", err)
	}
	b, err := env.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	return b
}

// RunConformance exercises the store.Store contract.
func RunConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := EnvelopeBytes(t, 0, 256)

		id, err := s.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cidutil.Sum(want)
		if err != nil {
			t.Fatalf("cidutil.Sum: %v", err)
		}
		if !id.Equals(wantID) {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		obj := EnvelopeBytes(t, 16, 64)

		first, err := s.Put(obj)
		if err != nil {
			t.Fatalf("first Put: %v", err)
		}
		second, err := s.Put(obj)
		if err != nil {
			t.Fatalf("second Put: %v", err)
		}
		if !first.Equals(second) {
			t.Fatalf("idempotent Put returned different CIDs: %s vs %s", first, second)
		}
	})

	t.Run("RejectsNonEnvelope", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Put([]byte("not an envelope")); err == nil {
			t.Fatalf("Put accepted bytes that are not a binary envelope")
		}
	})

	t.Run("GetMissingIsNotFound", func(t *testing.T) {
		s := newStore(t)
		id, err := cidutil.Sum([]byte("absent object"))
		if err != nil {
			t.Fatalf("cidutil.Sum: %v", err)
		}
		if _, err := s.Get(id); !store.IsNotFound(err) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if s.Has(id) {
			t.Fatalf("Has reported an absent object")
		}
	})

	t.Run("UndefinedCID", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(cid.Undef); err == nil {
			t.Fatalf("Get accepted an undefined CID")
		}
		if s.Has(cid.Undef) {
			t.Fatalf("Has accepted an undefined CID")
		}
	})
}
