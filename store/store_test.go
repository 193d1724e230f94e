package store

import (
	"errors"
	"fmt"
	"testing"

	"goldenseed.dev/gqs/envelope"
)

func TestValidateObject(t *testing.T) {
	env := &envelope.Envelope{
		Version:  envelope.Version,
		SeedID:   "golden_ratio",
		Length:   32,
		Checksum: envelope.ChecksumOf([]byte("x")),
		Payload:  envelope.StreamPayload{},
	}
	b, err := env.ToBinary()
	if err != nil {
		t.Fatalf("ToBinary: %v", err)
	}
	if err := ValidateObject(b); err != nil {
		t.Fatalf("ValidateObject rejected a binary envelope: %v", err)
	}

	err = ValidateObject([]byte("plain bytes"))
	if !errors.Is(err, ErrNotEnvelope) {
		t.Fatalf("ValidateObject(junk) = %v, want ErrNotEnvelope", err)
	}
	// The underlying format error stays reachable for diagnostics.
	if !envelope.IsKind(err, envelope.KindFormat) {
		t.Fatalf("format cause lost: %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrNotFound) {
		t.Fatalf("IsNotFound missed the sentinel")
	}
	if !IsNotFound(fmt.Errorf("get: %w", ErrNotFound)) {
		t.Fatalf("IsNotFound missed a wrapped sentinel")
	}
	if IsNotFound(ErrInvalidCID) {
		t.Fatalf("IsNotFound matched a different sentinel")
	}
	if IsNotFound(nil) {
		t.Fatalf("IsNotFound matched nil")
	}
}
