package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

func TestSum_Stable(t *testing.T) {
	a, err := Sum([]byte("payload"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	b, err := Sum([]byte("payload"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if !a.Equals(b) {
		t.Fatalf("Sum is not deterministic: %s vs %s", a, b)
	}

	other, err := Sum([]byte("payloae"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if a.Equals(other) {
		t.Fatalf("different bytes produced the same CID")
	}
}

func TestSum_CIDShape(t *testing.T) {
	id, err := Sum([]byte("payload"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if id.Version() != 1 {
		t.Fatalf("cid version = %d, want 1", id.Version())
	}
	if id.Type() != cid.Raw {
		t.Fatalf("cid codec = %d, want raw", id.Type())
	}
	decoded, err := multihash.Decode(id.Hash())
	if err != nil {
		t.Fatalf("multihash.Decode: %v", err)
	}
	if decoded.Code != multihash.SHA2_256 {
		t.Fatalf("hash code = %d, want sha2-256", decoded.Code)
	}
}

func TestSumString_MatchesSum(t *testing.T) {
	id, err := Sum([]byte("payload"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if got := SumString([]byte("payload")); got != id.String() {
		t.Fatalf("SumString = %q, want %q", got, id.String())
	}
}
