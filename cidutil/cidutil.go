// Package cidutil derives content identifiers for serialized envelopes.
//
// The envelope store keys objects by CIDv1 (raw multicodec + sha2-256),
// which makes envelope exchange self-verifying: the identifier a party
// requests is recomputable from the bytes it receives.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Sum returns the CIDv1 (raw + sha2-256) of data.
func Sum(data []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// SumString returns the CIDv1 string of data. With sha2-256 and default
// length the underlying hash cannot fail; an empty string marks the
// unreachable error path.
func SumString(data []byte) string {
	id, err := Sum(data)
	if err != nil {
		return ""
	}
	return id.String()
}
