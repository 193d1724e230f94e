package catalog

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"goldenseed.dev/gqs/keys"
)

// SignedExport wraps a catalog export with a detached ed25519 signature.
// The signature covers the exact bytes of the embedded catalog document, so
// verification happens before any entry is parsed.
type SignedExport struct {
	Catalog      json.RawMessage `json:"catalog"`
	SignatureAlg string          `json:"signature_alg"`
	HashAlg      string          `json:"hash_alg"`
	PublicKey    string          `json:"public_key"`
	Signature    string          `json:"signature"`
}

// ExportSigned serializes the catalog and signs it with privateKey.
func (c *Catalog) ExportSigned(privateKey ed25519.PrivateKey) ([]byte, error) {
	doc, err := c.Export()
	if err != nil {
		return nil, err
	}
	signed := SignedExport{
		Catalog:      doc,
		SignatureAlg: "ed25519",
		HashAlg:      keys.HashSHA256,
		PublicKey:    keys.PublicKeyString(privateKey.Public().(ed25519.PublicKey)),
		Signature:    keys.SignEd25519SHA256(doc, privateKey),
	}
	return json.MarshalIndent(signed, "", "  ")
}

// ImportSigned verifies a signed export and merges it into the catalog.
// Returns the signer's public key string and the number of entries imported.
// Nothing is imported if verification fails.
func (c *Catalog) ImportSigned(data []byte) (string, int, error) {
	var signed SignedExport
	if err := json.Unmarshal(data, &signed); err != nil {
		return "", 0, fmt.Errorf("signed catalog: %w", err)
	}
	if signed.SignatureAlg != "ed25519" {
		return "", 0, fmt.Errorf("signed catalog: unsupported signature alg %q", signed.SignatureAlg)
	}
	if signed.HashAlg != keys.HashSHA256 {
		return "", 0, fmt.Errorf("signed catalog: unsupported hash alg %q", signed.HashAlg)
	}
	pub, err := keys.ParsePublicKeyString(signed.PublicKey)
	if err != nil {
		return "", 0, fmt.Errorf("signed catalog: %w", err)
	}
	if err := keys.VerifyEd25519SHA256(signed.Catalog, pub, signed.Signature); err != nil {
		return "", 0, fmt.Errorf("signed catalog: %w", err)
	}
	count, err := c.Import(signed.Catalog)
	if err != nil {
		return "", count, err
	}
	return signed.PublicKey, count, nil
}
