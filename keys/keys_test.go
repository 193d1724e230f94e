package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestEd25519SHA256_SignVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	message := []byte("catalog export body")
	sig := SignEd25519SHA256(message, priv)
	if err := VerifyEd25519SHA256(message, pub, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := VerifyEd25519SHA256([]byte("other body"), pub, sig); err == nil {
		t.Fatalf("signature verified over a different message")
	}
	if err := VerifyEd25519SHA256(message, pub, "!!not-base64!!"); err == nil {
		t.Fatalf("malformed signature accepted")
	}
}

func TestDilithium3_SignVerify(t *testing.T) {
	pub, priv, err := GenerateDilithium3Keypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}
	message := []byte("post-quantum signed export")
	for _, hashAlg := range []string{HashSHA256, HashSHA512, HashSHA3256} {
		sig, err := SignDilithium3(message, hashAlg, priv)
		if err != nil {
			t.Fatalf("Sign(%s): %v", hashAlg, err)
		}
		if err := VerifyDilithium3(message, hashAlg, sig, pub); err != nil {
			t.Fatalf("Verify(%s): %v", hashAlg, err)
		}
		if err := VerifyDilithium3([]byte("tampered"), hashAlg, sig, pub); err == nil {
			t.Fatalf("Verify(%s) accepted a different message", hashAlg)
		}
	}
	if _, err := SignDilithium3(message, "md5", priv); err == nil {
		t.Fatalf("unsupported hash accepted")
	}
	if _, err := SignDilithium3(message, HashSHA256, nil); err == nil {
		t.Fatalf("nil private key accepted")
	}
}

func TestPublicKeyString_RoundTrip(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	s := PublicKeyString(pub)
	parsed, err := ParsePublicKeyString(s)
	if err != nil {
		t.Fatalf("ParsePublicKeyString: %v", err)
	}
	if !pub.Equal(parsed) {
		t.Fatalf("parsed key differs from the original")
	}
}

func TestParsePublicKeyString_Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		"rsa:AAAA",
		"ed25519:&&&&",
		"ed25519:AAAA",
	} {
		if _, err := ParsePublicKeyString(s); err == nil {
			t.Fatalf("ParsePublicKeyString(%q): expected error", s)
		}
	}
}
