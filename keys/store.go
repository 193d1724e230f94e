package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is a minimal filesystem key store used by the CLI. It holds ed25519
// seeds as hex files with 0600 permissions, one file per key name. It is a
// local convenience, not a protocol surface.
type Store struct {
	Directory string
}

// DefaultDirectory returns ~/.gqs/keys.
func DefaultDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gqs", "keys"), nil
}

// OpenStore returns a store rooted at directory, or the default directory
// when directory is empty.
func OpenStore(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

// CheckName validates a key name: [a-zA-Z0-9_-]+ only.
func CheckName(name string) error {
	if name == "" {
		return errors.New("key name cannot be empty")
	}
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in key name", c)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Directory, name+".key")
}

// Generate creates and persists a new ed25519 key under name. It refuses to
// overwrite an existing key unless force is set.
func (s *Store) Generate(name string, force bool) (ed25519.PublicKey, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Directory, 0o700); err != nil {
		return nil, err
	}
	path := s.path(name)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("key %q already exists", name)
		}
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	seedHex := hex.EncodeToString(priv.Seed())
	if err := os.WriteFile(path, []byte(seedHex+"\n"), 0o600); err != nil {
		return nil, err
	}
	return pub, nil
}

// Load returns the private key stored under name.
func (s *Store) Load(name string) (ed25519.PrivateKey, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("key file %q: %w", name, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key file %q: seed must be %d bytes", name, ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
