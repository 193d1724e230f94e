// Package localfs provides a filesystem-backed envelope store.
//
// Objects are write-once files fanned out by CID prefix. The store is
// offline and deterministic: no network, no wall-clock dependency.
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"goldenseed.dev/gqs/cidutil"
	"goldenseed.dev/gqs/store"
)

// Store is rooted at a directory on the local filesystem.
type Store struct {
	root string
}

// New constructs a store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Put(envelopeBytes []byte) (cid.Cid, error) {
	if err := store.ValidateObject(envelopeBytes); err != nil {
		return cid.Undef, err
	}
	id, err := cidutil.Sum(envelopeBytes)
	if err != nil {
		return cid.Undef, err
	}

	path := s.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := s.Get(id)
			if rerr != nil {
				// Exists but unreadable or corrupted: immutability violation.
				return cid.Undef, store.ErrImmutable
			}
			if !bytes.Equal(existing, envelopeBytes) {
				return cid.Undef, store.ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}

	if _, err := f.Write(envelopeBytes); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

func (s *Store) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, store.ErrInvalidCID
	}
	b, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	// Re-derive the CID so a tampered file can never satisfy a Get.
	got, err := cidutil.Sum(b)
	if err != nil {
		return nil, err
	}
	if !got.Equals(id) {
		return nil, store.ErrCIDMismatch
	}
	return b, nil
}

func (s *Store) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(s.pathFor(id))
	return err == nil
}

// pathFor fans objects out by the last two characters of the CID string to
// keep directories small.
func (s *Store) pathFor(id cid.Cid) string {
	name := id.String()
	fan := name
	if len(name) > 2 {
		fan = name[len(name)-2:]
	}
	return filepath.Join(s.root, fan, name)
}
