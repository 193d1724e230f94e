// Package catalog implements the name→envelope registry that enables
// reconstruction by shared key with zero data transfer. Parties who share a
// catalog can reference datasets by name; nothing but envelopes ever moves.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"goldenseed.dev/gqs/codec"
	"goldenseed.dev/gqs/envelope"
)

// ErrKeyNotFound reports a catalog lookup miss.
var ErrKeyNotFound = errors.New("catalog: key not found")

// Catalog is an in-memory key→envelope table. Concurrent readers are safe;
// concurrent writers require external mutual exclusion.
type Catalog struct {
	entries map[string]*envelope.Envelope
}

// New constructs an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]*envelope.Envelope)}
}

// Register encodes data and stores the resulting envelope under key. The
// last registration under a key wins.
//
// A stream-mode result is recorded as catalog mode; delta-mode results keep
// their mode, since for them the catalog tag is naming metadata rather than
// a reconstruction path. Either way the envelope records its catalog key.
func (c *Catalog) Register(key string, data []byte, seedID string, opts codec.Options) (*envelope.Envelope, error) {
	env, err := codec.Encode(data, seedID, opts)
	if err != nil {
		return nil, err
	}
	if _, ok := env.Payload.(envelope.StreamPayload); ok {
		env.Payload = envelope.CatalogPayload{}
	}
	env.CatalogKey = key
	c.entries[key] = env
	return env, nil
}

// Lookup returns the envelope stored under key.
func (c *Catalog) Lookup(key string) (*envelope.Envelope, bool) {
	env, ok := c.entries[key]
	return env, ok
}

// DecodeEntry reconstructs the data registered under key. Catalog-tagged
// entries are decoded as stream segments via an explicit mode override; the
// stored envelope is never modified.
func (c *Catalog) DecodeEntry(key string) ([]byte, error) {
	env, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	if _, tagged := env.Payload.(envelope.CatalogPayload); tagged {
		return codec.DecodeWithMode(env, envelope.ModeStream)
	}
	return codec.Decode(env)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// EntryInfo is one row of a catalog listing.
type EntryInfo struct {
	Key      string `json:"key"`
	Length   uint64 `json:"length"`
	Mode     string `json:"mode"`
	SeedID   string `json:"seed_id"`
	Checksum string `json:"checksum"`
}

// ListEntries returns all entries ordered by key.
func (c *Catalog) ListEntries() []EntryInfo {
	out := make([]EntryInfo, 0, len(c.entries))
	for key, env := range c.entries {
		out = append(out, EntryInfo{
			Key:      key,
			Length:   env.Length,
			Mode:     env.Mode().String(),
			SeedID:   env.SeedID,
			Checksum: env.Checksum,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// exportDoc is the serialized catalog container.
type exportDoc struct {
	Version int                       `json:"version"`
	Entries map[string]map[string]any `json:"entries"`
}

// Export serializes the whole catalog as JSON.
func (c *Catalog) Export() ([]byte, error) {
	doc := exportDoc{Version: envelope.Version, Entries: make(map[string]map[string]any, len(c.entries))}
	for key, env := range c.entries {
		doc.Entries[key] = env.ToDict()
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import merges a serialized catalog into this one, overwriting on key
// collision. Returns the number of entries imported.
func (c *Catalog) Import(data []byte) (int, error) {
	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, envelope.WrapError(envelope.KindFormat, "catalog JSON", err)
	}
	count := 0
	for key, dict := range doc.Entries {
		env, err := envelope.FromDict(dict)
		if err != nil {
			return count, fmt.Errorf("catalog entry %q: %w", key, err)
		}
		c.entries[key] = env
		count++
	}
	return count, nil
}
