package envelope

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"goldenseed.dev/gqs/seed"
)

// ToDict returns the flat JSON representation of the envelope. Optional
// fields are omitted when absent; when the delta exists in both raw and
// compressed form, only the compressed form is emitted.
func (e *Envelope) ToDict() map[string]any {
	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	d := map[string]any{
		"version":    e.Version,
		"seed_id":    e.SeedID,
		"offset":     e.Offset,
		"length":     e.Length,
		"checksum":   e.Checksum,
		"mode":       e.Mode().String(),
		"metadata":   metadata,
		"created_at": e.CreatedAt,
	}
	if e.SeedHex != "" {
		d["seed_hex"] = e.SeedHex
	}
	if delta, ok := e.Payload.(DeltaPayload); ok {
		if delta.Compressed != nil {
			d["delta_compressed"] = hex.EncodeToString(delta.Compressed)
		} else {
			d["delta"] = hex.EncodeToString(delta.Raw)
		}
	}
	if e.CatalogKey != "" {
		d["catalog_key"] = e.CatalogKey
	}
	return d
}

// FromDict reconstructs an envelope from its flat JSON representation.
func FromDict(d map[string]any) (*Envelope, error) {
	e := &Envelope{
		Version:    Version,
		SeedID:     seed.DefaultID,
		Metadata:   map[string]any{},
		CatalogKey: dictString(d, "catalog_key", ""),
		SeedHex:    dictString(d, "seed_hex", ""),
		Checksum:   dictString(d, "checksum", ""),
	}

	if v, ok := d["version"]; ok {
		n, err := asUint64(v)
		if err != nil {
			return nil, WrapError(KindFormat, "envelope version", err)
		}
		e.Version = int(n)
	}
	if s := dictString(d, "seed_id", ""); s != "" {
		e.SeedID = s
	}
	var err error
	if e.Offset, err = dictUint(d, "offset"); err != nil {
		return nil, err
	}
	if e.Length, err = dictUint(d, "length"); err != nil {
		return nil, err
	}
	if v, ok := d["created_at"]; ok {
		f, ok := toFloat(v)
		if !ok {
			return nil, NewError(KindFormat, "created_at is not a number")
		}
		e.CreatedAt = f
	}
	if m, ok := d["metadata"].(map[string]any); ok {
		e.Metadata = m
	}

	mode := ModeStream
	if name := dictString(d, "mode", ""); name != "" {
		mode, err = ParseMode(name)
		if err != nil {
			return nil, err
		}
	}

	switch mode {
	case ModeStream:
		e.Payload = StreamPayload{}
	case ModeCatalog:
		e.Payload = CatalogPayload{}
	case ModeDelta:
		var delta DeltaPayload
		if s := dictString(d, "delta_compressed", ""); s != "" {
			delta.Compressed, err = hex.DecodeString(s)
			if err != nil {
				return nil, WrapError(KindFormat, "delta_compressed is not hex", err)
			}
		} else if s := dictString(d, "delta", ""); s != "" {
			delta.Raw, err = hex.DecodeString(s)
			if err != nil {
				return nil, WrapError(KindFormat, "delta is not hex", err)
			}
		}
		e.Payload = delta
	}

	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// ToJSON renders the envelope as indented JSON.
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.MarshalIndent(e.ToDict(), "", "  ")
}

// FromJSON parses an envelope from its JSON form.
func FromJSON(data []byte) (*Envelope, error) {
	var d map[string]any
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, WrapError(KindFormat, "envelope JSON", err)
	}
	return FromDict(d)
}

func dictString(d map[string]any, key, fallback string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return fallback
}

func dictUint(d map[string]any, key string) (uint64, error) {
	v, ok := d[key]
	if !ok {
		return 0, nil
	}
	n, err := asUint64(v)
	if err != nil {
		return 0, WrapError(KindFormat, fmt.Sprintf("envelope %s", key), err)
	}
	return n, nil
}

// asUint64 accepts the numeric types produced by encoding/json as well as
// the native types ToDict emits.
func asUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	case float64:
		if n < 0 {
			return 0, fmt.Errorf("negative value %v", n)
		}
		return uint64(n), nil
	case json.Number:
		u, err := n.Int64()
		if err != nil || u < 0 {
			return 0, fmt.Errorf("invalid number %q", n.String())
		}
		return uint64(u), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
