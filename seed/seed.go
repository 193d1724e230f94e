// Package seed maps short names to the canonical hex seeds the codec ships
// with. The registry is fixed at compile time; it is a constant table, not
// mutable shared state.
package seed

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Canonical seeds: the first 256 fractional bits of well-known mathematical
// constants, in hex. These are "nothing up my sleeve" values; anyone can
// recompute them.
const (
	GoldenRatioHex = "9e3779b97f4a7c15f39cc0605cedc8341082276bf3a27251f86c6a11d0c18e95"
	PiHex          = "243f6a8885a308d313198a2e03707344a4093822299f31d0082efa98ec4e6c89"
	EHex           = "b7e151628aed2a6abf7158809cf4f3c762e7160f38b4da56a784d9045190cfef"
	Sqrt2Hex       = "6a09e667f3bcc908b2fb1366ea957d3e3adec17512775099da2f590b0667322a"
)

// DefaultID is the seed used when callers do not name one.
const DefaultID = "golden_ratio"

// ErrUnknown reports an unresolvable seed identifier. Unknown names are a
// fatal input error, never a silent fallback.
var ErrUnknown = errors.New("seed: unknown seed id")

var registry = map[string]string{
	"golden_ratio": GoldenRatioHex,
	"pi":           PiHex,
	"e":            EHex,
	"sqrt2":        Sqrt2Hex,
}

// Resolve returns the hex seed for a seed identifier. An explicit seedHex
// always wins; otherwise seedID must be a registered name.
func Resolve(seedID, seedHex string) (string, error) {
	if seedHex != "" {
		return seedHex, nil
	}
	if hexSeed, ok := registry[seedID]; ok {
		return hexSeed, nil
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrUnknown, seedID, strings.Join(Names(), ", "))
}

// Names returns the registered seed names in deterministic order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
