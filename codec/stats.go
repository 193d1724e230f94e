package codec

import (
	"math"

	"goldenseed.dev/gqs/envelope"
)

// Stats summarizes how well an encoding did. Ratios are rounded to two
// decimal places for reporting.
type Stats struct {
	OriginalSize        int     `json:"original_size"`
	EnvelopeSize        int     `json:"envelope_size"`
	CompressionRatio    float64 `json:"compression_ratio"`
	SpaceSavingsPercent float64 `json:"space_savings_percent"`
	Mode                string  `json:"mode"`
	SeedID              string  `json:"seed_id"`
}

// CompressionStats computes size statistics for data and the envelope that
// encodes it. The envelope size is the binary form's length.
func CompressionStats(data []byte, env *envelope.Envelope) (Stats, error) {
	size, err := env.BinarySize()
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		OriginalSize: len(data),
		EnvelopeSize: size,
		Mode:         env.Mode().String(),
		SeedID:       env.SeedID,
	}
	if size == 0 {
		// Unreachable: the magic and header alone are non-zero.
		s.CompressionRatio = math.Inf(1)
	} else {
		s.CompressionRatio = round2(float64(len(data)) / float64(size))
	}
	if len(data) > 0 {
		s.SpaceSavingsPercent = round2((1 - float64(size)/float64(len(data))) * 100)
	}
	return s, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
