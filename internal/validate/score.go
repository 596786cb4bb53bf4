package validate

import "math"

// Evidence score weights. Fixed contract values: an unconfirmed hypothesis
// is capped at 0.6 regardless of stated confidence, while a confirmed one
// gets a 0.4 floor contribution from the database match.
const (
	weightLiterature = 0.6
	weightDatabase   = 0.4
)

// Score computes the final evidence score in [0,1] from a literature-derived
// confidence (0-100, clamped) and the knowledge-base match outcome. Pure and
// deterministic; rounded to two decimals.
func Score(confidence int, dbMatch bool) float64 {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	c := float64(confidence) / 100

	if dbMatch {
		return round2(c*weightLiterature + weightDatabase)
	}
	// Graceful degradation: literature-only baseline.
	return round2(c * weightLiterature)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
