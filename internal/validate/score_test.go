package validate

import "testing"

func TestScore_KnownValues(t *testing.T) {
	tests := []struct {
		name       string
		confidence int
		dbMatch    bool
		want       float64
	}{
		{"confirmed full confidence", 100, true, 1.0},
		{"confirmed mid confidence", 80, true, 0.88},
		{"confirmed zero confidence", 0, true, 0.4},
		{"unconfirmed full confidence", 100, false, 0.6},
		{"unconfirmed mid confidence", 70, false, 0.42},
		{"unconfirmed zero confidence", 0, false, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.confidence, tt.dbMatch); got != tt.want {
				t.Errorf("Score(%d, %v) = %v, want %v", tt.confidence, tt.dbMatch, got, tt.want)
			}
		})
	}
}

func TestScore_ClampsOutOfRangeConfidence(t *testing.T) {
	if got := Score(-10, false); got != 0.0 {
		t.Errorf("Score(-10, false) = %v, want 0.0", got)
	}
	if got := Score(-10, true); got != 0.4 {
		t.Errorf("Score(-10, true) = %v, want 0.4", got)
	}
	if got := Score(150, false); got != 0.6 {
		t.Errorf("Score(150, false) = %v, want 0.6", got)
	}
	if got := Score(150, true); got != 1.0 {
		t.Errorf("Score(150, true) = %v, want 1.0", got)
	}
}

func TestScore_Bounds(t *testing.T) {
	for confidence := -20; confidence <= 120; confidence += 5 {
		matched := Score(confidence, true)
		if matched < 0.4 || matched > 1.0 {
			t.Errorf("Score(%d, true) = %v, want within [0.4, 1.0]", confidence, matched)
		}

		unmatched := Score(confidence, false)
		if unmatched < 0.0 || unmatched > 0.6 {
			t.Errorf("Score(%d, false) = %v, want within [0.0, 0.6]", confidence, unmatched)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		if Score(73, true) != Score(73, true) {
			t.Fatal("Score is not deterministic for identical inputs")
		}
	}
}
