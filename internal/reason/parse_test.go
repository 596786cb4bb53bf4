package reason

import (
	"errors"
	"reflect"
	"testing"
)

const candidateList = `[
  {"drug": "Metformin", "target_disease": "Leukemia", "shared_pathways": ["AMPK"], "mechanism_of_action": "AMPK activation", "confidence_score": 85},
  {"drug": "Aspirin", "target_disease": "Leukemia", "shared_pathways": ["COX2"], "mechanism_of_action": "COX inhibition", "confidence_score": 60}
]`

func TestParseCandidates_FencedEqualsUnfenced(t *testing.T) {
	plain, err := ParseCandidates(candidateList)
	if err != nil {
		t.Fatalf("Expected plain list to parse, got %v", err)
	}

	fenced, err := ParseCandidates("```json\n" + candidateList + "\n```")
	if err != nil {
		t.Fatalf("Expected fenced list to parse, got %v", err)
	}

	if !reflect.DeepEqual(plain, fenced) {
		t.Errorf("Fenced output parsed differently:\nplain:  %+v\nfenced: %+v", plain, fenced)
	}
	if len(plain) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(plain))
	}
	if plain[0].Drug != "Metformin" || plain[0].ConfidenceScore != 85 {
		t.Errorf("Unexpected first candidate: %+v", plain[0])
	}
}

func TestParseCandidates_BareFence(t *testing.T) {
	got, err := ParseCandidates("```\n" + candidateList + "\n```")
	if err != nil {
		t.Fatalf("Expected bare-fenced list to parse, got %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(got))
	}
}

func TestParseCandidates_SingleObjectWrapped(t *testing.T) {
	got, err := ParseCandidates(`{"drug": "Metformin", "target_disease": "Leukemia", "shared_pathways": ["AMPK"], "confidence_score": 85}`)
	if err != nil {
		t.Fatalf("Expected single object to parse, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected single object wrapped into a 1-element list, got %d", len(got))
	}
	if got[0].Drug != "Metformin" {
		t.Errorf("Unexpected candidate: %+v", got[0])
	}
}

func TestParseCandidates_ListEmbeddedInProse(t *testing.T) {
	raw := "Here are the hypotheses you asked for:\n" + candidateList + "\nLet me know if you need more."

	got, err := ParseCandidates(raw)
	if err != nil {
		t.Fatalf("Expected embedded list to parse, got %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(got))
	}
}

func TestParseCandidates_GarbageIsError(t *testing.T) {
	for _, raw := range []string{
		"",
		"   \n  ",
		"I could not generate any hypotheses.",
		"```json\nnot json at all\n```",
		"[{broken",
	} {
		if _, err := ParseCandidates(raw); !errors.Is(err, ErrNoCandidates) {
			t.Errorf("ParseCandidates(%q) error = %v, want ErrNoCandidates", raw, err)
		}
	}
}

func TestParseCandidates_EmptyList(t *testing.T) {
	got, err := ParseCandidates("[]")
	if err != nil {
		t.Fatalf("Expected empty list to parse, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected 0 candidates, got %d", len(got))
	}
}
