package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sameerk147/repurpose/internal/httpx"
	"github.com/sameerk147/repurpose/internal/model"
)

// fakeKB is a scripted knowledge base keyed by drug-name substring.
type fakeKB struct {
	mu    sync.Mutex
	hits  map[string]int
	err   error
	calls []string
}

func (f *fakeKB) CrossCheck(ctx context.Context, query string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)

	if f.err != nil {
		return 0, f.err
	}
	for substr, n := range f.hits {
		if strings.Contains(query, substr) {
			return n, nil
		}
	}
	return 0, nil
}

func newTestValidator(kb KnowledgeBase) *Validator {
	return NewValidator(kb, model.ValidationConfig{Workers: 4, OrganismID: "9606"}, nil)
}

func candidates(n int) []model.Candidate {
	out := make([]model.Candidate, n)
	for i := range out {
		out[i] = model.Candidate{
			Drug:            fmt.Sprintf("Drug%d", i),
			TargetDisease:   "Leukemia",
			SharedPathways:  []string{"AMPK", "mTOR"},
			ConfidenceScore: 80,
		}
	}
	return out
}

func TestValidator_OneResultPerCandidate(t *testing.T) {
	kb := &fakeKB{hits: map[string]int{"Drug0": 1}}
	v := newTestValidator(kb)

	in := candidates(5)
	out := v.Validate(context.Background(), in)

	if len(out) != len(in) {
		t.Fatalf("Expected %d results, got %d", len(in), len(out))
	}
	for i, r := range out {
		if r.Drug != in[i].Drug {
			t.Errorf("Result %d is for %q, want %q (order must match input)", i, r.Drug, in[i].Drug)
		}
	}

	if !out[0].Validation.Confirmed {
		t.Error("Expected Drug0 to be confirmed")
	}
	if out[0].Validation.Status != model.StatusConfirmed {
		t.Errorf("Expected status %q, got %q", model.StatusConfirmed, out[0].Validation.Status)
	}
	for _, r := range out[1:] {
		if r.Validation.Confirmed {
			t.Errorf("Expected %s to be unconfirmed", r.Drug)
		}
		if r.Validation.Status != model.StatusReviewRequired {
			t.Errorf("Expected status %q for %s, got %q", model.StatusReviewRequired, r.Drug, r.Validation.Status)
		}
	}
}

func TestValidator_TotalCrossCheckFailure(t *testing.T) {
	kb := &fakeKB{err: errors.New("connection refused")}
	v := newTestValidator(kb)

	in := candidates(8)
	out := v.Validate(context.Background(), in)

	if len(out) != len(in) {
		t.Fatalf("Expected %d results under total failure, got %d", len(in), len(out))
	}
	for _, r := range out {
		if r.Validation.Confirmed {
			t.Errorf("Expected %s unconfirmed when every cross-check fails", r.Drug)
		}
		if r.Validation.Status != model.StatusReviewRequired {
			t.Errorf("Expected %q, got %q", model.StatusReviewRequired, r.Validation.Status)
		}
		if r.FinalEvidenceScore != 0.48 {
			t.Errorf("Expected literature-only score 0.48, got %v", r.FinalEvidenceScore)
		}
	}
}

func TestValidator_EmptyPathwaysSkipsCrossCheck(t *testing.T) {
	kb := &fakeKB{hits: map[string]int{"Aspirin": 3}}
	v := newTestValidator(kb)

	out := v.Validate(context.Background(), []model.Candidate{{
		Drug:            "Aspirin",
		TargetDisease:   "Cancer",
		ConfidenceScore: 90,
	}})

	if len(kb.calls) != 0 {
		t.Fatalf("Expected no knowledge-base calls for empty pathways, got %d", len(kb.calls))
	}
	if out[0].Validation.Confirmed {
		t.Error("Expected unconfirmed when cross-check is skipped")
	}
	if out[0].FinalEvidenceScore != 0.54 {
		t.Errorf("Expected 0.54, got %v", out[0].FinalEvidenceScore)
	}
}

func TestValidator_EmptyInput(t *testing.T) {
	v := newTestValidator(&fakeKB{})

	out := v.Validate(context.Background(), nil)
	if out == nil {
		t.Fatal("Expected empty non-nil slice for empty input")
	}
	if len(out) != 0 {
		t.Fatalf("Expected 0 results, got %d", len(out))
	}
}

func TestValidator_Idempotent(t *testing.T) {
	kb := &fakeKB{hits: map[string]int{"Drug1": 2}}
	v := newTestValidator(kb)
	in := candidates(4)

	first, err := json.Marshal(v.Validate(context.Background(), in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(v.Validate(context.Background(), in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("Validation is not idempotent:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestBuildQuery(t *testing.T) {
	got := BuildQuery("Metformin", []string{"AMPK", "mTOR"}, "9606")
	want := `(Metformin) AND ("AMPK" OR "mTOR") AND (organism_id:9606)`
	if got != want {
		t.Errorf("BuildQuery = %q, want %q", got, want)
	}
}

func TestEvidenceLink(t *testing.T) {
	link := EvidenceLink("Metformin", []string{"AMPK", "mTOR"})
	if !strings.HasPrefix(link, "https://www.uniprot.org/uniprotkb?query=") {
		t.Errorf("Unexpected link prefix: %q", link)
	}
	if !strings.Contains(link, "Metformin") {
		t.Errorf("Expected drug name in link, got %q", link)
	}
	if strings.Contains(link, " ") {
		t.Errorf("Expected escaped link, got %q", link)
	}
}

func TestUniProtClient_CountsHits(t *testing.T) {
	var gotQuery, gotSize string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotSize = r.URL.Query().Get("size")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[{"primaryAccession":"P12345"}]}`)
	}))
	defer server.Close()

	client := NewUniProtClient(model.ValidationConfig{BaseURL: server.URL, Timeout: 2 * time.Second}, model.HTTPConfig{UserAgent: "test"}, nil, 0, nil)

	hits, err := client.CrossCheck(context.Background(), `(Metformin) AND ("AMPK") AND (organism_id:9606)`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hits != 1 {
		t.Errorf("Expected 1 hit, got %d", hits)
	}
	if gotSize != "1" {
		t.Errorf("Expected size=1, got %q", gotSize)
	}
	if !strings.Contains(gotQuery, "organism_id:9606") {
		t.Errorf("Expected organism filter in query, got %q", gotQuery)
	}
}

func TestUniProtClient_ServerErrorIsError(t *testing.T) {
	restore := httpx.RetryBaseDelay
	httpx.RetryBaseDelay = time.Millisecond
	defer func() { httpx.RetryBaseDelay = restore }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewUniProtClient(model.ValidationConfig{BaseURL: server.URL, Timeout: 2 * time.Second}, model.HTTPConfig{}, nil, 0, nil)

	if _, err := client.CrossCheck(context.Background(), "(X) AND (\"Y\") AND (organism_id:9606)"); err == nil {
		t.Fatal("Expected error on 500 response")
	}
}
