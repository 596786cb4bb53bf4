package reason

import (
	"context"
	"strings"
	"time"

	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/model"
)

// Generator turns retrieved context and a drug/disease pair into candidate
// hypotheses. Provider failures and malformed output degrade to zero
// candidates; only infrastructure errors (none today) would fail the stage.
type Generator struct {
	provider Provider
	log      *eventlog.Logger
}

// NewGenerator creates a generator over the given provider.
func NewGenerator(provider Provider, log *eventlog.Logger) *Generator {
	return &Generator{provider: provider, log: log.With("Reasoner")}
}

// SplitQuery derives the drug/disease pair from a free-text query: first
// token is the drug hint, the remainder the disease. Defaults mirror the
// stage's standalone CLI fallback.
func SplitQuery(query string) (drug, disease string) {
	parts := strings.Fields(strings.TrimSpace(query))
	switch {
	case len(parts) == 0:
		return "Metformin", "Leukemia"
	case len(parts) == 1:
		return parts[0], "cancer"
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// Generate runs one reasoning call and repairs its output into candidates.
func (g *Generator) Generate(ctx context.Context, drug, disease string, chunks []model.IndexChunk) ([]model.Candidate, error) {
	prompt := BuildPrompt(drug, disease, chunks)

	g.log.Infof("Sending reasoning request for %s -> %s (%d context chunks)", drug, disease, len(chunks))
	start := time.Now()

	raw, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			// Timeouts belong to the coordinator, not the repair policy.
			return nil, ctx.Err()
		}
		g.log.Errorf("[REASONING] Generation call failed: %v", err)
		return nil, nil
	}

	candidates, err := ParseCandidates(raw)
	if err != nil {
		g.log.Warnf("[REASONING] Unparseable output, producing zero candidates: %v", err)
		return nil, nil
	}
	candidates = sanitize(candidates, disease)

	g.log.Infof("[REASONING] Generated %d hypotheses in %s", len(candidates), time.Since(start).Round(10*time.Millisecond))
	return candidates, nil
}

// sanitize enforces the generator contract on parsed candidates: a candidate
// must name a drug, and the drug must not echo the query disease.
func sanitize(candidates []model.Candidate, disease string) []model.Candidate {
	kept := candidates[:0]
	for _, c := range candidates {
		if strings.TrimSpace(c.Drug) == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(c.Drug), strings.TrimSpace(disease)) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
