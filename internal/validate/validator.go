// Package validate implements the evidence validation stage: each candidate
// hypothesis is cross-checked against an external knowledge base and scored.
// Graceful degradation is mandatory: a failed or empty cross-check marks the
// candidate Review Required, it never discards it.
package validate

import (
	"context"

	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/model"
	"github.com/sameerk147/repurpose/internal/worker"
)

// Validator cross-checks candidates concurrently. Checks for different
// candidates are independent: each touches a disjoint candidate and the
// knowledge base is read-only, so one failure cannot block the others.
type Validator struct {
	kb         KnowledgeBase
	workers    int
	organismID string
	log        *eventlog.Logger
}

// NewValidator creates a validator over the given knowledge base.
func NewValidator(kb KnowledgeBase, cfg model.ValidationConfig, log *eventlog.Logger) *Validator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	organism := cfg.OrganismID
	if organism == "" {
		organism = "9606"
	}

	return &Validator{
		kb:         kb,
		workers:    workers,
		organismID: organism,
		log:        log.With("Validator"),
	}
}

type checkJob struct {
	idx       int
	candidate model.Candidate
	validator *Validator
}

type checkResult struct {
	idx    int
	result model.ValidatedResult
}

func (r *checkResult) Err() error { return nil }

func (j *checkJob) Execute(ctx context.Context) worker.Result {
	return &checkResult{idx: j.idx, result: j.validator.validateOne(ctx, j.candidate)}
}

// Validate cross-checks and scores every candidate. The output has exactly
// one ValidatedResult per input candidate, at the same index, even when
// every cross-check fails.
func (v *Validator) Validate(ctx context.Context, candidates []model.Candidate) []model.ValidatedResult {
	if len(candidates) == 0 {
		return []model.ValidatedResult{}
	}

	jobs := make([]worker.Job, len(candidates))
	for i, c := range candidates {
		jobs[i] = &checkJob{idx: i, candidate: c, validator: v}
	}
	pool := worker.NewPool(v.workers)

	results := make([]model.ValidatedResult, len(candidates))
	filled := make([]bool, len(candidates))
	for _, r := range pool.Run(ctx, jobs) {
		cr := r.(*checkResult)
		results[cr.idx] = cr.result
		filled[cr.idx] = true
	}

	// Jobs dropped by cancellation still owe a result: score on literature
	// alone, no cross-check.
	for i, ok := range filled {
		if !ok {
			results[i] = v.degraded(candidates[i])
		}
	}

	return results
}

// validateOne cross-checks a single candidate and builds its result.
func (v *Validator) validateOne(ctx context.Context, c model.Candidate) model.ValidatedResult {
	v.log.Infof("Verifying: %s -> %s", c.Drug, c.TargetDisease)

	confirmed := false
	if len(c.SharedPathways) == 0 {
		// Never invoke the knowledge base with an empty predicate.
		v.log.Warnf("[GRACEFUL] %s has no shared pathways, cross-check skipped", c.Drug)
	} else {
		query := BuildQuery(c.Drug, c.SharedPathways, v.organismID)
		hits, err := v.kb.CrossCheck(ctx, query)
		if err != nil {
			// Collaborator failure is identical to "no match found".
			v.log.Warnf("[GRACEFUL] Cross-check failed for %s, scoring on literature only: %v", c.Drug, err)
		}
		confirmed = hits > 0
	}

	status := model.StatusConfirmed
	if !confirmed {
		status = model.StatusReviewRequired
		v.log.Warnf("[GRACEFUL] No knowledge-base match for %s, marking %q", c.Drug, status)
	}

	return model.ValidatedResult{
		Candidate: c,
		Validation: model.CrossCheck{
			Confirmed:    confirmed,
			Status:       status,
			EvidenceLink: EvidenceLink(c.Drug, c.SharedPathways),
		},
		FinalEvidenceScore: Score(c.ConfidenceScore, confirmed),
	}
}

func (v *Validator) degraded(c model.Candidate) model.ValidatedResult {
	return model.ValidatedResult{
		Candidate: c,
		Validation: model.CrossCheck{
			Confirmed:    false,
			Status:       model.StatusReviewRequired,
			EvidenceLink: EvidenceLink(c.Drug, c.SharedPathways),
		},
		FinalEvidenceScore: Score(c.ConfidenceScore, false),
	}
}
