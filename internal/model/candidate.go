package model

// Candidate is one drug-repurposing hypothesis produced by the reasoning
// stage. The generator contract requires 3-5 distinct drug names per
// invocation, a non-empty SharedPathways list, and never echoes the query
// disease back as the drug.
type Candidate struct {
	Drug            string   `json:"drug"`
	TargetDisease   string   `json:"target_disease"`
	SharedPathways  []string `json:"shared_pathways"`
	Mechanism       string   `json:"mechanism_of_action"`
	ConfidenceScore int      `json:"confidence_score"` // Literature-derived confidence, 0-100
	ReasoningTrace  string   `json:"reasoning_trace,omitempty"`
}

// ValidationStatus classifies the outcome of the knowledge-base cross-check.
type ValidationStatus string

const (
	StatusConfirmed      ValidationStatus = "Confirmed"
	StatusReviewRequired ValidationStatus = "Review Required"
)

// CrossCheck records the knowledge-base verification of a single candidate.
type CrossCheck struct {
	Confirmed    bool             `json:"confirmed"`
	Status       ValidationStatus `json:"status"`
	EvidenceLink string           `json:"evidence_link,omitempty"`
}

// ValidatedResult is a Candidate plus its cross-check outcome and final
// evidence score. Every candidate that reaches validation yields exactly one
// ValidatedResult, confirmed or not.
type ValidatedResult struct {
	Candidate
	Validation         CrossCheck `json:"validation"`
	FinalEvidenceScore float64    `json:"final_evidence_score"` // In [0,1]
}
