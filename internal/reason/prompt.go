package reason

import (
	"fmt"
	"strings"

	"github.com/sameerk147/repurpose/internal/model"
)

// BuildPrompt assembles the reasoning prompt: retrieved literature chunks
// tagged with their source ids, followed by strict output instructions. The
// instructions pin the failure modes the parser has to repair anyway: the
// model must emit a JSON list of 3-5 candidates, never a single object,
// never an empty pathway list, and never the query disease as the drug.
func BuildPrompt(drug, disease string, chunks []model.IndexChunk) string {
	var ctx strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&ctx, "[source: %s] %s\n\n", c.SourceID, c.Text)
	}

	return fmt.Sprintf(`Context from PubMed literature:
%s
---
Task: Analyze the provided literature to identify MULTIPLE high-confidence drug repurposing candidates for the target disease '%s'.
(Note: The input '%s' might be synonymous with the disease. Ignore it if so. You must find DIFFERENT drug candidates in the text).

STRICT INSTRUCTIONS:
1. You MUST output a JSON ARRAY (list) containing 3 to 5 distinct drug candidates.
2. Do NOT output a single JSON object. It must be a list: [ {...}, {...}, ... ]
3. The 'shared_pathways' field MUST NEVER BE EMPTY. If a specific biological pathway isn't named, provide a short 2-3 word mechanistic description.
4. NEVER put the user's disease query into the drug field.

Output your final answer as a JSON LIST of objects with the following keys and NO markdown formatting:
[
  {
    "drug": "Name of the drug candidate (e.g. Metformin)",
    "target_disease": "%s",
    "shared_pathways": ["pathway1", "mechanistic description"],
    "mechanism_of_action": "Detailed explanation...",
    "confidence_score": 85,
    "reasoning_trace": "Summary of analysis..."
  }
]
`, ctx.String(), disease, drug, disease)
}
