package bom

import (
	"context"

	"github.com/teranos/bomx/catalog"
)

const evaluationUnavailable = "evaluation unavailable"

// evaluateCandidate asks the reasoning service whether candidate can
// substitute for original. An EvaluationResult is always produced: a
// failed or schema-invalid call degrades to valid=false, never an error.
func (p *Pipeline) evaluateCandidate(ctx context.Context, original *catalog.PartRecord, candidate catalog.SimilarPart, assumptions ProjectAssumptions) EvaluationResult {
	verdict, err := p.reasoner.EvaluateAlternative(ctx, original, candidate, assumptions)
	if err != nil {
		p.logger.Warnw("alternative evaluation degraded",
			"original_mpn", original.MPN, "error", err)
		return EvaluationResult{Valid: false, Reasoning: evaluationUnavailable}
	}
	return EvaluationResult{Valid: verdict.Valid, Reasoning: verdict.Reasoning}
}

// pickBestAlternative selects the valid candidate with the lowest total
// cost. Ties break toward higher seller inventory, then catalog listing
// order. Candidates without pricing lose to any priced candidate. Returns
// -1 when no candidate is valid.
func pickBestAlternative(evaluations []AlternativeEvaluation) int {
	best := -1
	for i, eval := range evaluations {
		if !eval.Result.Valid {
			continue
		}
		if best == -1 || betterAlternative(eval, evaluations[best]) {
			best = i
		}
	}
	return best
}

func betterAlternative(a, b AlternativeEvaluation) bool {
	switch {
	case a.TotalCost == nil && b.TotalCost == nil:
		return a.Candidate.MaxInventory() > b.Candidate.MaxInventory()
	case a.TotalCost == nil:
		return false
	case b.TotalCost == nil:
		return true
	}

	switch a.TotalCost.Cmp(*b.TotalCost) {
	case -1:
		return true
	case 1:
		return false
	default:
		return a.Candidate.MaxInventory() > b.Candidate.MaxInventory()
	}
}
