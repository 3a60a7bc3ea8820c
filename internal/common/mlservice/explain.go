package mlservice

import (
	"fmt"
	"sort"

	"studyabroad-workers/internal/models"
)

const maxExplanationFactors = 3

// costFitExplainThreshold marks when a below-budget-fit note is added.
const costFitExplainThreshold = 0.5

// factorLabels maps model feature names to human readable phrases.
var factorLabels = map[string]string{
	"cgpa":           "academic record (CGPA)",
	"greScore":       "GRE score",
	"ieltsScore":     "IELTS score",
	"toeflScore":     "TOEFL score",
	"testScores":     "standardized test performance",
	"acceptanceRate": "university selectivity",
	"ranking":        "university ranking",
	"fieldOfStudy":   "field of study match",
}

// GenerateReasons produces the human readable explanation lines for one
// prediction: the strongest factors by absolute contribution (up to three),
// plus a budget note when the cost fit is poor. With no factor data a
// generic line keeps the output non-empty.
func GenerateReasons(result *models.PredictionResult, costFit float64) []string {
	reasons := []string{}

	for _, factor := range topFactors(result.FactorsAnalyzed, maxExplanationFactors) {
		label, ok := factorLabels[factor.name]
		if !ok {
			label = factor.name
		}
		if factor.weight >= 0 {
			reasons = append(reasons, fmt.Sprintf("Your %s strengthens this prediction", label))
		} else {
			reasons = append(reasons, fmt.Sprintf("Your %s weakens this prediction", label))
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf(
			"Estimated admission probability of %.0f%% based on your overall profile",
			result.AdmissionProbability*100))
	}

	if costFit < costFitExplainThreshold {
		reasons = append(reasons, "Tuition significantly exceeds your declared budget")
	}

	return reasons
}

type weightedFactor struct {
	name   string
	weight float64
}

// topFactors orders factors by absolute weight descending, breaking ties by
// name ascending so output is deterministic.
func topFactors(factors map[string]float64, limit int) []weightedFactor {
	ordered := make([]weightedFactor, 0, len(factors))
	for name, weight := range factors {
		ordered = append(ordered, weightedFactor{name: name, weight: weight})
	}

	sort.Slice(ordered, func(i, j int) bool {
		ai, aj := abs(ordered[i].weight), abs(ordered[j].weight)
		if ai != aj {
			return ai > aj
		}
		return ordered[i].name < ordered[j].name
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
