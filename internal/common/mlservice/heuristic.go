package mlservice

import (
	"context"

	"studyabroad-workers/internal/models"
)

// Heuristic weights. Selectivity uses the university acceptance rate; a
// missing rate is treated as a neutral 0.5.
const (
	cgpaWeight        = 0.45
	testScoreWeight   = 0.35
	selectivityWeight = 0.20

	neutralSelectivity = 0.5
)

// HeuristicScorer is a local Scorer used when no model service is
// configured, and in tests. It combines normalized academic components into
// an admission probability.
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func (s *HeuristicScorer) Score(_ context.Context, profile *models.CandidateProfile, university *models.University) (*ScoreResult, error) {
	cgpaComponent := 0.0
	if profile.CGPA != nil {
		cgpaComponent = *profile.CGPA / 4.0
	}

	testComponent := bestTestComponent(profile)

	selectivity := neutralSelectivity
	if university.AcceptanceRate != nil {
		selectivity = *university.AcceptanceRate
	}

	probability := cgpaWeight*cgpaComponent +
		testScoreWeight*testComponent +
		selectivityWeight*selectivity

	return &ScoreResult{
		Probability: probability,
		Factors: map[string]float64{
			"cgpa":           cgpaWeight * cgpaComponent,
			"testScores":     testScoreWeight * testComponent,
			"acceptanceRate": selectivityWeight * selectivity,
		},
	}, nil
}

func (s *HeuristicScorer) ModelInfo(_ context.Context) (*ModelInfo, error) {
	return &ModelInfo{
		Name:     "heuristic",
		Version:  "1.0",
		Features: []string{"cgpa", "greScore", "ieltsScore", "toeflScore", "acceptanceRate"},
	}, nil
}

// bestTestComponent normalizes each present test score to [0,1] and returns
// the strongest one.
func bestTestComponent(profile *models.CandidateProfile) float64 {
	best := 0.0
	if profile.GREScore != nil {
		if v := float64(*profile.GREScore-260) / 80.0; v > best {
			best = v
		}
	}
	if profile.IELTSScore != nil {
		if v := *profile.IELTSScore / 9.0; v > best {
			best = v
		}
	}
	if profile.TOEFLScore != nil {
		if v := float64(*profile.TOEFLScore) / 120.0; v > best {
			best = v
		}
	}
	return best
}
