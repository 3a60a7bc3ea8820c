// internal/common/costing/analyzer.go
package costing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"studyabroad-workers/internal/models"
)

var (
	// ErrUnknownTuition marks a university whose tuition fee is not on
	// record; projections cannot be computed for it.
	ErrUnknownTuition = errors.New("tuition fee unknown")
	// ErrInvalidYears marks a non-positive projection horizon.
	ErrInvalidYears = errors.New("years must be a positive integer")
)

// roundCents rounds a monetary amount to two decimal places. Applied at
// presentation time only; intermediate math keeps full precision.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Project computes the multi-year tuition trend for one university under
// compounding inflation. Year i (1-indexed) tuition is T0 * (1 + r/100)^i.
// A negative rate is allowed and models decreasing tuition.
func Project(university *models.University, years int, ratePercent float64) (*models.CostProjection, error) {
	if years <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidYears, years)
	}
	if !university.HasTuition() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTuition, university.ID)
	}

	base := *university.TuitionFee
	growth := 1 + ratePercent/100

	projection := &models.CostProjection{
		UniversityID:         university.ID,
		UniversityName:       university.Name,
		BaseTuition:          roundCents(base),
		InflationRatePercent: ratePercent,
		Years:                make([]models.YearProjection, years),
	}

	tuition := base
	total := 0.0
	for i := 1; i <= years; i++ {
		tuition *= growth
		total += tuition
		projection.Years[i-1] = models.YearProjection{
			YearOffset:       i,
			ProjectedTuition: roundCents(tuition),
		}
	}

	projection.TotalOverPeriod = roundCents(total)
	projection.AverageAnnualIncrease = roundCents((tuition - base) / float64(years))
	return projection, nil
}

// Compare ranks universities by ascending tuition, cheapest first.
// Universities with unknown tuition are excluded. Ties keep catalog order.
func Compare(universities []models.University) []models.CostComparisonEntry {
	entries := make([]models.CostComparisonEntry, 0, len(universities))
	for _, u := range universities {
		if !u.HasTuition() {
			continue
		}
		entries = append(entries, models.CostComparisonEntry{
			UniversityID: u.ID,
			Name:         u.Name,
			Country:      u.Country,
			TuitionFee:   *u.TuitionFee,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TuitionFee < entries[j].TuitionFee
	})
	for i := range entries {
		entries[i].CostRank = i + 1
	}
	return entries
}

// Affordability checks each university's tuition against the candidate's
// declared budget ceiling. Universities with unknown tuition are excluded.
func Affordability(budgetMax float64, universities []models.University) []models.AffordabilityEntry {
	entries := make([]models.AffordabilityEntry, 0, len(universities))
	for _, u := range universities {
		if !u.HasTuition() {
			continue
		}
		entry := models.AffordabilityEntry{
			UniversityID: u.ID,
			Name:         u.Name,
			TuitionFee:   *u.TuitionFee,
			Affordable:   *u.TuitionFee <= budgetMax,
		}
		if !entry.Affordable {
			entry.Shortfall = roundCents(*u.TuitionFee - budgetMax)
		}
		entries = append(entries, entry)
	}
	return entries
}
