// internal/models/profile.go
package models

// CandidateProfile holds the academic and financial attributes used for
// admission prediction and recommendation generation. Every field is optional
// on its own; operation-level preconditions (e.g. predict needs CGPA plus one
// test score) are enforced by the profile validator. Profiles are built once
// and never mutated afterwards.
type CandidateProfile struct {
	CGPA               *float64 `json:"cgpa,omitempty"`
	GREScore           *int     `json:"greScore,omitempty"`
	IELTSScore         *float64 `json:"ieltsScore,omitempty"`
	TOEFLScore         *int     `json:"toeflScore,omitempty"`
	FieldOfStudy       string   `json:"fieldOfStudy,omitempty"`
	PreferredCountries []string `json:"preferredCountries,omitempty"`
	BudgetMin          *float64 `json:"budgetMin,omitempty"`
	BudgetMax          *float64 `json:"budgetMax,omitempty"`
}

// AcademicFieldCount is the number of academic fields the confidence
// heuristic considers: CGPA, GRE, IELTS, TOEFL.
const AcademicFieldCount = 4

// AcademicFieldsPresent counts how many of the four academic fields are set.
func (p *CandidateProfile) AcademicFieldsPresent() int {
	n := 0
	if p.CGPA != nil {
		n++
	}
	if p.GREScore != nil {
		n++
	}
	if p.IELTSScore != nil {
		n++
	}
	if p.TOEFLScore != nil {
		n++
	}
	return n
}

// HasTestScore reports whether at least one standardized test score is set.
func (p *CandidateProfile) HasTestScore() bool {
	return p.GREScore != nil || p.IELTSScore != nil || p.TOEFLScore != nil
}

// HasBudget reports whether the candidate declared an upper budget bound.
func (p *CandidateProfile) HasBudget() bool {
	return p.BudgetMax != nil && *p.BudgetMax > 0
}
