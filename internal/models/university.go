// internal/models/university.go
package models

// University is a read-only catalog entry. The catalog is owned by an
// external system; workers only read it.
type University struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Country        string   `json:"country"`
	Ranking        *int     `json:"ranking,omitempty"`    // lower is better
	TuitionFee     *float64 `json:"tuitionFee,omitempty"` // nil = unknown
	Fields         []string `json:"fields,omitempty"`
	AcceptanceRate *float64 `json:"acceptanceRate,omitempty"` // 0.0-1.0
}

// HasTuition reports whether the annual tuition fee is known.
func (u *University) HasTuition() bool {
	return u.TuitionFee != nil
}
