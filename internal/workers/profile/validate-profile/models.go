// internal/workers/profile/validate-profile/models.go
package validateprofile

import (
	"studyabroad-workers/internal/common/validation"
	"studyabroad-workers/internal/models"
)

type Input struct {
	ProfileData map[string]interface{} `json:"profileData"`
	// Operation narrows the precondition check: "predict", "recommend" or
	// empty for structural validation only.
	Operation string `json:"operation,omitempty"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	Profile          *models.CandidateProfile     `json:"profile,omitempty"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
}
