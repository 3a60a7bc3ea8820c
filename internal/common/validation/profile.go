package validation

import (
	"fmt"
	"strconv"
	"strings"

	"studyabroad-workers/internal/models"
)

// Profile field bounds.
const (
	MinCGPA  = 0.0
	MaxCGPA  = 4.0
	MinGRE   = 260
	MaxGRE   = 340
	MinIELTS = 0.0
	MaxIELTS = 9.0
	MinTOEFL = 0
	MaxTOEFL = 120

	MaxFieldOfStudyLength = 255
)

// ProfileValidator validates raw candidate profile variables and produces a
// typed profile. All errors are collected in a single pass rather than
// failing on the first one.
type ProfileValidator struct {
	maxPreferredCountries int
}

func NewProfileValidator(maxPreferredCountries int) *ProfileValidator {
	if maxPreferredCountries <= 0 {
		maxPreferredCountries = 10
	}
	return &ProfileValidator{maxPreferredCountries: maxPreferredCountries}
}

// ValidateProfile checks every present field against its bounds. Fields that
// fail validation are left unset on the returned profile. The returned
// profile is usable only when result.Valid is true.
func (v *ProfileValidator) ValidateProfile(raw map[string]interface{}) (*models.CandidateProfile, *ValidationResult) {
	profile := &models.CandidateProfile{}
	errors := []ValidationError{}

	if cgpaRaw, ok := raw["cgpa"]; ok && cgpaRaw != nil {
		if cgpa, err := parseNumber(cgpaRaw); err != nil {
			errors = append(errors, ValidationError{
				Field:   "cgpa",
				Code:    "INVALID_TYPE",
				Message: "CGPA must be a number",
			})
		} else if cgpa < MinCGPA || cgpa > MaxCGPA {
			errors = append(errors, ValidationError{
				Field:   "cgpa",
				Code:    "OUT_OF_RANGE",
				Message: fmt.Sprintf("CGPA must be between %.1f and %.1f", MinCGPA, MaxCGPA),
			})
		} else {
			profile.CGPA = &cgpa
		}
	}

	if greRaw, ok := raw["greScore"]; ok && greRaw != nil {
		if gre, err := parseInteger(greRaw); err != nil {
			errors = append(errors, ValidationError{
				Field:   "greScore",
				Code:    "INVALID_TYPE",
				Message: "GRE score must be an integer",
			})
		} else if gre < MinGRE || gre > MaxGRE {
			errors = append(errors, ValidationError{
				Field:   "greScore",
				Code:    "OUT_OF_RANGE",
				Message: fmt.Sprintf("GRE score must be between %d and %d", MinGRE, MaxGRE),
			})
		} else {
			profile.GREScore = &gre
		}
	}

	if ieltsRaw, ok := raw["ieltsScore"]; ok && ieltsRaw != nil {
		if ielts, err := parseNumber(ieltsRaw); err != nil {
			errors = append(errors, ValidationError{
				Field:   "ieltsScore",
				Code:    "INVALID_TYPE",
				Message: "IELTS score must be a number",
			})
		} else if ielts < MinIELTS || ielts > MaxIELTS {
			errors = append(errors, ValidationError{
				Field:   "ieltsScore",
				Code:    "OUT_OF_RANGE",
				Message: fmt.Sprintf("IELTS score must be between %.1f and %.1f", MinIELTS, MaxIELTS),
			})
		} else {
			profile.IELTSScore = &ielts
		}
	}

	if toeflRaw, ok := raw["toeflScore"]; ok && toeflRaw != nil {
		if toefl, err := parseInteger(toeflRaw); err != nil {
			errors = append(errors, ValidationError{
				Field:   "toeflScore",
				Code:    "INVALID_TYPE",
				Message: "TOEFL score must be an integer",
			})
		} else if toefl < MinTOEFL || toefl > MaxTOEFL {
			errors = append(errors, ValidationError{
				Field:   "toeflScore",
				Code:    "OUT_OF_RANGE",
				Message: fmt.Sprintf("TOEFL score must be between %d and %d", MinTOEFL, MaxTOEFL),
			})
		} else {
			profile.TOEFLScore = &toefl
		}
	}

	if fieldRaw, ok := raw["fieldOfStudy"]; ok && fieldRaw != nil {
		if fieldStr, ok := fieldRaw.(string); ok {
			fieldStr = strings.TrimSpace(fieldStr)
			if fieldStr == "" {
				errors = append(errors, ValidationError{
					Field:   "fieldOfStudy",
					Code:    "INVALID_VALUE",
					Message: "Field of study must not be blank",
				})
			} else if len(fieldStr) > MaxFieldOfStudyLength {
				errors = append(errors, ValidationError{
					Field:   "fieldOfStudy",
					Code:    "MAX_LENGTH_VIOLATION",
					Message: fmt.Sprintf("Field of study must be at most %d characters", MaxFieldOfStudyLength),
				})
			} else {
				profile.FieldOfStudy = fieldStr
			}
		} else {
			errors = append(errors, ValidationError{
				Field:   "fieldOfStudy",
				Code:    "INVALID_TYPE",
				Message: "Field of study must be a string",
			})
		}
	}

	if countriesRaw, ok := raw["preferredCountries"]; ok && countriesRaw != nil {
		countries, countryErrors := v.parseCountries(countriesRaw)
		errors = append(errors, countryErrors...)
		if len(countryErrors) == 0 {
			profile.PreferredCountries = countries
		}
	}

	budgetMin, minErrors := parseBudgetField(raw, "budgetMin")
	errors = append(errors, minErrors...)
	budgetMax, maxErrors := parseBudgetField(raw, "budgetMax")
	errors = append(errors, maxErrors...)

	if budgetMin != nil && budgetMax != nil && *budgetMin > *budgetMax {
		errors = append(errors, ValidationError{
			Field:   "budgetMin",
			Code:    "INVALID_RANGE",
			Message: "Budget minimum must not exceed budget maximum",
		})
	} else {
		profile.BudgetMin = budgetMin
		profile.BudgetMax = budgetMax
	}

	return profile, &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// CheckPredictionReady verifies the precondition for admission prediction:
// CGPA plus at least one standardized test score.
func CheckPredictionReady(profile *models.CandidateProfile) []ValidationError {
	errors := []ValidationError{}
	if profile.CGPA == nil {
		errors = append(errors, ValidationError{
			Field:   "cgpa",
			Code:    "MISSING_REQUIRED",
			Message: "CGPA is required for admission prediction",
		})
	}
	if !profile.HasTestScore() {
		errors = append(errors, ValidationError{
			Field:   "testScores",
			Code:    "MISSING_REQUIRED",
			Message: "At least one test score (GRE, IELTS or TOEFL) is required for admission prediction",
		})
	}
	return errors
}

// CheckRecommendationReady verifies the precondition for recommendation
// generation: CGPA plus a field of study.
func CheckRecommendationReady(profile *models.CandidateProfile) []ValidationError {
	errors := []ValidationError{}
	if profile.CGPA == nil {
		errors = append(errors, ValidationError{
			Field:   "cgpa",
			Code:    "MISSING_REQUIRED",
			Message: "CGPA is required for recommendation generation",
		})
	}
	if profile.FieldOfStudy == "" {
		errors = append(errors, ValidationError{
			Field:   "fieldOfStudy",
			Code:    "MISSING_REQUIRED",
			Message: "Field of study is required for recommendation generation",
		})
	}
	return errors
}

// parseCountries accepts either a JSON array of strings or a comma separated
// string like "US,UK,CA".
func (v *ProfileValidator) parseCountries(raw interface{}) ([]string, []ValidationError) {
	errors := []ValidationError{}
	var entries []string

	switch val := raw.(type) {
	case []interface{}:
		for i, item := range val {
			str, ok := item.(string)
			if !ok {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("preferredCountries[%d]", i),
					Code:    "INVALID_TYPE",
					Message: "Country entries must be strings",
				})
				continue
			}
			entries = append(entries, str)
		}
	case []string:
		entries = val
	case string:
		for _, part := range strings.Split(val, ",") {
			entries = append(entries, part)
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "preferredCountries",
			Code:    "INVALID_TYPE",
			Message: "Preferred countries must be an array or comma separated string",
		})
		return nil, errors
	}

	countries := make([]string, 0, len(entries))
	for i, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("preferredCountries[%d]", i),
				Code:    "INVALID_VALUE",
				Message: "Country entries must not be blank",
			})
			continue
		}
		countries = append(countries, trimmed)
	}

	if len(countries) > v.maxPreferredCountries {
		errors = append(errors, ValidationError{
			Field:   "preferredCountries",
			Code:    "TOO_MANY_ENTRIES",
			Message: fmt.Sprintf("At most %d preferred countries are allowed", v.maxPreferredCountries),
		})
	}

	if len(errors) > 0 {
		return nil, errors
	}
	return countries, nil
}

func parseBudgetField(raw map[string]interface{}, field string) (*float64, []ValidationError) {
	valRaw, ok := raw[field]
	if !ok || valRaw == nil {
		return nil, nil
	}

	val, err := parseNumber(valRaw)
	if err != nil {
		return nil, []ValidationError{{
			Field:   field,
			Code:    "INVALID_TYPE",
			Message: "Budget must be a number",
		}}
	}
	if val < 0 {
		return nil, []ValidationError{{
			Field:   field,
			Code:    "INVALID_VALUE",
			Message: "Budget must be non-negative",
		}}
	}
	return &val, nil
}

func parseNumber(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("not a number")
	}
}

func parseInteger(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("not an integer")
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("not an integer")
	}
}
