// internal/workers/data-access/query-postgresql/queries/user.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func UserProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name, email string
	var cgpa, ieltsScore, budgetMin, budgetMax sql.NullFloat64
	var greScore, toeflScore sql.NullInt64
	var fieldOfStudy, preferredCountries sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, cgpa, gre_score, ielts_score, toefl_score,
		       field_of_study, preferred_countries, budget_min, budget_max
		FROM users
		WHERE id = $1`, userID).Scan(
		&id, &name, &email,
		&cgpa, &greScore, &ieltsScore, &toeflScore,
		&fieldOfStudy, &preferredCountries,
		&budgetMin, &budgetMax,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":    id,
		"name":  name,
		"email": email,
	}
	if cgpa.Valid {
		result["cgpa"] = cgpa.Float64
	}
	if greScore.Valid {
		result["greScore"] = greScore.Int64
	}
	if ieltsScore.Valid {
		result["ieltsScore"] = ieltsScore.Float64
	}
	if toeflScore.Valid {
		result["toeflScore"] = toeflScore.Int64
	}
	if fieldOfStudy.Valid {
		result["fieldOfStudy"] = fieldOfStudy.String
	}
	if preferredCountries.Valid {
		result["preferredCountries"] = preferredCountries.String
	}
	if budgetMin.Valid {
		result["budgetMin"] = budgetMin.Float64
	}
	if budgetMax.Valid {
		result["budgetMax"] = budgetMax.Float64
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func UserRecommendations(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT ri.session_id, ri.university_id, ri.university_name,
		       ri.ranking_position, ri.overall_score, ri.admission_probability,
		       rs.created_at
		FROM recommendation_items ri
		JOIN recommendation_sessions rs ON rs.session_id = ri.session_id
		WHERE rs.user_id = $1
		ORDER BY rs.created_at DESC, ri.ranking_position ASC`, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var sessionID, universityID, universityName, createdAt string
		var rankingPosition int
		var overallScore, admissionProbability float64
		err := rows.Scan(&sessionID, &universityID, &universityName,
			&rankingPosition, &overallScore, &admissionProbability, &createdAt)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"sessionId":            sessionID,
			"universityId":         universityID,
			"universityName":       universityName,
			"rankingPosition":      rankingPosition,
			"overallScore":         overallScore,
			"admissionProbability": admissionProbability,
			"createdAt":            createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func UserPredictions(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, university_id, admission_probability, confidence_score, created_at
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, universityID, createdAt string
		var admissionProbability, confidenceScore float64
		err := rows.Scan(&id, &universityID, &admissionProbability, &confidenceScore, &createdAt)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":                   id,
			"universityId":         universityID,
			"admissionProbability": admissionProbability,
			"confidenceScore":      confidenceScore,
			"createdAt":            createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
