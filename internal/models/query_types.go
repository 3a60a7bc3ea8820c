// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeUserProfile         QueryType = "user_profile"
	QueryTypeUniversityDetails   QueryType = "university_details"
	QueryTypeUniversitiesByIDs   QueryType = "universities_by_ids"
	QueryTypeUserRecommendations QueryType = "user_recommendations"
	QueryTypeUserPredictions     QueryType = "user_predictions"
)
