// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// ElasticsearchQuery defines the structure of a query request
type ElasticsearchQuery struct {
	Index        string
	QueryType    string
	Filters      map[string]interface{}
	UniversityID string
	Country      string
	Pagination   struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case "university_search":
		queryBody = buildUniversitySearchQuery(eq)
	case "similar_universities":
		queryBody = buildSimilarUniversitiesQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{eq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &eq.Pagination.From,
		Size:   &eq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildUniversitySearchQuery builds the main university search query dynamically
func buildUniversitySearchQuery(eq ElasticsearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search across name, country and offered fields
	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "fields^2", "country"},
				"type":   "best_fields",
			},
		})
	}

	// Country filter
	if country, ok := eq.Filters["country"].(string); ok && country != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"country": country},
		})
	} else if eq.Country != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"country": eq.Country},
		})
	}

	// Field of study filter
	if field, ok := eq.Filters["fieldOfStudy"].(string); ok && field != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"match": map[string]interface{}{"fields": field},
		})
	}

	// Tuition ceiling: documents without a tuition figure still match
	if maxTuition, ok := numberFilter(eq.Filters["maxTuition"]); ok && maxTuition > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"range": map[string]interface{}{
							"tuition_fee": map[string]interface{}{"lte": maxTuition},
						},
					},
					map[string]interface{}{
						"bool": map[string]interface{}{
							"must_not": []interface{}{
								map[string]interface{}{
									"exists": map[string]interface{}{"field": "tuition_fee"},
								},
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		})
	}

	// Ranking ceiling: unranked universities are excluded
	if maxRanking, ok := numberFilter(eq.Filters["maxRanking"]); ok && maxRanking > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"ranking": map[string]interface{}{"lte": maxRanking},
			},
		})
	}

	// Selectivity floor: universities missing an acceptance rate are excluded
	if minAcceptance, ok := numberFilter(eq.Filters["minAcceptanceRate"]); ok && minAcceptance > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"acceptance_rate": map[string]interface{}{"gte": minAcceptance},
			},
		})
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := eq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "ranking":
			query["sort"] = []map[string]interface{}{{"ranking": "asc"}}
		case "tuition_fee":
			query["sort"] = []map[string]interface{}{{"tuition_fee": "asc"}}
		case "name":
			query["sort"] = []map[string]interface{}{{"name": "asc"}}
		}
	}

	return query
}

// buildSimilarUniversitiesQuery builds a "universities like this one" query
func buildSimilarUniversitiesQuery(eq ElasticsearchQuery) map[string]interface{} {
	if eq.UniversityID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "fields", "country"},
				"like": []map[string]interface{}{
					{"_index": eq.Index, "_id": eq.UniversityID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}

func numberFilter(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
