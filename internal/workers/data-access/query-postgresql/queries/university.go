// internal/workers/data-access/query-postgresql/queries/university.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

func UniversityDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	universityID, ok := params["universityId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	row := db.QueryRowContext(ctx, `
		SELECT id, name, country, ranking, tuition_fee, fields, acceptance_rate
		FROM universities
		WHERE id = $1`, universityID)

	result, err := scanUniversityRow(row)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func UniversitiesByIDs(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	ids, err := stringSliceParam(params["universityIds"])
	if err != nil || len(ids) == 0 {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name, country, ranking, tuition_fee, fields, acceptance_rate
		FROM universities
		WHERE id IN (%s)
		ORDER BY id`, strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		result, err := scanUniversityRow(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUniversityRow(row rowScanner) (map[string]interface{}, error) {
	var id, name, country string
	var ranking sql.NullInt64
	var tuitionFee, acceptanceRate sql.NullFloat64
	var fieldsJSON sql.NullString

	if err := row.Scan(&id, &name, &country, &ranking, &tuitionFee, &fieldsJSON, &acceptanceRate); err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"id":      id,
		"name":    name,
		"country": country,
	}
	if ranking.Valid {
		result["ranking"] = ranking.Int64
	}
	if tuitionFee.Valid {
		result["tuitionFee"] = tuitionFee.Float64
	}
	if acceptanceRate.Valid {
		result["acceptanceRate"] = acceptanceRate.Float64
	}
	if fieldsJSON.Valid && fieldsJSON.String != "" {
		var fields []string
		if err := json.Unmarshal([]byte(fieldsJSON.String), &fields); err == nil {
			result["fields"] = fields
		}
	}
	return result, nil
}

func stringSliceParam(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, ErrMissingParam
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, ErrMissingParam
	}
}
