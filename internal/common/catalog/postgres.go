package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const universityColumns = "id, name, country, ranking, tuition_fee, fields, acceptance_rate"

// PostgresStore backs the catalog with the universities table and caches
// single lookups in Redis.
type PostgresStore struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewPostgresStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *PostgresStore {
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	return &PostgresStore{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.University, error) {
	cacheKey := "university:" + id
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var uni models.University
			if err := json.Unmarshal([]byte(val), &uni); err == nil {
				return &uni, nil
			}
		}
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+universityColumns+" FROM universities WHERE id = $1", id)

	uni, err := scanUniversity(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		data, _ := json.Marshal(uni)
		s.redis.Set(ctx, cacheKey, data, s.cacheTTL)
	}

	return uni, nil
}

func (s *PostgresStore) All(ctx context.Context) ([]models.University, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+universityColumns+" FROM universities ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var universities []models.University
	for rows.Next() {
		uni, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		universities = append(universities, *uni)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return universities, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUniversity(row rowScanner) (*models.University, error) {
	var uni models.University
	var ranking sql.NullInt64
	var tuition, acceptanceRate sql.NullFloat64
	var fieldsJSON []byte

	err := row.Scan(&uni.ID, &uni.Name, &uni.Country, &ranking, &tuition, &fieldsJSON, &acceptanceRate)
	if err != nil {
		return nil, err
	}

	if ranking.Valid {
		r := int(ranking.Int64)
		uni.Ranking = &r
	}
	if tuition.Valid {
		uni.TuitionFee = &tuition.Float64
	}
	if acceptanceRate.Valid {
		uni.AcceptanceRate = &acceptanceRate.Float64
	}
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &uni.Fields); err != nil {
			uni.Fields = []string{}
		}
	}

	return &uni, nil
}
