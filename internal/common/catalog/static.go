package catalog

import (
	"context"
	"sort"

	"studyabroad-workers/internal/models"
)

// StaticStore is an in-memory catalog, used in tests and for local
// development without a database.
type StaticStore struct {
	byID    map[string]models.University
	ordered []models.University
}

func NewStaticStore(universities []models.University) *StaticStore {
	byID := make(map[string]models.University, len(universities))
	for _, uni := range universities {
		byID[uni.ID] = uni
	}

	ordered := make([]models.University, len(universities))
	copy(ordered, universities)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	return &StaticStore{byID: byID, ordered: ordered}
}

func (s *StaticStore) Get(_ context.Context, id string) (*models.University, error) {
	uni, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &uni, nil
}

func (s *StaticStore) All(_ context.Context) ([]models.University, error) {
	out := make([]models.University, len(s.ordered))
	copy(out, s.ordered)
	return out, nil
}
