// Package catalog provides read access to the university catalog.
package catalog

import (
	"context"
	"errors"

	"studyabroad-workers/internal/models"
)

// ErrNotFound is returned when a university ID does not exist in the catalog.
var ErrNotFound = errors.New("university not found")

// Store is the read-only university catalog. The catalog is maintained by an
// external system; workers never write to it.
type Store interface {
	// Get returns the university with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*models.University, error)

	// All returns every university in the catalog in stable ID order.
	All(ctx context.Context) ([]models.University, error)
}
