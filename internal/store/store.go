// Package store defines the persistence contract for reading records.
// Backends live in the redis, relational and memory subpackages.
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/readlog/internal/domain"
)

// ErrNotFound is returned by Update when the record does not exist.
var ErrNotFound = errors.New("record not found")

// RecordStore persists records. Implementations assign IDs on create
// and must be safe for concurrent use.
type RecordStore interface {
	Create(ctx context.Context, rec *domain.Record) error
	CreateMany(ctx context.Context, recs []*domain.Record) error
	Update(ctx context.Context, rec *domain.Record) error

	FindByID(ctx context.Context, id int64) (domain.Record, bool, error)
	// FindByStatus returns records with the given status, most recently updated first.
	FindByStatus(ctx context.Context, status domain.Status) ([]domain.Record, error)
	// FindAll returns every record in ID order.
	FindAll(ctx context.Context) ([]domain.Record, error)

	CountByStatus(ctx context.Context, status domain.Status) (int64, error)
	Count(ctx context.Context) (int64, error)

	// Delete removes a record. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error

	Ping(ctx context.Context) error
}
