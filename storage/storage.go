// Package storage defines the persistence contract the scheduling engine
// is consumed through. The engine treats the backend as an opaque
// key-value store keyed by occurrence id; retry, backoff and offline
// semantics belong to the implementation.
package storage

import (
	"context"
	"errors"

	"github.com/max64180/lifetrack/schedule"
)

// Storage connects the scheduling engine with a durable backend (e.g. a
// database or a sync service). Please use the error values provided.
type Storage interface {
	// LoadAll retrieves every stored occurrence.
	LoadAll(ctx context.Context) ([]schedule.Occurrence, error)
	// SaveBatch upserts the given occurrences by id. A batch produced by
	// one engine operation should be written together.
	SaveBatch(ctx context.Context, occurrences []schedule.Occurrence) error
	// DeleteBatch removes the occurrences with the given ids. Ids that do
	// not exist are ignored.
	DeleteBatch(ctx context.Context, ids []string) error
}

var (
	// ErrNotFound is returned when a requested occurrence doesn't exist.
	ErrNotFound = errors.New("occurrence not found")
	// ErrInvalidInput is returned when the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input parameters")
	// ErrStorageUnavailable is returned when the backend is unavailable.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
