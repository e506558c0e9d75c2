package store

import (
	"context"
	"errors"

	"telemetry-service/internal/models"
)

// ErrStoreUnavailable marks a backend I/O failure on append or query. It is
// surfaced to the caller and never retried internally.
var ErrStoreUnavailable = errors.New("history store unavailable")

// Filter narrows a Query. Since is an exclusive lower bound in milliseconds;
// zero values disable a field. Limit is capped by the store.
type Filter struct {
	Location string
	Since    int64
	Limit    int
}

// Store is the bounded reading history. Readings are retained in arrival
// order up to a fixed capacity; insertion past capacity evicts the oldest
// entries globally, not per channel. Appended readings are immutable.
type Store interface {
	Append(ctx context.Context, r models.Reading) error
	Query(ctx context.Context, f Filter) ([]models.Reading, error)
	Close()
}
