package source

import (
	"context"
	"errors"

	"github.com/timmy/reelsearch/internal/domain"
)

// ErrUnavailable marks a failed provider call: transport error, timeout or
// non-2xx response. Callers treat it as an empty result for that query.
var ErrUnavailable = errors.New("media source unavailable")

// Query is one search request sent to a media source.
type Query struct {
	Kind    domain.MediaKind
	Text    string
	Params  map[string]string // orientation, color, size
	PerPage int
}

// Source defines the interface for stock media sources.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	GetDisplayName() string

	// Search runs one query against the source.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - q: query text, filters and page size.
	// Returns:
	//   - []domain.MediaCandidate: well-formed candidates; malformed records are skipped.
	//   - error: wraps ErrUnavailable when the source could not be queried.
	Search(ctx context.Context, q Query) ([]domain.MediaCandidate, error)
}
