// Package selection picks individual films out of two users' shared history:
// up to a handful of mutual favorites via a tiered rating-bracket search, and
// the single most interesting disagreement via a maximal-difference pool with
// a review-presence tie-break cascade.
package selection

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mreid/filmblend/internal/types"
)

// Store supplies film histories. UserFilmsRated returns only the entries a
// user gave exactly the given rating; UserFilms returns everything.
type Store interface {
	UserFilms(ctx context.Context, handle string) ([]types.FilmEntry, error)
	UserFilmsRated(ctx context.Context, handle string, rating float64) ([]types.FilmEntry, error)
}

// MetadataSource resolves film metadata for best-effort enrichment of
// already-selected films. A nil result means the film is unknown.
type MetadataSource interface {
	FilmMetadata(ctx context.Context, slug string) (*types.FilmMetadata, error)
}

// ReviewProbe answers whether a user wrote a review for a film on the source
// site, and fetches the text for the finally selected film.
type ReviewProbe interface {
	HasReview(ctx context.Context, handle, slug string) (bool, error)
	ReviewText(ctx context.Context, handle, slug string) (*string, error)
}

// Selector runs the favorites and disagreement selections. The randomness
// source is injectable so tests can pin tie-breaks to a seed.
type Selector struct {
	store    Store
	metadata MetadataSource
	probe    ReviewProbe

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option customizes a Selector.
type Option func(*Selector)

// WithRand replaces the default time-seeded randomness source.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) { s.rand = r }
}

// New creates a Selector over the given collaborators.
func New(store Store, metadata MetadataSource, probe ReviewProbe, opts ...Option) *Selector {
	s := &Selector{
		store:    store,
		metadata: metadata,
		probe:    probe,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// intn is a locked rand.Intn; the Selector is shared across requests.
func (s *Selector) intn(n int) int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Intn(n)
}

func shuffle[T any](s *Selector, items []T) {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	s.rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
