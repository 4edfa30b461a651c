package selection

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mreid/filmblend/internal/types"
)

// probeConcurrency caps the number of in-flight review probes per selection.
const probeConcurrency = 4

// candidate is a film both users rated, annotated with review presence once
// the tie-break needs it.
type candidate struct {
	slug      string
	title     string
	ratingA   *float64
	ratingB   *float64
	score     float64
	reviewedA bool
	reviewedB bool
}

// BiggestDisagreement returns the film where the two users' ratings diverge
// the most. Only films rated by both sides qualify; an unrated side means the
// user chose not to rate, never a zero. Ties at the maximal difference are
// broken by preferring films both users reviewed, then films at least one
// reviewed, then uniform random. Returns nil with no error when the users
// share no rated films.
func (s *Selector) BiggestDisagreement(ctx context.Context, userA, userB string) (*types.DisagreementFilm, error) {
	var filmsA, filmsB []types.FilmEntry
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if filmsA, err = s.store.UserFilms(gCtx, userA); err != nil {
			return fmt.Errorf("failed to fetch films for %s: %w", userA, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if filmsB, err = s.store.UserFilms(gCtx, userB); err != nil {
			return fmt.Errorf("failed to fetch films for %s: %w", userB, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := bothRated(filmsA, filmsB)
	if len(pool) == 0 {
		return nil, nil
	}

	pool = maxDifference(pool)
	s.probeReviews(ctx, pool, userA, userB)

	// Narrowing cascade: the first stage that leaves a non-empty pool wins.
	for _, narrow := range []func([]candidate) []candidate{bothReviewed, anyReviewed} {
		if narrowed := narrow(pool); len(narrowed) > 0 {
			pool = narrowed
			break
		}
	}

	chosen := pool[s.intn(len(pool))]
	return s.enrichDisagreement(ctx, chosen, userA, userB)
}

// bothRated pairs up the films both users actually rated.
func bothRated(filmsA, filmsB []types.FilmEntry) []candidate {
	bySlug := make(map[string]types.FilmEntry, len(filmsB))
	for _, f := range filmsB {
		bySlug[f.FilmSlug] = f
	}

	var pool []candidate
	for _, a := range filmsA {
		b, ok := bySlug[a.FilmSlug]
		if !ok || a.Rating == nil || b.Rating == nil {
			continue
		}
		diff := *a.Rating - *b.Rating
		if diff < 0 {
			diff = -diff
		}
		pool = append(pool, candidate{
			slug:    a.FilmSlug,
			title:   displayTitle(a),
			ratingA: a.Rating,
			ratingB: b.Rating,
			score:   diff,
		})
	}
	return pool
}

// maxDifference keeps only the candidates at the maximal rating gap.
func maxDifference(pool []candidate) []candidate {
	max := 0.0
	for _, c := range pool {
		if c.score > max {
			max = c.score
		}
	}
	var top []candidate
	for _, c := range pool {
		if c.score == max {
			top = append(top, c)
		}
	}
	return top
}

// probeReviews asks the source site which candidates each user reviewed.
// Probes are idempotent reads and run concurrently; a failed probe counts as
// "no review" rather than failing the selection.
func (s *Selector) probeReviews(ctx context.Context, pool []candidate, userA, userB string) {
	g := errgroup.Group{}
	g.SetLimit(probeConcurrency)

	for i := range pool {
		g.Go(func() error {
			pool[i].reviewedA = s.hasReview(ctx, userA, pool[i].slug)
			return nil
		})
		g.Go(func() error {
			pool[i].reviewedB = s.hasReview(ctx, userB, pool[i].slug)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Selector) hasReview(ctx context.Context, handle, slug string) bool {
	has, err := s.probe.HasReview(ctx, handle, slug)
	if err != nil {
		log.Printf("review probe failed for %s on %s: %v", handle, slug, err)
		return false
	}
	return has
}

func bothReviewed(pool []candidate) []candidate {
	var out []candidate
	for _, c := range pool {
		if c.reviewedA && c.reviewedB {
			out = append(out, c)
		}
	}
	return out
}

func anyReviewed(pool []candidate) []candidate {
	var out []candidate
	for _, c := range pool {
		if c.reviewedA || c.reviewedB {
			out = append(out, c)
		}
	}
	return out
}

// enrichDisagreement attaches metadata and both users' review texts to the
// chosen film, then runs the final rating guard: a nil rating here is a
// correctness bug upstream and yields no result rather than bad data.
func (s *Selector) enrichDisagreement(ctx context.Context, chosen candidate, userA, userB string) (*types.DisagreementFilm, error) {
	if chosen.ratingA == nil || chosen.ratingB == nil {
		log.Printf("invariant violation: disagreement candidate %s has a nil rating", chosen.slug)
		return nil, nil
	}

	result := &types.DisagreementFilm{
		FilmSlug:          chosen.slug,
		Title:             chosen.title,
		UserAHandle:       userA,
		UserBHandle:       userB,
		UserARating:       *chosen.ratingA,
		UserBRating:       *chosen.ratingB,
		DisagreementScore: chosen.score,
	}

	meta, err := s.metadata.FilmMetadata(ctx, chosen.slug)
	if err != nil {
		log.Printf("metadata lookup failed for %s: %v", chosen.slug, err)
	} else if meta != nil {
		result.Year = meta.Year
		result.PosterURL = meta.PosterURL
		result.Director = strings.Join(meta.Directors, ", ")
		if meta.Title != "" {
			result.Title = meta.Title
		}
	}

	// Fetch both review texts concurrently; failures leave the text nil.
	g := errgroup.Group{}
	g.Go(func() error {
		result.UserAReview = s.reviewText(ctx, userA, chosen.slug)
		return nil
	})
	g.Go(func() error {
		result.UserBReview = s.reviewText(ctx, userB, chosen.slug)
		return nil
	})
	_ = g.Wait()

	return result, nil
}

func (s *Selector) reviewText(ctx context.Context, handle, slug string) *string {
	text, err := s.probe.ReviewText(ctx, handle, slug)
	if err != nil {
		log.Printf("review text fetch failed for %s on %s: %v", handle, slug, err)
		return nil
	}
	return text
}
