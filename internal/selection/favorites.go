package selection

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/mreid/filmblend/internal/types"
)

// DefaultMaxMovies is the favorites cap when the caller does not give one.
const DefaultMaxMovies = 4

// CommonFavorites returns up to maxMovies films both users rated highly,
// searched tier by tier: both at 5.0 first, then the 5.0/4.5 splits, then
// both at 4.5. Each tier is shuffled before truncation so equally strong
// matches do not always surface in store order; lower tiers are never
// touched once the cap is reached. The final set is ordered by user A's
// rating descending, then title. Posters are attached best-effort.
func (s *Selector) CommonFavorites(ctx context.Context, userA, userB string, maxMovies int) ([]types.CommonFilm, error) {
	if maxMovies <= 0 {
		maxMovies = DefaultMaxMovies
	}

	fiveA, err := s.store.UserFilmsRated(ctx, userA, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s's five-star films: %w", userA, err)
	}
	fiveB, err := s.store.UserFilmsRated(ctx, userB, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s's five-star films: %w", userB, err)
	}

	result := s.fillTier(nil, pairTier(fiveA, fiveB, 5, 5, types.MatchPerfect), maxMovies)

	if len(result) < maxMovies {
		halfA, err := s.store.UserFilmsRated(ctx, userA, 4.5)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s's four-and-a-half-star films: %w", userA, err)
		}
		halfB, err := s.store.UserFilmsRated(ctx, userB, 4.5)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s's four-and-a-half-star films: %w", userB, err)
		}

		// One loves it, the other really likes it; both directions, one entry
		// per film.
		mixed := append(pairTier(fiveA, halfB, 5, 4.5, types.MatchExcellent),
			pairTier(halfA, fiveB, 4.5, 5, types.MatchExcellent)...)
		result = s.fillTier(result, dedupe(mixed, result), maxMovies)

		if len(result) < maxMovies {
			both := pairTier(halfA, halfB, 4.5, 4.5, types.MatchExcellent)
			result = s.fillTier(result, dedupe(both, result), maxMovies)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UserARating != result[j].UserARating {
			return result[i].UserARating > result[j].UserARating
		}
		return result[i].Title < result[j].Title
	})

	s.attachPosters(ctx, result)
	return result, nil
}

// pairTier intersects two rated slices by slug into CommonFilms with the
// given ratings and match strength.
func pairTier(filmsA, filmsB []types.FilmEntry, ratingA, ratingB float64, strength types.MatchStrength) []types.CommonFilm {
	bySlug := make(map[string]types.FilmEntry, len(filmsB))
	for _, f := range filmsB {
		bySlug[f.FilmSlug] = f
	}

	var tier []types.CommonFilm
	for _, f := range filmsA {
		if _, ok := bySlug[f.FilmSlug]; !ok {
			continue
		}
		tier = append(tier, types.CommonFilm{
			FilmSlug:      f.FilmSlug,
			Title:         displayTitle(f),
			UserARating:   ratingA,
			UserBRating:   ratingB,
			MatchStrength: strength,
		})
	}
	return tier
}

// fillTier shuffles a tier and appends as many entries as capacity allows.
func (s *Selector) fillTier(result, tier []types.CommonFilm, maxMovies int) []types.CommonFilm {
	shuffle(s, tier)
	remaining := maxMovies - len(result)
	if remaining > len(tier) {
		remaining = len(tier)
	}
	return append(result, tier[:remaining]...)
}

// dedupe drops tier entries already selected or repeated within the tier.
func dedupe(tier, selected []types.CommonFilm) []types.CommonFilm {
	seen := make(map[string]bool, len(selected))
	for _, f := range selected {
		seen[f.FilmSlug] = true
	}
	var unique []types.CommonFilm
	for _, f := range tier {
		if seen[f.FilmSlug] {
			continue
		}
		seen[f.FilmSlug] = true
		unique = append(unique, f)
	}
	return unique
}

// attachPosters enriches selected films with poster and year. Missing
// metadata is not an error; the selection stands either way.
func (s *Selector) attachPosters(ctx context.Context, films []types.CommonFilm) {
	for i := range films {
		meta, err := s.metadata.FilmMetadata(ctx, films[i].FilmSlug)
		if err != nil {
			log.Printf("poster lookup failed for %s: %v", films[i].FilmSlug, err)
			continue
		}
		if meta == nil {
			continue
		}
		films[i].PosterURL = meta.PosterURL
		films[i].Year = meta.Year
		if meta.Title != "" {
			films[i].Title = meta.Title
		}
	}
}

func displayTitle(f types.FilmEntry) string {
	if f.Title != "" {
		return f.Title
	}
	return f.FilmSlug
}
