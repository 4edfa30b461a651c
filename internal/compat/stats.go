package compat

import (
	"math"
	"sort"
	"strings"

	"github.com/mreid/filmblend/internal/types"
)

// Favorite-credit tunables: a genre/director needs at least two common films
// to count, the occurrence weight is capped, and only the top few are kept.
const (
	favoriteMinimumCount = 2
	favoriteWeightCap    = 5
	favoriteTopCount     = 3
)

// AverageRatingDifference is the mean absolute rating gap over commonly
// rated films, rounded to one decimal. 0 when there are none.
func AverageRatingDifference(userAFilms, userBFilms []types.FilmEntry) float64 {
	ratingsA, ratingsB := pairedRatings(userAFilms, userBFilms)
	if len(ratingsA) == 0 {
		return 0.0
	}

	total := 0.0
	for i := range ratingsA {
		diff := ratingsA[i] - ratingsB[i]
		if diff < 0 {
			diff = -diff
		}
		total += diff
	}
	return round1(total / float64(len(ratingsA)))
}

// SameRatingPercentage is the share of commonly rated films where both users
// landed on exactly the same rating, rounded to the nearest whole percent.
func SameRatingPercentage(userAFilms, userBFilms []types.FilmEntry) int {
	ratingsA, ratingsB := pairedRatings(userAFilms, userBFilms)
	if len(ratingsA) == 0 {
		return 0
	}

	same := 0
	for i := range ratingsA {
		if ratingsA[i] == ratingsB[i] {
			same++
		}
	}
	return int(math.Round(float64(same) / float64(len(ratingsA)) * 100))
}

// CommonFilms returns the entries of userBFilms whose slug also appears in
// userAFilms. The favorite-credit statistics run over this view.
func CommonFilms(userAFilms, userBFilms []types.FilmEntry) []types.FilmEntry {
	slugsA := slugSet(userAFilms)
	var common []types.FilmEntry
	for _, f := range userBFilms {
		if slugsA[f.FilmSlug] {
			common = append(common, f)
		}
	}
	return common
}

// FavoriteGenres ranks the genres of the common films by weighted score:
// average rating times occurrence count capped at favoriteWeightCap. Genres
// on fewer than favoriteMinimumCount rated films are dropped; the top
// favoriteTopCount survive, best first.
func FavoriteGenres(commonFilms []types.FilmEntry) []types.FavoriteCredit {
	return favoriteCredits(commonFilms, func(f types.FilmEntry) []string { return f.Genres })
}

// FavoriteDirectors ranks the directors of the common films the same way
// FavoriteGenres ranks genres.
func FavoriteDirectors(commonFilms []types.FilmEntry) []types.FavoriteCredit {
	return favoriteCredits(commonFilms, func(f types.FilmEntry) []string { return f.Directors })
}

func favoriteCredits(films []types.FilmEntry, names func(types.FilmEntry) []string) []types.FavoriteCredit {
	type tally struct {
		totalRating float64
		count       int
	}
	stats := make(map[string]*tally)

	for _, f := range films {
		if f.Rating == nil {
			continue
		}
		for _, name := range names(f) {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if stats[name] == nil {
				stats[name] = &tally{}
			}
			stats[name].totalRating += *f.Rating
			stats[name].count++
		}
	}

	var credits []types.FavoriteCredit
	for name, t := range stats {
		if t.count < favoriteMinimumCount {
			continue
		}
		average := t.totalRating / float64(t.count)
		weight := t.count
		if weight > favoriteWeightCap {
			weight = favoriteWeightCap
		}
		credits = append(credits, types.FavoriteCredit{
			Name:          name,
			AverageRating: round1(average),
			FilmCount:     t.count,
			WeightedScore: round1(average * float64(weight)),
		})
	}

	sort.Slice(credits, func(i, j int) bool {
		if credits[i].WeightedScore != credits[j].WeightedScore {
			return credits[i].WeightedScore > credits[j].WeightedScore
		}
		return credits[i].Name < credits[j].Name
	})

	if len(credits) > favoriteTopCount {
		credits = credits[:favoriteTopCount]
	}
	return credits
}

// AveragePopularity is a user's mean raw popularity rounded to two decimals,
// nil when no film has known popularity.
func AveragePopularity(films []types.FilmEntry) *float64 {
	total, count := 0.0, 0
	for _, f := range films {
		if f.Popularity != nil {
			total += float64(*f.Popularity)
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := round2(total / float64(count))
	return &avg
}
