// Package compat implements the compatibility scoring engine: six pure metric
// functions over two users' film histories, an aggregator that sums them into
// a total score with auxiliary statistics, and the metadata readiness gate
// that guards the aggregator against partially enriched data.
package compat

import (
	"math"
	"strings"

	"github.com/mreid/filmblend/internal/types"
)

// Weights of the rating alignment sub-components.
const (
	agreementWeight   = 0.5
	madWeight         = 0.3
	correlationWeight = 0.2
)

// Tunables shared with the metric functions. The normalizer 3 is the widest
// plausible half-star spread; DefaultObscurityBins and the director threshold
// match the source site's scale.
const (
	madNormalizer          = 3.0
	DefaultObscurityBins   = 12
	DefaultDirectorMinimum = 3
	DefaultDiversityCap    = 20
)

// pairedRatings aligns the ratings both users gave to the same films.
// Films either user left unrated are excluded.
func pairedRatings(userAFilms, userBFilms []types.FilmEntry) (ratingsA, ratingsB []float64) {
	ratedB := make(map[string]float64, len(userBFilms))
	for _, f := range userBFilms {
		if f.Rating != nil {
			ratedB[f.FilmSlug] = *f.Rating
		}
	}
	for _, f := range userAFilms {
		if f.Rating == nil {
			continue
		}
		if b, ok := ratedB[f.FilmSlug]; ok {
			ratingsA = append(ratingsA, *f.Rating)
			ratingsB = append(ratingsB, b)
		}
	}
	return ratingsA, ratingsB
}

// RatingAlignmentScore blends agreement rate, scaled mean absolute difference
// and scaled Pearson correlation over the commonly rated films. Out of 50.
// The MAD component is deliberately not clamped, so extreme disagreement can
// drag the score below zero.
func RatingAlignmentScore(userAFilms, userBFilms []types.FilmEntry) float64 {
	ratingsA, ratingsB := pairedRatings(userAFilms, userBFilms)
	if len(ratingsA) == 0 {
		return 0.0
	}

	agreementCount := 0
	totalDifference := 0.0
	for i := range ratingsA {
		diff := math.Abs(ratingsA[i] - ratingsB[i])
		if diff <= 0.5 {
			agreementCount++
		}
		totalDifference += diff
	}

	n := float64(len(ratingsA))
	agreementRate := float64(agreementCount) / n
	madScaled := 1 - (totalDifference/n)/madNormalizer
	correlationScaled := (pearson(ratingsA, ratingsB) + 1) / 2

	score := agreementWeight*agreementRate + madWeight*madScaled + correlationWeight*correlationScaled
	return round2(score * 50)
}

// pearson computes the sample Pearson correlation of two equal-length
// vectors. Returns 0 when either variance is zero or fewer than two pairs
// exist.
func pearson(a, b []float64) float64 {
	if len(a) < 2 {
		return 0.0
	}

	meanA, meanB := 0.0, 0.0
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(len(a))
	meanB /= float64(len(b))

	numerator, denomA, denomB := 0.0, 0.0, 0.0
	for i := range a {
		diffA := a[i] - meanA
		diffB := b[i] - meanB
		numerator += diffA * diffB
		denomA += diffA * diffA
		denomB += diffB * diffB
	}

	if denomA <= 0 || denomB <= 0 {
		return 0.0
	}
	return numerator / math.Sqrt(denomA*denomB)
}

// RelativeOverlapScore measures how much of the smaller history the mutual
// set covers, softened with a concave exponent so partial overlap is still
// rewarded. Out of 10.
func RelativeOverlapScore(userAFilms, userBFilms []types.FilmEntry) float64 {
	slugsA := slugSet(userAFilms)
	slugsB := slugSet(userBFilms)
	if len(slugsA) == 0 || len(slugsB) == 0 {
		return 0.0
	}

	mutual := 0
	for slug := range slugsA {
		if slugsB[slug] {
			mutual++
		}
	}

	minSize := len(slugsA)
	if len(slugsB) < minSize {
		minSize = len(slugsB)
	}

	softened := math.Pow(float64(mutual)/float64(minSize), 0.7)
	return round2(softened * 10)
}

// ThematicOverlapScore is the Jaccard index of the genre vocabularies each
// user has ever watched, over the whole history rather than common films
// only. Out of 10.
func ThematicOverlapScore(userAFilms, userBFilms []types.FilmEntry) float64 {
	genresA := genreSet(userAFilms)
	genresB := genreSet(userBFilms)
	if len(genresA) == 0 || len(genresB) == 0 {
		return 0.0
	}

	mutual := 0
	union := len(genresB)
	for g := range genresA {
		if genresB[g] {
			mutual++
		} else {
			union++
		}
	}

	return round2(float64(mutual) / float64(union) * 10)
}

// ObscurityAlignmentScore compares the shape of each user's popularity taste.
// Popularity values go through log1p, the combined range is split into bins,
// each user's histogram is converted to percentages, and the score falls off
// with the Manhattan distance between the two percentage vectors. Out of 10.
func ObscurityAlignmentScore(userAFilms, userBFilms []types.FilmEntry, bins int) float64 {
	popularityA := logPopularity(userAFilms)
	popularityB := logPopularity(userBFilms)
	if len(popularityA) == 0 || len(popularityB) == 0 {
		return 0.0
	}

	minPop, maxPop := popularityA[0], popularityA[0]
	for _, p := range append(append([]float64{}, popularityA...), popularityB...) {
		if p < minPop {
			minPop = p
		}
		if p > maxPop {
			maxPop = p
		}
	}

	binSize := (maxPop - minPop) / float64(bins)
	if binSize == 0 {
		return 0.0
	}

	histA := histogram(popularityA, minPop, binSize, bins)
	histB := histogram(popularityB, minPop, binSize, bins)

	distance := 0.0
	for i := 0; i < bins; i++ {
		pctA := float64(histA[i]) / float64(len(popularityA)) * 100
		pctB := float64(histB[i]) / float64(len(popularityB)) * 100
		distance += math.Abs(pctA - pctB)
	}

	return round2((1 - distance/200) * 10)
}

// DirectorOverlapScore compares the users' favorite directors, i.e. those
// appearing at least minCount times in a history. The score is the softened
// average coverage of each favorite set by the mutual set. Out of 10.
func DirectorOverlapScore(userAFilms, userBFilms []types.FilmEntry, minCount int) float64 {
	favoritesA := favoriteDirectors(userAFilms, minCount)
	favoritesB := favoriteDirectors(userBFilms, minCount)
	if len(favoritesA) == 0 || len(favoritesB) == 0 {
		return 0.0
	}

	mutual := 0
	for name := range favoritesA {
		if favoritesB[name] {
			mutual++
		}
	}

	coverageA := float64(mutual) / float64(len(favoritesA))
	coverageB := float64(mutual) / float64(len(favoritesB))
	softened := math.Pow((coverageA+coverageB)/2, 0.5)
	return round2(softened * 10)
}

// DiversityBonus rewards breadth of the shared history: the number of
// distinct genres on films both users watched, capped at maxGenres. Out of
// 10. Ratings are irrelevant here; watching is enough.
func DiversityBonus(userAFilms, userBFilms []types.FilmEntry, maxGenres int) float64 {
	slugsB := slugSet(userBFilms)
	mutual := make(map[string]bool)
	for _, f := range userAFilms {
		if slugsB[f.FilmSlug] {
			mutual[f.FilmSlug] = true
		}
	}
	if len(mutual) == 0 {
		return 0.0
	}

	genres := make(map[string]bool)
	collect := func(films []types.FilmEntry) {
		for _, f := range films {
			if !mutual[f.FilmSlug] {
				continue
			}
			for _, g := range f.Genres {
				genres[strings.TrimSpace(g)] = true
			}
		}
	}
	collect(userAFilms)
	collect(userBFilms)

	count := len(genres)
	if count > maxGenres {
		count = maxGenres
	}
	return round2(float64(count) / float64(maxGenres) * 10)
}

func slugSet(films []types.FilmEntry) map[string]bool {
	set := make(map[string]bool, len(films))
	for _, f := range films {
		set[f.FilmSlug] = true
	}
	return set
}

func genreSet(films []types.FilmEntry) map[string]bool {
	set := make(map[string]bool)
	for _, f := range films {
		for _, g := range f.Genres {
			set[strings.TrimSpace(g)] = true
		}
	}
	return set
}

func favoriteDirectors(films []types.FilmEntry, minCount int) map[string]bool {
	counts := make(map[string]int)
	for _, f := range films {
		for _, d := range f.Directors {
			counts[strings.TrimSpace(d)]++
		}
	}
	favorites := make(map[string]bool)
	for name, count := range counts {
		if count >= minCount {
			favorites[name] = true
		}
	}
	return favorites
}

func logPopularity(films []types.FilmEntry) []float64 {
	var values []float64
	for _, f := range films {
		if f.Popularity != nil {
			values = append(values, math.Log1p(float64(*f.Popularity)))
		}
	}
	return values
}

func histogram(values []float64, min, binSize float64, bins int) []int {
	hist := make([]int, bins)
	for _, v := range values {
		idx := int(math.Floor((v - min) / binSize))
		if idx >= bins {
			idx = bins - 1
		}
		hist[idx]++
	}
	return hist
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
