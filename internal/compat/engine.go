package compat

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mreid/filmblend/internal/types"
)

// FilmSource supplies a user's complete film history joined with metadata.
// Implementations must paginate exhaustively; a silently truncated list would
// distort every metric.
type FilmSource interface {
	UserFilms(ctx context.Context, handle string) ([]types.FilmEntry, error)
}

// Engine computes compatibility reports and readiness checks for user pairs.
// It holds no per-request state; a single Engine serves concurrent requests.
type Engine struct {
	source FilmSource
}

// NewEngine creates an engine backed by the given film source.
func NewEngine(source FilmSource) *Engine {
	return &Engine{source: source}
}

// Score runs the six metric functions over two histories and assembles the
// base report. Pure; the readiness gate must have passed already.
func Score(userAFilms, userBFilms []types.FilmEntry) (types.SubScores, float64) {
	scores := types.SubScores{
		RatingAlignment:    RatingAlignmentScore(userAFilms, userBFilms),
		RelativeOverlap:    RelativeOverlapScore(userAFilms, userBFilms),
		ThematicOverlap:    ThematicOverlapScore(userAFilms, userBFilms),
		ObscurityAlignment: ObscurityAlignmentScore(userAFilms, userBFilms, DefaultObscurityBins),
		DirectorOverlap:    DirectorOverlapScore(userAFilms, userBFilms, DefaultDirectorMinimum),
		DiversityBonus:     DiversityBonus(userAFilms, userBFilms, DefaultDiversityCap),
	}

	total := scores.RatingAlignment + scores.RelativeOverlap + scores.ThematicOverlap +
		scores.ObscurityAlignment + scores.DirectorOverlap + scores.DiversityBonus

	// The sum is rounded but intentionally not clamped to [0,100]; sub-score
	// rounding can drift it slightly past the nominal bounds.
	return scores, round2(total)
}

// Compatibility fetches both histories, enforces the readiness gate and
// produces the full report. Returns *NoDataError when either user has no
// films and *NotReadyError when enrichment is incomplete.
func (e *Engine) Compatibility(ctx context.Context, userA, userB string) (*types.CompatibilityReport, error) {
	userAFilms, userBFilms, err := e.fetchPair(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	if len(userAFilms) == 0 || len(userBFilms) == 0 {
		return nil, &NoDataError{UserA: userA, UserB: userB}
	}

	if status := metadataStatus(userAFilms, userBFilms); status.TotalMissing > 0 {
		return nil, &NotReadyError{UserA: userA, UserB: userB, Status: status}
	}

	scores, total := Score(userAFilms, userBFilms)
	common := CommonFilms(userAFilms, userBFilms)

	report := &types.CompatibilityReport{
		UserA:      userA,
		UserB:      userB,
		Scores:     scores,
		TotalScore: total,
		Stats: types.CompatibilityStats{
			FilmsUserA:              len(userAFilms),
			FilmsUserB:              len(userBFilms),
			CommonFilms:             len(common),
			FavoriteGenres:          FavoriteGenres(common),
			FavoriteDirectors:       FavoriteDirectors(common),
			AverageRatingDifference: AverageRatingDifference(userAFilms, userBFilms),
			SameRatingPercentage:    SameRatingPercentage(userAFilms, userBFilms),
		},
		Popularity: types.PopularityAverages{
			UserA: AveragePopularity(userAFilms),
			UserB: AveragePopularity(userBFilms),
		},
	}
	return report, nil
}

// fetchPair loads both users' histories concurrently. The two fetches are
// independent; a failure of either fails the whole computation.
func (e *Engine) fetchPair(ctx context.Context, userA, userB string) ([]types.FilmEntry, []types.FilmEntry, error) {
	var userAFilms, userBFilms []types.FilmEntry

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		films, err := e.source.UserFilms(gCtx, userA)
		if err != nil {
			return fmt.Errorf("failed to fetch films for %s: %w", userA, err)
		}
		userAFilms = films
		return nil
	})
	g.Go(func() error {
		films, err := e.source.UserFilms(gCtx, userB)
		if err != nil {
			return fmt.Errorf("failed to fetch films for %s: %w", userB, err)
		}
		userBFilms = films
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return userAFilms, userBFilms, nil
}

// maxMissingSamples limits how many unenriched slugs a status report names.
const maxMissingSamples = 10

// metadataStatus counts films still missing genres, directors or popularity.
func metadataStatus(userAFilms, userBFilms []types.FilmEntry) types.MetadataStatus {
	missingA := missingSlugs(userAFilms)
	missingB := missingSlugs(userBFilms)

	status := types.MetadataStatus{
		UserATotal:   len(userAFilms),
		UserBTotal:   len(userBFilms),
		UserAMissing: len(missingA),
		UserBMissing: len(missingB),
		TotalMissing: len(missingA) + len(missingB),
		MissingUserA: sample(missingA, maxMissingSamples),
		MissingUserB: sample(missingB, maxMissingSamples),
	}
	return status
}

func missingSlugs(films []types.FilmEntry) []string {
	var missing []string
	for _, f := range films {
		if !f.Enriched() {
			missing = append(missing, f.FilmSlug)
		}
	}
	return missing
}

func sample(slugs []string, limit int) []string {
	if len(slugs) <= limit {
		return slugs
	}
	return slugs[:limit]
}
