package compat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreid/filmblend/internal/types"
)

// fakeSource serves film lists from memory and can be scripted to fail.
type fakeSource struct {
	films map[string][]types.FilmEntry
	err   error
}

func (s *fakeSource) UserFilms(_ context.Context, handle string) ([]types.FilmEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.films[handle], nil
}

func enrichedHistory(prefix string, ratings []float64) []types.FilmEntry {
	var films []types.FilmEntry
	for i, r := range ratings {
		films = append(films, film(prefix+slug(i), rating(r), []string{"Drama"}, []string{"Varda"}, 100*(i+1)))
	}
	return films
}

func TestEngineCompatibility_TotalIsSumOfSubScores(t *testing.T) {
	shared := enrichedHistory("s", []float64{5, 4, 3, 2})
	source := &fakeSource{films: map[string][]types.FilmEntry{
		"alice": shared,
		"bob":   append(enrichedHistory("b", []float64{1, 2}), shared...),
	}}
	engine := NewEngine(source)

	report, err := engine.Compatibility(context.Background(), "alice", "bob")
	require.NoError(t, err)

	sum := report.Scores.RatingAlignment + report.Scores.RelativeOverlap +
		report.Scores.ThematicOverlap + report.Scores.ObscurityAlignment +
		report.Scores.DirectorOverlap + report.Scores.DiversityBonus
	assert.InDelta(t, sum, report.TotalScore, 0.01)
	assert.Equal(t, 4, report.Stats.FilmsUserA)
	assert.Equal(t, 6, report.Stats.FilmsUserB)
	assert.Equal(t, 4, report.Stats.CommonFilms)
}

func TestEngineCompatibility_Idempotent(t *testing.T) {
	source := &fakeSource{films: map[string][]types.FilmEntry{
		"alice": enrichedHistory("s", []float64{5, 4, 3}),
		"bob":   enrichedHistory("s", []float64{4, 4, 2}),
	}}
	engine := NewEngine(source)

	first, err := engine.Compatibility(context.Background(), "alice", "bob")
	require.NoError(t, err)
	second, err := engine.Compatibility(context.Background(), "alice", "bob")
	require.NoError(t, err)

	assert.Equal(t, first.TotalScore, second.TotalScore)
	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestEngineCompatibility_NoData(t *testing.T) {
	source := &fakeSource{films: map[string][]types.FilmEntry{
		"alice": enrichedHistory("s", []float64{5}),
	}}
	engine := NewEngine(source)

	_, err := engine.Compatibility(context.Background(), "alice", "ghost")

	var noData *NoDataError
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, "alice", noData.UserA)
	assert.Equal(t, "ghost", noData.UserB)
}

func TestEngineCompatibility_MissingPopularityBlocksScoring(t *testing.T) {
	incomplete := enrichedHistory("s", []float64{5, 4})
	incomplete[1].Popularity = nil // genres and directors still present

	source := &fakeSource{films: map[string][]types.FilmEntry{
		"alice": incomplete,
		"bob":   enrichedHistory("s", []float64{4, 4}),
	}}
	engine := NewEngine(source)

	_, err := engine.Compatibility(context.Background(), "alice", "bob")

	var notReady *NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, 1, notReady.Status.UserAMissing)
	assert.Equal(t, 0, notReady.Status.UserBMissing)
	assert.Equal(t, 1, notReady.Status.TotalMissing)
	assert.Equal(t, []string{"sb"}, notReady.Status.MissingUserA)
}

func TestEngineCompatibility_SourceFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	engine := NewEngine(&fakeSource{err: boom})

	_, err := engine.Compatibility(context.Background(), "alice", "bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestScore_PerfectTwin(t *testing.T) {
	history := enrichedHistory("s", []float64{5, 4, 3, 2, 1})

	scores, total := Score(history, history)

	assert.Equal(t, 50.0, scores.RatingAlignment)
	assert.Equal(t, 10.0, scores.RelativeOverlap)
	assert.Equal(t, 10.0, scores.ThematicOverlap)
	assert.Equal(t, 10.0, scores.ObscurityAlignment)
	assert.Equal(t, 10.0, scores.DirectorOverlap)
	// One shared genre across the common films: 1/20 of the diversity cap.
	assert.Equal(t, 0.5, scores.DiversityBonus)
	assert.Equal(t, 90.5, total)
}
