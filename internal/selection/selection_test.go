package selection

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mreid/filmblend/internal/types"
)

type fakeStore struct {
	films map[string][]types.FilmEntry
	err   error
}

func (f *fakeStore) UserFilms(_ context.Context, handle string) ([]types.FilmEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.films[handle], nil
}

func (f *fakeStore) UserFilmsRated(_ context.Context, handle string, rating float64) ([]types.FilmEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []types.FilmEntry
	for _, film := range f.films[handle] {
		if film.Rating != nil && *film.Rating == rating {
			out = append(out, film)
		}
	}
	return out, nil
}

type fakeMetadata struct {
	bySlug map[string]*types.FilmMetadata
	err    error
}

func (f *fakeMetadata) FilmMetadata(_ context.Context, slug string) (*types.FilmMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySlug[slug], nil
}

type fakeProbe struct {
	reviews map[string]string // "handle/slug" -> review text
	err     error
}

func (f *fakeProbe) HasReview(_ context.Context, handle, slug string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.reviews[handle+"/"+slug]
	return ok, nil
}

func (f *fakeProbe) ReviewText(_ context.Context, handle, slug string) (*string, error) {
	if f.err != nil {
		return nil, f.err
	}
	text, ok := f.reviews[handle+"/"+slug]
	if !ok {
		return nil, nil
	}
	return &text, nil
}

func newTestSelector(store *fakeStore, metadata *fakeMetadata, probe *fakeProbe, seed int64) *Selector {
	if metadata == nil {
		metadata = &fakeMetadata{}
	}
	if probe == nil {
		probe = &fakeProbe{}
	}
	return New(store, metadata, probe, WithRand(rand.New(rand.NewSource(seed))))
}

func ratedFilm(handle string, i int, rating float64) types.FilmEntry {
	r := rating
	return types.FilmEntry{
		UserHandle: handle,
		FilmSlug:   fmt.Sprintf("film-%d", i),
		Title:      fmt.Sprintf("Film %d", i),
		Rating:     &r,
	}
}
