package scrape

import (
	"context"
	"fmt"
	"log"

	"github.com/mreid/filmblend/internal/types"
)

// Site is the scraping surface the sync logic needs, satisfied by Client.
type Site interface {
	WatchedFilms(ctx context.Context, handle string) ([]types.FilmEntry, error)
	FilmMetadataBatch(ctx context.Context, slugs []string) ([]types.FilmMetadata, error)
}

// Store is the persistence surface the sync logic needs, satisfied by db.DB.
type Store interface {
	UpsertUserFilms(ctx context.Context, films []types.FilmEntry) error
	ExistingSlugs(ctx context.Context, slugs []string) (map[string]bool, error)
	UpsertFilm(ctx context.Context, meta types.FilmMetadata) error
	FilmsMissingMetadata(ctx context.Context, limit int) ([]string, error)
}

// Runner ties scraping to storage: pull a user's history, persist it, and
// enrich any films the database has not seen yet.
type Runner struct {
	site  Site
	store Store
}

// NewRunner creates a Runner over the given site client and store.
func NewRunner(site Site, store Store) *Runner {
	return &Runner{site: site, store: store}
}

// SyncUser scrapes one user's full history, stores it, and scrapes metadata
// for every film not already on record. Returns the history size.
func (r *Runner) SyncUser(ctx context.Context, handle string) (int, error) {
	films, err := r.site.WatchedFilms(ctx, handle)
	if err != nil {
		return 0, fmt.Errorf("failed to scrape history for %s: %w", handle, err)
	}
	if err := r.store.UpsertUserFilms(ctx, films); err != nil {
		return 0, err
	}
	log.Printf("stored %d films for %s", len(films), handle)

	slugs := make([]string, 0, len(films))
	for _, f := range films {
		slugs = append(slugs, f.FilmSlug)
	}
	existing, err := r.store.ExistingSlugs(ctx, slugs)
	if err != nil {
		return 0, err
	}

	var missing []string
	for _, slug := range slugs {
		if !existing[slug] {
			missing = append(missing, slug)
		}
	}
	if len(missing) == 0 {
		return len(films), nil
	}
	log.Printf("scraping metadata for %d new films from %s's history", len(missing), handle)

	if err := r.enrichSlugs(ctx, missing); err != nil {
		return 0, err
	}
	return len(films), nil
}

// EnrichMissing backfills metadata for films whose stored record is missing
// any field the scoring engine requires. Returns how many films were
// refreshed.
func (r *Runner) EnrichMissing(ctx context.Context, limit int) (int, error) {
	slugs, err := r.store.FilmsMissingMetadata(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(slugs) == 0 {
		return 0, nil
	}
	log.Printf("enriching %d films with missing metadata", len(slugs))

	if err := r.enrichSlugs(ctx, slugs); err != nil {
		return 0, err
	}
	return len(slugs), nil
}

func (r *Runner) enrichSlugs(ctx context.Context, slugs []string) error {
	metas, err := r.site.FilmMetadataBatch(ctx, slugs)
	if err != nil {
		return fmt.Errorf("failed to scrape film metadata: %w", err)
	}
	for _, meta := range metas {
		if err := r.store.UpsertFilm(ctx, meta); err != nil {
			return err
		}
	}
	return nil
}
