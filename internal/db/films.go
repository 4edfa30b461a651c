package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mreid/filmblend/internal/types"
)

// slugBatchSize bounds the slug lists passed to ANY() lookups.
const slugBatchSize = 50

// UpsertFilm stores or refreshes one film's metadata record.
func (db *DB) UpsertFilm(ctx context.Context, meta types.FilmMetadata) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO films (film_slug, film_title, year, poster_url, genres, directors, popularity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (film_slug)
		 DO UPDATE SET film_title = $2, year = $3, poster_url = $4,
		               genres = $5, directors = $6, popularity = $7, updated_at = NOW()`,
		meta.FilmSlug, meta.Title, meta.Year, meta.PosterURL, meta.Genres, meta.Directors, meta.Popularity,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert film %s: %w", meta.FilmSlug, err)
	}
	return nil
}

// FilmMetadata retrieves one film's metadata by slug. Returns nil when the
// film is unknown.
func (db *DB) FilmMetadata(ctx context.Context, slug string) (*types.FilmMetadata, error) {
	var meta types.FilmMetadata
	err := db.pool.QueryRow(ctx,
		`SELECT film_slug, COALESCE(film_title, ''), year, poster_url, genres, directors, popularity
		 FROM films WHERE film_slug = $1`,
		slug,
	).Scan(&meta.FilmSlug, &meta.Title, &meta.Year, &meta.PosterURL, &meta.Genres, &meta.Directors, &meta.Popularity)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get film %s: %w", slug, err)
	}
	return &meta, nil
}

// ExistingSlugs reports which of the given slugs already have a films row,
// querying in fixed-size batches.
func (db *DB) ExistingSlugs(ctx context.Context, slugs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(slugs))
	for start := 0; start < len(slugs); start += slugBatchSize {
		end := start + slugBatchSize
		if end > len(slugs) {
			end = len(slugs)
		}

		rows, err := db.pool.Query(ctx,
			`SELECT film_slug FROM films WHERE film_slug = ANY($1)`, slugs[start:end],
		)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing films: %w", err)
		}
		for rows.Next() {
			var slug string
			if err := rows.Scan(&slug); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan film slug: %w", err)
			}
			existing[slug] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to check existing films: %w", err)
		}
	}
	return existing, nil
}

// FilmsMissingMetadata lists slugs whose films row lacks any of the fields
// the scoring engine requires, for the enrichment backfill.
func (db *DB) FilmsMissingMetadata(ctx context.Context, limit int) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT film_slug FROM films
		 WHERE genres IS NULL OR directors IS NULL OR popularity IS NULL
		 ORDER BY film_slug
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list films missing metadata: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan film slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}
