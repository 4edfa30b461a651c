package db

import (
	"context"
	"fmt"

	"github.com/mreid/filmblend/internal/types"
)

// userFilmsPageSize matches the storage backend's result window; histories
// larger than one page are fetched page by page until a short page arrives.
const userFilmsPageSize = 1000

// UpsertUserFilms stores one user's scraped watch history. Existing entries
// for the same film are overwritten so re-scrapes pick up rating changes.
func (db *DB) UpsertUserFilms(ctx context.Context, films []types.FilmEntry) error {
	for _, f := range films {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO user_films (user_handle, film_slug, film_title, rating, liked)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (user_handle, film_slug)
			 DO UPDATE SET film_title = $3, rating = $4, liked = $5, scraped_at = NOW()`,
			f.UserHandle, f.FilmSlug, f.Title, f.Rating, f.Liked,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert film %s for %s: %w", f.FilmSlug, f.UserHandle, err)
		}
	}
	return nil
}

// UserFilms returns a user's complete history joined with film metadata,
// paging through the table in fixed windows to avoid truncating long
// histories.
func (db *DB) UserFilms(ctx context.Context, handle string) ([]types.FilmEntry, error) {
	var all []types.FilmEntry
	for offset := 0; ; offset += userFilmsPageSize {
		page, err := db.userFilmsPage(ctx, handle, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < userFilmsPageSize {
			return all, nil
		}
	}
}

func (db *DB) userFilmsPage(ctx context.Context, handle string, offset int) ([]types.FilmEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT uf.user_handle, uf.film_slug, COALESCE(f.film_title, uf.film_title),
		        uf.rating, uf.liked, f.year, f.poster_url, f.genres, f.directors, f.popularity
		 FROM user_films uf
		 LEFT JOIN films f ON f.film_slug = uf.film_slug
		 WHERE uf.user_handle = $1
		 ORDER BY uf.film_slug
		 LIMIT $2 OFFSET $3`,
		handle, userFilmsPageSize, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query films for %s: %w", handle, err)
	}
	defer rows.Close()

	var films []types.FilmEntry
	for rows.Next() {
		var f types.FilmEntry
		if err := rows.Scan(&f.UserHandle, &f.FilmSlug, &f.Title, &f.Rating, &f.Liked,
			&f.Year, &f.PosterURL, &f.Genres, &f.Directors, &f.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan film for %s: %w", handle, err)
		}
		films = append(films, f)
	}
	return films, rows.Err()
}

// UserFilmsRated returns only the entries the user gave exactly the given
// rating.
func (db *DB) UserFilmsRated(ctx context.Context, handle string, rating float64) ([]types.FilmEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT uf.user_handle, uf.film_slug, COALESCE(f.film_title, uf.film_title),
		        uf.rating, uf.liked, f.year, f.poster_url, f.genres, f.directors, f.popularity
		 FROM user_films uf
		 LEFT JOIN films f ON f.film_slug = uf.film_slug
		 WHERE uf.user_handle = $1 AND uf.rating = $2
		 ORDER BY uf.film_slug`,
		handle, rating,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %.1f-rated films for %s: %w", rating, handle, err)
	}
	defer rows.Close()

	var films []types.FilmEntry
	for rows.Next() {
		var f types.FilmEntry
		if err := rows.Scan(&f.UserHandle, &f.FilmSlug, &f.Title, &f.Rating, &f.Liked,
			&f.Year, &f.PosterURL, &f.Genres, &f.Directors, &f.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan film for %s: %w", handle, err)
		}
		films = append(films, f)
	}
	return films, rows.Err()
}

// UserFilmCount returns how many films are stored for a user.
func (db *DB) UserFilmCount(ctx context.Context, handle string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_films WHERE user_handle = $1`, handle,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count films for %s: %w", handle, err)
	}
	return count, nil
}

// DeleteUserFilms removes a user's stored history, typically before a full
// re-scrape.
func (db *DB) DeleteUserFilms(ctx context.Context, handle string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM user_films WHERE user_handle = $1`, handle)
	if err != nil {
		return fmt.Errorf("failed to delete films for %s: %w", handle, err)
	}
	return nil
}
