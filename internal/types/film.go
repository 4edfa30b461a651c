// Package types provides type definitions for structured data used throughout the filmblend system.
package types

// FilmEntry is one user's relationship to one film, joined with the film's
// metadata. This is the unit the scoring engine consumes. A nil Rating means
// "watched but not rated", which is semantically distinct from a 0 rating.
type FilmEntry struct {
	UserHandle string   `json:"user_handle"`
	FilmSlug   string   `json:"film_slug"`
	Title      string   `json:"film_title,omitempty"`
	Rating     *float64 `json:"rating"`
	Liked      bool     `json:"liked"`
	Year       *int     `json:"year,omitempty"`
	PosterURL  *string  `json:"poster_url,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Directors  []string `json:"directors,omitempty"`
	Popularity *int     `json:"popularity,omitempty"`
}

// Enriched reports whether the film carries the full metadata the scoring
// engine depends on. Genres, directors and popularity must all be present.
func (f *FilmEntry) Enriched() bool {
	return f.Genres != nil && f.Directors != nil && f.Popularity != nil
}

// FilmMetadata is the enrichment record for one film, keyed by slug.
type FilmMetadata struct {
	FilmSlug   string   `json:"film_slug"`
	Title      string   `json:"film_title"`
	Year       *int     `json:"year"`
	PosterURL  *string  `json:"poster_url"`
	Genres     []string `json:"genres"`
	Directors  []string `json:"directors"`
	Popularity *int     `json:"popularity"`
}

// Rating constants for the half-star scale used by the source site.
const (
	MaxRating = 5.0
	MinRating = 0.5
)
