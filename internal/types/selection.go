package types

// MatchStrength labels how strongly both users rated a shared favorite.
type MatchStrength string

const (
	// MatchPerfect means both users rated the film 5.0.
	MatchPerfect MatchStrength = "perfect"
	// MatchExcellent means a 5.0/4.5 split or both at 4.5.
	MatchExcellent MatchStrength = "excellent"
)

// CommonFilm is a shared highly-rated film returned by the favorites selector.
type CommonFilm struct {
	FilmSlug      string        `json:"film_slug"`
	Title         string        `json:"title"`
	Year          *int          `json:"year,omitempty"`
	PosterURL     *string       `json:"poster_url"`
	UserARating   float64       `json:"user_a_rating"`
	UserBRating   float64       `json:"user_b_rating"`
	MatchStrength MatchStrength `json:"match_strength"`
}

// DisagreementFilm is the single most interesting disagreement between two
// users: both rated it, the absolute rating difference is maximal over all
// commonly rated films, and ties were broken by review presence.
type DisagreementFilm struct {
	FilmSlug          string   `json:"film_slug"`
	Title             string   `json:"title"`
	Year              *int     `json:"year,omitempty"`
	Director          string   `json:"director,omitempty"`
	PosterURL         *string  `json:"poster_url"`
	UserAHandle       string   `json:"user_a_handle"`
	UserBHandle       string   `json:"user_b_handle"`
	UserARating       float64  `json:"user_a_rating"`
	UserBRating       float64  `json:"user_b_rating"`
	DisagreementScore float64  `json:"disagreement_score"`
	UserAReview       *string  `json:"user_a_review"`
	UserBReview       *string  `json:"user_b_review"`
}

// FavoritesSummary aggregates a wide favorites sweep for the summary endpoint.
type FavoritesSummary struct {
	TotalCommonFiveStar int                  `json:"total_common_five_star"`
	TotalCommonFourPlus int                  `json:"total_common_four_plus"`
	PerfectMatches      int                  `json:"perfect_matches"`
	ByDecade            map[int][]CommonFilm `json:"by_decade"`
	Newest              *CommonFilm          `json:"newest_movie"`
	Oldest              *CommonFilm          `json:"oldest_movie"`
}
