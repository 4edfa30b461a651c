package types

// SubScores holds the six independently bounded compatibility sub-scores.
// RatingAlignment is out of 50; the rest are out of 10 each.
type SubScores struct {
	RatingAlignment    float64 `json:"rating_alignment"`
	RelativeOverlap    float64 `json:"relative_overlap"`
	ThematicOverlap    float64 `json:"thematic_overlap"`
	ObscurityAlignment float64 `json:"obscurity_alignment"`
	DirectorOverlap    float64 `json:"director_overlap"`
	DiversityBonus     float64 `json:"diversity_bonus"`
}

// FavoriteCredit is a genre or director both users gravitate to, weighted by
// average rating times a capped occurrence count.
type FavoriteCredit struct {
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	FilmCount     int     `json:"film_count"`
	WeightedScore float64 `json:"weighted_score"`
}

// CompatibilityStats carries the auxiliary statistics alongside the score.
type CompatibilityStats struct {
	FilmsUserA              int              `json:"films_user_a"`
	FilmsUserB              int              `json:"films_user_b"`
	CommonFilms             int              `json:"common_films"`
	FavoriteGenres          []FavoriteCredit `json:"favorite_genres"`
	FavoriteDirectors       []FavoriteCredit `json:"favorite_directors"`
	AverageRatingDifference float64          `json:"average_rating_difference"`
	SameRatingPercentage    int              `json:"same_rating_percentage"`
}

// PopularityAverages is each user's mean raw popularity, nil when a user has
// no films with known popularity.
type PopularityAverages struct {
	UserA *float64 `json:"user_a_average"`
	UserB *float64 `json:"user_b_average"`
}

// CompatibilityReport is the full output of a pair scoring run.
// TotalScore is the plain sum of the sub-scores rounded to 2 decimals; it is
// deliberately not clamped to [0,100].
type CompatibilityReport struct {
	UserA      string             `json:"user_a"`
	UserB      string             `json:"user_b"`
	Scores     SubScores          `json:"scores"`
	TotalScore float64            `json:"total_score"`
	Stats      CompatibilityStats `json:"stats"`
	Popularity PopularityAverages `json:"popularity_data"`
}

// MetadataStatus summarizes enrichment progress for a user pair.
type MetadataStatus struct {
	UserATotal   int      `json:"user_a_total"`
	UserBTotal   int      `json:"user_b_total"`
	UserAMissing int      `json:"user_a_missing"`
	UserBMissing int      `json:"user_b_missing"`
	TotalMissing int      `json:"total_missing"`
	MissingUserA []string `json:"missing_films_user_a,omitempty"`
	MissingUserB []string `json:"missing_films_user_b,omitempty"`
}

// CountCheck reports whether a user's stored film count matches the count an
// upstream scrape claimed, within the drift buffer.
type CountCheck struct {
	Expected *int `json:"expected"`
	Actual   int  `json:"actual"`
	Complete bool `json:"complete"`
}

// ExpectedCounts carries the film counts an acquisition pass reported, used
// by the readiness check to detect truncated scrapes.
type ExpectedCounts struct {
	UserA *int `json:"user_a_count"`
	UserB *int `json:"user_b_count"`
}

// ReadinessReport is the result of the standalone metadata readiness check.
type ReadinessReport struct {
	Ready    bool           `json:"ready"`
	UserA    string         `json:"user_a"`
	UserB    string         `json:"user_b"`
	Metadata MetadataStatus `json:"metadata_status"`
	ScrapeA  CountCheck     `json:"scrape_check_user_a"`
	ScrapeB  CountCheck     `json:"scrape_check_user_b"`
}
