package selection

import (
	"context"

	"github.com/mreid/filmblend/internal/types"
)

// summarySweepCap widens the favorites search for the summary view.
const summarySweepCap = 100

// CommonMoviesSummary runs a wide favorites sweep and aggregates it: how many
// shared films each side loved, how many were perfect matches, and the films
// grouped by decade with the newest and oldest singled out. Films without a
// known release year count toward the totals but not the decade view.
func (s *Selector) CommonMoviesSummary(ctx context.Context, userA, userB string) (*types.FavoritesSummary, error) {
	films, err := s.CommonFavorites(ctx, userA, userB, summarySweepCap)
	if err != nil {
		return nil, err
	}

	summary := &types.FavoritesSummary{
		ByDecade: make(map[int][]types.CommonFilm),
	}

	for i := range films {
		f := films[i]
		if f.UserARating == types.MaxRating {
			summary.TotalCommonFiveStar++
		}
		if f.UserARating >= 4 {
			summary.TotalCommonFourPlus++
		}
		if f.MatchStrength == types.MatchPerfect {
			summary.PerfectMatches++
		}
		if f.Year == nil {
			continue
		}
		decade := (*f.Year / 10) * 10
		summary.ByDecade[decade] = append(summary.ByDecade[decade], f)
		if summary.Newest == nil || *f.Year > *summary.Newest.Year {
			summary.Newest = &films[i]
		}
		if summary.Oldest == nil || *f.Year < *summary.Oldest.Year {
			summary.Oldest = &films[i]
		}
	}

	return summary, nil
}
