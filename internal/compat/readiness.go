package compat

import (
	"context"

	"github.com/mreid/filmblend/internal/types"
)

// ScrapeCountBuffer absorbs minor scrape drift: a stored count within this
// distance of the upstream-reported count still passes the readiness check.
const ScrapeCountBuffer = 10

// CheckReadiness is the standalone read-side readiness probe: it reports
// per-user totals, missing-metadata counts and, when the acquisition step
// supplied expected film counts, whether the stored counts are plausible.
// It never mutates anything. Returns *NoDataError when either user has no
// films.
func (e *Engine) CheckReadiness(ctx context.Context, userA, userB string, expected *types.ExpectedCounts) (*types.ReadinessReport, error) {
	userAFilms, userBFilms, err := e.fetchPair(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	if len(userAFilms) == 0 || len(userBFilms) == 0 {
		return nil, &NoDataError{UserA: userA, UserB: userB}
	}

	var expectedA, expectedB *int
	if expected != nil {
		expectedA = expected.UserA
		expectedB = expected.UserB
	}

	checkA := checkCount(expectedA, len(userAFilms))
	checkB := checkCount(expectedB, len(userBFilms))
	status := metadataStatus(userAFilms, userBFilms)

	report := &types.ReadinessReport{
		Ready:    status.TotalMissing == 0 && checkA.Complete && checkB.Complete,
		UserA:    userA,
		UserB:    userB,
		Metadata: status,
		ScrapeA:  checkA,
		ScrapeB:  checkB,
	}
	return report, nil
}

// checkCount compares a stored film count against an expected one. With no
// expectation the check trivially passes.
func checkCount(expected *int, actual int) types.CountCheck {
	check := types.CountCheck{Expected: expected, Actual: actual, Complete: true}
	if expected == nil {
		return check
	}
	drift := actual - *expected
	if drift < 0 {
		drift = -drift
	}
	check.Complete = drift <= ScrapeCountBuffer
	return check
}
