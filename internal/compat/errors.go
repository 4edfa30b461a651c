package compat

import (
	"fmt"

	"github.com/mreid/filmblend/internal/types"
)

// NotReadyError signals that metadata enrichment has not finished for one or
// both users. It is an expected condition, not a failure: the caller should
// re-invoke once the enrichment pass completes.
type NotReadyError struct {
	UserA  string
	UserB  string
	Status types.MetadataStatus
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("metadata not ready for %s/%s: %d films missing enrichment",
		e.UserA, e.UserB, e.Status.TotalMissing)
}

// NoDataError signals that one or both users have no film records at all.
// Terminal for the request; acquisition has to run first.
type NoDataError struct {
	UserA string
	UserB string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no film data for one or both of %s/%s", e.UserA, e.UserB)
}
