package store

import (
	"fmt"

	"github.com/whimsylab/couplescourt/internal/model/court"
)

// WithRetry runs fn, retrying exactly once on a non-domain failure. A second
// failure is surfaced as court.ErrStoreUnavailable; domain errors pass
// through untouched.
func WithRetry[T any](fn func() (T, error)) (T, error) {
	v, err := fn()
	if err == nil || court.IsDomain(err) {
		return v, err
	}

	v, err = fn()
	if err == nil || court.IsDomain(err) {
		return v, err
	}
	return v, fmt.Errorf("%w: %v", court.ErrStoreUnavailable, err)
}
