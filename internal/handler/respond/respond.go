// Package respond maps domain errors onto the HTTP surface.
package respond

import (
	"errors"
	"net/http"

	"github.com/whimsylab/couplescourt/internal/model/court"
	"github.com/whimsylab/couplescourt/pkg/utils"
)

// DomainError writes the status and code matching a domain error. Unknown
// errors become a generic 500.
func DomainError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	utils.RespondErrorCode(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, court.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, court.ErrInvalidState):
		return http.StatusBadRequest, "invalid_state"
	case errors.Is(err, court.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, court.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, court.ErrSessionFull):
		return http.StatusConflict, "already_full"
	case errors.Is(err, court.ErrNotYourTurn):
		return http.StatusConflict, "not_your_turn"
	case errors.Is(err, court.ErrUnready):
		return http.StatusConflict, "unready"
	case errors.Is(err, court.ErrSessionExpired):
		return http.StatusGone, "expired"
	case errors.Is(err, court.ErrAnalysisUnavailable):
		return http.StatusInternalServerError, "analysis_unavailable"
	case errors.Is(err, court.ErrMalformedAnalysis):
		return http.StatusInternalServerError, "analysis_malformed"
	case errors.Is(err, court.ErrStoreUnavailable):
		return http.StatusInternalServerError, "store_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}
