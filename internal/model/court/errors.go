package court

import "errors"

// Sentinel errors shared by stores, services and handlers. All of them are
// recoverable from the caller's perspective and map to distinct HTTP
// statuses at the edge.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session has expired")
	ErrInvalidState        = errors.New("operation not valid for this session")
	ErrSessionFull         = errors.New("session is already full")
	ErrValidation          = errors.New("validation failed")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrForbidden           = errors.New("participant token does not match sender")
	ErrUnready             = errors.New("analysis preconditions not met")
	ErrAnalysisUnavailable = errors.New("analysis capability unavailable")
	ErrMalformedAnalysis   = errors.New("analysis response could not be parsed")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// IsDomain reports whether err is one of the sentinel errors above, i.e. an
// expected outcome rather than a transient store fault.
func IsDomain(err error) bool {
	for _, sentinel := range []error{
		ErrSessionNotFound,
		ErrSessionExpired,
		ErrInvalidState,
		ErrSessionFull,
		ErrValidation,
		ErrNotYourTurn,
		ErrForbidden,
		ErrUnready,
		ErrAnalysisUnavailable,
		ErrMalformedAnalysis,
		ErrStoreUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
