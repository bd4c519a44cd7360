package gate

import "errors"

// Sentinel errors returned by Gate.Authorize. Unauthenticated (no subject
// bound) and Forbidden (subject known, action denied) are distinct so that
// callers can answer with a login redirect versus a 403.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)
