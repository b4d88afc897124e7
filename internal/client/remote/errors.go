package remote

import "errors"

// Failure taxonomy of remote calls. Callers match with errors.Is: transient
// errors stay pending and are retried on the next sync pass, validation
// errors stay pending until the note is edited again, auth errors invalidate
// the cached session.
var (
	// ErrNetwork: no response or timeout. Transient.
	ErrNetwork = errors.New("network error")

	// ErrServer: the server answered 5xx. Transient.
	ErrServer = errors.New("server error")

	// ErrValidation: the server rejected the payload (4xx other than 401).
	// Permanent for this payload.
	ErrValidation = errors.New("validation error")

	// ErrAuth: 401. Session-fatal: the cached session must be cleared and
	// the user re-authenticated.
	ErrAuth = errors.New("unauthorized")
)
