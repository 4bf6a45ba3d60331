package domain

import "errors"

// Sentinel errors for every fallible operation in the retrieval core.
// Callers distinguish conditions with errors.Is; nothing is swallowed.
var (
	// ErrNotReady: the service was used before EnsureCollection succeeded.
	ErrNotReady = errors.New("retrieval service not ready")

	// ErrBackendUnavailable: the backend could not be reached at all.
	ErrBackendUnavailable = errors.New("search backend unavailable")

	// ErrBackend: the backend reached but rejected or failed the operation.
	ErrBackend = errors.New("search backend error")

	// ErrSourceNotFound: the corpus source could not be located.
	ErrSourceNotFound = errors.New("corpus source not found")

	// ErrMalformedSource: the corpus source did not parse into records.
	ErrMalformedSource = errors.New("malformed corpus source")

	// ErrMalformedResponse: the backend answered with an unexpected shape.
	ErrMalformedResponse = errors.New("malformed backend response")
)
