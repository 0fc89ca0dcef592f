package usecase

import (
	crerr "github.com/cockroachdb/errors"
)

// Sentinel errors returned by the services. Handlers translate these into
// HTTP statuses; everything else is treated as an internal failure.
var (
	// ErrInvalidInput marks requests that fail structural validation past
	// the transport layer (unknown provider, non-positive line, bad day).
	ErrInvalidInput = crerr.New("invalid input")

	// ErrMissingCredential means neither the request nor the environment
	// supplied an API token for the chosen provider.
	ErrMissingCredential = crerr.New("missing provider credential")

	// ErrDependencyUnavailable wraps provider outages: circuit open,
	// exhausted retries, or a dead upstream.
	ErrDependencyUnavailable = crerr.New("provider dependency unavailable")

	// The three staged no-data outcomes. Each names the first empty stage
	// of the pipeline so callers can tell "no matches" apart from
	// "nothing traded at that line" and "no fixtures that day".
	ErrNoFixtures         = crerr.New("no fixtures found for the requested day")
	ErrNoLineQuotes       = crerr.New("no quotes found at the requested line")
	ErrNoThresholdMatches = crerr.New("no quotes passed the threshold filter")
)
