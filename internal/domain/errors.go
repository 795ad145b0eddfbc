package domain

import "errors"

// ErrNotFound is returned when the requested trip or stored collection does
// not exist. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule (blank trip
// name, unknown render backend, malformed document).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidRange is returned by the date expander when a trip's end date
// falls before its start date. It is the only failure of the itinerary core.
var ErrInvalidRange = errors.New("invalid date range")

// ErrConflict is returned by a TripStore when the parent SHA supplied to a
// conditional write no longer matches the stored version.
var ErrConflict = errors.New("version conflict")

// ErrUpstream marks a failure reading from or writing to the backing store.
// The persistence endpoint maps it to HTTP 502.
var ErrUpstream = errors.New("upstream store error")

// ErrNotConfigured is returned when a collaborator is missing required
// configuration such as a credential. It maps to HTTP 500.
var ErrNotConfigured = errors.New("not configured")
