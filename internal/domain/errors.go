package domain

import "errors"

var (
	// ErrQueryFailure wraps any failure of an external collaborator call:
	// network errors, non-200 responses and malformed payloads.
	ErrQueryFailure = errors.New("query failure")

	// ErrNoResults means the geocoder returned no candidate for an address.
	// Callers treat it as a silent no-op.
	ErrNoResults = errors.New("no results")

	// ErrInvalidPoint is returned for coordinates outside valid ranges.
	ErrInvalidPoint = errors.New("invalid point")

	// ErrEmptyAddress is returned for blank address searches.
	ErrEmptyAddress = errors.New("empty address")
)
