// Package service implements the identity and content-integrity logic on top
// of small store interfaces. This file defines the error taxonomy every
// operation resolves into; handlers translate these sentinels to HTTP
// statuses and never see driver- or store-level errors for the mapped cases.
package service

import "errors"

var (
	// ErrInvalidInput marks missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict marks a uniqueness violation, whether it was caught by a
	// pre-check or by the store's unique index after a race.
	ErrConflict = errors.New("already exists")

	// ErrNotFound marks a missing target entity.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredential marks a bad password or a missing, wrong or
	// expired one-time code.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrForbidden marks a role, approval or active-flag gate.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated marks a missing, expired or badly signed token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionSuperseded marks a token that verifies cryptographically but
	// is no longer the identity's bound session: the user logged in again
	// from another device.
	ErrSessionSuperseded = errors.New("logged in from another device")

	// ErrUpstreamUnavailable marks a failure of an external collaborator
	// (SMS gateway, store timeout).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
