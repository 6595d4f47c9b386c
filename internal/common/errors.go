// Package common defines shared constants and sentinel errors used across
// DeDiary components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors returned by remote clients.
	ErrUnavailable  = errors.New("service unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")

	// Reconciliation errors.
	ErrRemoteUnavailable   = errors.New("remote listing unavailable")
	ErrContentUnresolvable = errors.New("content unresolvable")
	ErrLocalCacheCorrupt   = errors.New("local cache corrupt")

	// User-facing flow errors.
	ErrPublishFailure = errors.New("publish failed")
	ErrAuthFailure    = errors.New("authentication failed")

	// Validation errors.
	ErrInvalidCID   = errors.New("invalid content identifier")
	ErrInvalidEntry = errors.New("invalid entry")
	ErrNoAddress    = errors.New("no wallet address available")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
)
