package core

import "errors"

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownEntity is returned for an entity key that is not registered.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownRole is returned when a request names a role the permission
	// matrix does not know.
	ErrUnknownRole = errors.New("unknown role")

	// ErrInvalidTransition is returned when a sheet or dialog operation is not
	// allowed in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrDerivationCycle is returned when derived fields depend on each other.
	ErrDerivationCycle = errors.New("derivation cycle")

	// ErrTokenInvalid is returned when a delete confirmation token is unknown,
	// expired, already used, or issued for another record.
	ErrTokenInvalid = errors.New("confirmation token invalid or expired")
)
