package store

import "errors"

var (
	// ErrNotFound is returned by updates against a record ID that does not
	// exist. Reads report absence through their ok result instead, and
	// deletes of absent rows are no-ops.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned when a required field is missing or has an
	// unknown value.
	ErrValidation = errors.New("validation failed")

	// ErrIntegrity is returned when a parent reference points at a missing
	// entity, an entity in another work, or would create a folder cycle.
	ErrIntegrity = errors.New("integrity violation")
)
