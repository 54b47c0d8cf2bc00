// Package repository defines error types that are reused across the user
// stores. These sentinel values allow higher layers such as services and
// handlers to distinguish between different failure scenarios without
// depending on the storage driver.
package repository

import "errors"

// ErrNotFound is returned when no user matches the given id or email.
// Malformed ids are reported the same way.
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateEvent is returned when the event id is already present in
// the user's saved list.
var ErrDuplicateEvent = errors.New("event already saved")
