package store

import "errors"

// ErrNotFound is returned when a record does not exist, or exists but is
// not owned by the caller. The two cases are indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert violates the users email
// uniqueness constraint.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrCreateFailed is returned when an insert does not yield a usable row.
var ErrCreateFailed = errors.New("create failed")
