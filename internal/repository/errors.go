// Package repository is the data access layer: plain structs over *sql.DB
// issuing parameterized statements.  Sentinel errors let handlers map
// failure scenarios onto HTTP statuses without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique email
// constraint.  Handlers translate this into 400/409.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicatePending is returned when a user already has a pending
// editor-access request.  At most one pending request per user is allowed.
var ErrDuplicatePending = errors.New("pending request already exists")

// ErrAlreadyProcessed is returned when an admin decides a request that has
// already reached a terminal state.  Transitions out of Pending happen once.
var ErrAlreadyProcessed = errors.New("request already processed")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// existing state, such as applying twice to the same internship.  Handlers
// translate this into HTTP 409.
var ErrConflict = errors.New("conflict")
