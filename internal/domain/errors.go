package domain

import "errors"

var (
	// ErrNotFound indicates an identifier did not resolve to an entity.
	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed indicates the meeting is not in a state that
	// allows the requested transition.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrBusy indicates another lifecycle action held the guard for longer
	// than the configured wait.
	ErrBusy = errors.New("service busy")

	// ErrStoreFailure indicates a read or write against the graph store
	// failed or timed out.
	ErrStoreFailure = errors.New("graph store failure")
)

// Code is the stable, caller-facing name of an error class.
type Code string

const (
	CodeOK                 Code = "OK"
	CodeNotFound           Code = "NOT_FOUND"
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	CodeBusy               Code = "SERVICE_BUSY"
	CodeStoreFailure       Code = "STORE_FAILURE"
)

// CodeOf classifies err. Errors outside the taxonomy count as store
// failures since every action ends in the store.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrPreconditionFailed):
		return CodePreconditionFailed
	case errors.Is(err, ErrBusy):
		return CodeBusy
	default:
		return CodeStoreFailure
	}
}
