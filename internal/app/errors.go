package app

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/agendacycle/internal/domain"
)

// ActionError is the payload every failed action returns to its caller.
type ActionError struct {
	Code   domain.Code `json:"code"`
	Title  string      `json:"title"`
	Detail string      `json:"detail"`
	err    error
}

func (e *ActionError) Error() string {
	if e.Detail == "" {
		return e.Title
	}
	return e.Title + ": " + e.Detail
}

func (e *ActionError) Unwrap() error { return e.err }

// HTTPStatus maps the payload code onto a response status.
func (e *ActionError) HTTPStatus() int {
	switch e.Code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domain.CodeBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var titles = map[domain.Code]string{
	domain.CodeNotFound:           "Entity not found",
	domain.CodePreconditionFailed: "Action not allowed in the current state",
	domain.CodeBusy:               "Another agenda action is in progress",
	domain.CodeStoreFailure:       "Graph store failure",
}

// NewActionError classifies err. An *ActionError passes through unchanged.
func NewActionError(err error) *ActionError {
	if err == nil {
		return nil
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae
	}
	code := domain.CodeOf(err)
	return &ActionError{Code: code, Title: titles[code], Detail: err.Error(), err: err}
}
