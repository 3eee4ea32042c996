package service

import (
	"errors"

	"github.com/bakchoddost/bakchoddost/internal/poem"
)

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")

// ErrForbidden indicates the caller may not touch the resource (HTTP 403).
var ErrForbidden = errors.New("forbidden")

// ValidationError represents a bad-request condition (HTTP 400). Template
// validation failures from the poem engine are the same type.
type ValidationError = poem.ValidationError

// ConflictError represents a conflict condition (HTTP 409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
