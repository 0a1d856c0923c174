package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means no admin token was presented.
	ErrUnauthorized = errors.New("admin authentication required")
	// ErrForbidden means a token was presented but is invalid or not an admin's.
	ErrForbidden = errors.New("admin access denied")
)

// InfraError wraps a storage, cache or media failure. Handlers answer it with
// a generic 500 and log the wrapped detail.
type InfraError struct {
	Op  string
	Err error
}

func (e *InfraError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfraError) Unwrap() error { return e.Err }

func IsInfra(err error) bool {
	var iErr *InfraError
	return errors.As(err, &iErr)
}
