package errorvalues

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrNotAuthenticated = errors.New("no authenticated user")
	ErrInvalidToken     = errors.New("invalid auth token")
)

// StoreError wraps any failure coming from the remote activities store.
// Callers match it with errors.As and decide whether to degrade to the
// offline snapshot or surface the failure.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error on %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func NewStoreError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Cause: cause}
}

// IsStoreError reports whether err originated in the remote store layer.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
