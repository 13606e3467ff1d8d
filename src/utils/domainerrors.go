package utils

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by services. HandleErrors maps them onto HTTP codes.
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyTerminal = errors.New("item is already in a terminal status")
)

// TransientError marks a failure that may succeed on retry, such as a broker
// timeout or a 5xx from the payment gateway.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
