package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("dayview: not found")
	ErrMissingSetting = errors.New("dayview: missing setting")
	ErrUpstreamStatus = errors.New("dayview: unexpected upstream status")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// UpstreamError describes a failed call to a third-party API.
type UpstreamError struct {
	API    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s upstream: status %d: %v", e.API, e.Status, e.Err)
	}
	return fmt.Sprintf("%s upstream: %v", e.API, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
