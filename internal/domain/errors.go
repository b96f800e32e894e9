package domain

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound  = errors.New("catalog item not found")
	ErrDuplicateItem = errors.New("catalog item already exists")
)

// FetchError reports a failed provider call. It is always recoverable.
type FetchError struct {
	Endpoint string
	Page     int
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("fetch %s page %d: %v", e.Endpoint, e.Page, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ConfigurationError is fatal: the process must not run against an
// invalid provider setup.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
