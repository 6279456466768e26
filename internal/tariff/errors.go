package tariff

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Lookup when no row matches the selection.
var ErrNotFound = errors.New("no matching tariff")

// LoadError reports a reference dataset that is missing or malformed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load tariff catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErrorf(source, format string, args ...any) error {
	return &LoadError{Source: source, Err: fmt.Errorf(format, args...)}
}
