package assetpack

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrNoSource is returned when an asset declares neither a dev nor a prod file.
	ErrNoSource = errors.New("asset declares neither dev_file nor prod_file")

	// ErrUnreadable is returned when a declared local file exists but cannot be read.
	ErrUnreadable = errors.New("file is not readable")

	// ErrBadStatus is returned when a remote fetch answers with a non-2xx status.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrInvalidAsset is returned when an operation is attempted on an asset
	// that failed validation.
	ErrInvalidAsset = errors.New("asset is invalid")
)

// ValidationError represents one or more problems found while validating an
// asset declaration.
type ValidationError struct {
	Asset  string
	Errors []error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	prefix := "validation failed"
	if ve.Asset != "" {
		prefix = fmt.Sprintf("validation failed for %s", ve.Asset)
	}
	if len(ve.Errors) == 0 {
		return prefix
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("%s: %v", prefix, ve.Errors[0])
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("%s with %d errors:\n", prefix, len(ve.Errors)))
	for i, err := range ve.Errors {
		fmt.Fprintf(&buf, "  %d. %v\n", i+1, err)
	}
	return buf.String()
}

// Unwrap returns the underlying errors for use with errors.Is and errors.As.
func (ve *ValidationError) Unwrap() []error {
	return ve.Errors
}

// newValidationError creates a ValidationError from a slice of errors.
// Returns nil if the slice is empty.
func newValidationError(asset string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Asset: asset, Errors: errs}
}

// FetchError is returned when the bytes behind a source reference could not
// be obtained, locally or over HTTP.
type FetchError struct {
	Ref    string
	Remote bool
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (fe *FetchError) Error() string {
	where := "local"
	if fe.Remote {
		where = "remote"
	}
	if fe.Status != 0 {
		return fmt.Sprintf("could not fetch %s %s (status %d): %v", where, fe.Ref, fe.Status, fe.Err)
	}
	return fmt.Sprintf("could not fetch %s %s: %v", where, fe.Ref, fe.Err)
}

func (fe *FetchError) Unwrap() error { return fe.Err }

// WriteError is returned when a cache file could not be opened or written.
type WriteError struct {
	Path string
	Err  error
}

func (we *WriteError) Error() string {
	return fmt.Sprintf("could not write cache file %s: %v", we.Path, we.Err)
}

func (we *WriteError) Unwrap() error { return we.Err }

// ConfigError is returned when a required configuration option is missing or
// malformed.
type ConfigError struct {
	Option string
	Err    error
}

func (ce *ConfigError) Error() string {
	return fmt.Sprintf("config option %q: %v", ce.Option, ce.Err)
}

func (ce *ConfigError) Unwrap() error { return ce.Err }
