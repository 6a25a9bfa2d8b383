// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup matched zero records
	ErrNotFound = errors.New("not found")
	// ErrNetwork covers an unreachable backend and non-2xx responses
	ErrNetwork = errors.New("backend request failed")
	// ErrValidationGap means a value derived from a parent could not be resolved
	ErrValidationGap = errors.New("validation gap")
	// ErrPartialBulkFailure means some writes of a fan-out failed
	ErrPartialBulkFailure = errors.New("partial bulk failure")
	// ErrAmbiguousBarcode means the backend knows more than one item with a barcode
	ErrAmbiguousBarcode = errors.New("ambiguous barcode")
	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("invalid input")
)

// RegistryError describes a failed call to the catalog backend
type RegistryError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *RegistryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Is lets errors.Is match ErrNetwork for every registry failure
func (e *RegistryError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// NotFoundError carries the message shown to staff for an unknown barcode
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// AmbiguousBarcodeError lists the item ids sharing one barcode
type AmbiguousBarcodeError struct {
	Barcode string
	ItemIDs []string
}

func (e *AmbiguousBarcodeError) Error() string {
	return fmt.Sprintf("barcode %q matches %d items", e.Barcode, len(e.ItemIDs))
}

func (e *AmbiguousBarcodeError) Unwrap() error {
	return ErrAmbiguousBarcode
}
