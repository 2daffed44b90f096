package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Layout errors
	ErrAnchorNotFound = errors.New("anchor row not found")
	ErrEmptyGrid      = errors.New("grid has no rows")

	// Structural errors
	ErrColumnOverflow   = errors.New("segment mapping exceeds grid columns")
	ErrEmptyMapping     = errors.New("segment mapping has no entries")
	ErrInvalidKPIConfig = errors.New("invalid KPI configuration")

	// Orchestration errors
	ErrNoUsableFiles = errors.New("no report file could be analyzed")
)

// Error constructors with context
func NewAnchorNotFoundError(keyword string) error {
	return fmt.Errorf("%w: no row label starts with %q", ErrAnchorNotFound, keyword)
}

func NewColumnOverflowError(label string, column, width int) error {
	return fmt.Errorf("%w: %s uses column %d, grid has %d", ErrColumnOverflow, label, column, width)
}

func NewInvalidKPIError(name string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidKPIConfig, name, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsLayoutError(err error) bool {
	return errors.Is(err, ErrAnchorNotFound) || errors.Is(err, ErrEmptyGrid)
}

func IsStructuralError(err error) bool {
	return errors.Is(err, ErrColumnOverflow) ||
		errors.Is(err, ErrEmptyMapping) ||
		errors.Is(err, ErrInvalidKPIConfig)
}
