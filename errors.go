// Package cacheprobe structured error types for better error handling
package cacheprobe

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Invalid argument errors
	ErrTypeInvalidArg ErrorType = iota
	// Allocation errors
	ErrTypeAlloc
)

// ProbeError represents a structured error with context
type ProbeError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cacheprobe %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cacheprobe %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeAlloc:
		return "Allocation"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &ProbeError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewAllocError creates an allocation error
func NewAllocError(op string, message string, err error) error {
	return &ProbeError{
		Type:    ErrTypeAlloc,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrAllocLimit indicates an allocation request above the configured cap
	ErrAllocLimit = NewAllocError("Acquire", "allocation exceeds configured limit", nil)

	// ErrInvalidSize indicates an invalid buffer size parameter
	ErrInvalidSize = NewInvalidArgError("Acquire", "size must be positive")
)

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	if e, ok := err.(*ProbeError); ok {
		return e.Type == ErrTypeInvalidArg
	}
	return false
}

// IsAllocError checks if an error is an allocation error
func IsAllocError(err error) bool {
	if e, ok := err.(*ProbeError); ok {
		return e.Type == ErrTypeAlloc
	}
	return false
}
