package model

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrDeviceNotFound   = errors.New("device not found")
	ErrEdgeNotFound     = errors.New("edge not found")
	ErrModelDisposed    = errors.New("graph model is disposed")
	ErrSelfLoop         = errors.New("connection endpoints are the same device")
	ErrViewFiltered     = errors.New("connection view type excluded by active filter")
	ErrDocumentNotFound = errors.New("layout document not found")
	ErrStoreClosed      = errors.New("layout store is closed")
)

// TopologyError provides structured error information for engine operations.
type TopologyError struct {
	Op      string // Operation that failed (e.g., "ApplySnapshot", "SaveLayout")
	Entity  string // Entity type (e.g., "device", "edge", "document")
	ID      uint64 // Entity ID (if applicable)
	Context string // Additional context
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *TopologyError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Entity, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TopologyError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *TopologyError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building TopologyErrors.
type ErrorBuilder struct {
	err TopologyError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: TopologyError{Op: op}}
}

// Device sets the entity to "device" with the given ID.
func (b *ErrorBuilder) Device(id uint64) *ErrorBuilder {
	b.err.Entity = "device"
	b.err.ID = id
	return b
}

// Connection sets the entity to "connection" with the given ID.
func (b *ErrorBuilder) Connection(id uint64) *ErrorBuilder {
	b.err.Entity = "connection"
	b.err.ID = id
	return b
}

// Document sets the entity to "document" with the given key.
func (b *ErrorBuilder) Document(key string) *ErrorBuilder {
	b.err.Entity = "document"
	b.err.Context = key
	return b
}

// Context adds free-form context to the error.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error and returns the built error.
func (b *ErrorBuilder) Cause(err error) error {
	b.err.Cause = err
	return &b.err
}
