/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")
	
	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")
	
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	
	// ErrConditionFailed is returned when a conditional update fails
	ErrConditionFailed = errors.New("condition check failed")
	
	// ErrNoIndexMap is returned when no index map is found for a type
	ErrNoIndexMap = errors.New("no index map found for type")

	// ErrFetchFailed is returned when a feed page could not be fetched
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrWriteFailed is returned when a write inside a bulk chunk fails
	ErrWriteFailed = errors.New("bulk write failed")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// FetchError reports a failed page fetch. Page is the 1-based number of the
// page that was being requested.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ChunkError reports the bulk chunk that contained a failed write.
// Chunks before Chunk were fully written; writes of this chunk may have
// partially succeeded.
type ChunkError struct {
	Chunk  int // 0-based chunk index
	Offset int // index of the chunk's first item in the input
	Size   int
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (items %d-%d): %v", e.Chunk, e.Offset, e.Offset+e.Size-1, e.Err)
}

func (e *ChunkError) Is(target error) bool {
	return target == ErrWriteFailed
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewFetchError creates a new FetchError
func NewFetchError(page int, err error) error {
	return &FetchError{Page: page, Err: err}
}

// NewChunkError creates a new ChunkError
func NewChunkError(chunk, offset, size int, err error) error {
	return &ChunkError{Chunk: chunk, Offset: offset, Size: size, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsFetchFailed checks if an error is a page fetch failure
func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// IsWriteFailed checks if an error is a bulk write failure
func IsWriteFailed(err error) bool {
	return errors.Is(err, ErrWriteFailed)
}
