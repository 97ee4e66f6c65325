// Package errors provides the error types shared by the parser, the typing
// state machine and the services built around them.
//
// Two failure domains exist. Document problems surface as
// MalformedDocumentError and are always returned to the caller. Keystroke
// handling never fails for user input; the only error it raises is an
// InvariantError, which signals a caller bug such as a stale verse reference.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation, provider or translation
	ErrUnsupported = errors.New("unsupported")
	// ErrMalformedDocument indicates provider markup that never established a
	// book, chapter or first verse
	ErrMalformedDocument = errors.New("malformed document")
	// ErrInvariant indicates an upstream invariant violation (programmer error)
	ErrInvariant = errors.New("invariant violation")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "passage", "snapshot", "verse")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "location", "keystroke log", "config")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// Is matches ErrInvalidInput even when a lower-level cause is attached.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UnsupportedError represents an unsupported feature, provider or translation
type UnsupportedError struct {
	Feature string // Feature or translation that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// MalformedDocumentError is returned by the provider parsers when a document
// cannot establish its identity, or mixes books or chapters.
type MalformedDocumentError struct {
	Provider    string // Provider dialect (e.g., "esv", "apibible")
	Translation string // Translation identifier
	Reason      string // What was missing or inconsistent
	Err         error  // Underlying error, if any
}

func (e *MalformedDocumentError) Error() string {
	if e.Translation != "" {
		return fmt.Sprintf("malformed %s document (%s): %s", e.Provider, e.Translation, e.Reason)
	}
	return fmt.Sprintf("malformed %s document: %s", e.Provider, e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedDocument
}

// Is lets errors.Is match both the sentinel and any wrapped cause.
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// InvariantError reports a violated upstream invariant. It is never caused by
// user input and is not retryable.
type InvariantError struct {
	Component string // Component that detected the violation
	Message   string // Description of the violation
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violation: %s", e.Component, e.Message)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// NewMalformedDocument creates a MalformedDocumentError
func NewMalformedDocument(provider, translation, reason string) *MalformedDocumentError {
	return &MalformedDocumentError{
		Provider:    provider,
		Translation: translation,
		Reason:      reason,
	}
}

// NewInvariant creates an InvariantError with a formatted message
func NewInvariant(component, format string, args ...interface{}) *InvariantError {
	return &InvariantError{
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
