package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a domain failure
type ErrorType string

const (
	// ErrorTypeValidation marks a malformed or contradictory desired configuration
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNotPublic marks an interface that is not eligible for management
	ErrorTypeNotPublic ErrorType = "NOT_PUBLIC"

	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeBackendUnavailable marks a host without a usable persistence mechanism
	ErrorTypeBackendUnavailable ErrorType = "BACKEND_UNAVAILABLE"

	// ErrorTypeCommandExecution marks a non-zero exit, a kernel call failure or a timeout
	ErrorTypeCommandExecution ErrorType = "COMMAND_EXECUTION"

	// ErrorTypePersistence marks a failure writing or removing an artifact
	ErrorTypePersistence ErrorType = "PERSISTENCE"

	// ErrorTypePartialApply marks a live change that could not be made durable
	ErrorTypePartialApply ErrorType = "PARTIAL_APPLY"

	ErrorTypePermission ErrorType = "PERMISSION"

	// ErrorTypeSyntax marks artifact content that fails structural validation
	ErrorTypeSyntax ErrorType = "SYNTAX"
)

// DomainError is the error returned by every core operation
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on error type so errors.Is(err, &DomainError{Type: ...}) works
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newError(t ErrorType, message string, cause error) *DomainError {
	return &DomainError{
		Type:    t,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *DomainError {
	return newError(ErrorTypeValidation, message, cause)
}

// NewNotPublicError creates an error for an interface outside the public allow-list
func NewNotPublicError(name string) *DomainError {
	return newError(ErrorTypeNotPublic, fmt.Sprintf("interface %s is not a public network interface", name), nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *DomainError {
	return newError(ErrorTypeNotFound, message, nil)
}

// NewBackendUnavailableError creates an error for a host without a persistence backend
func NewBackendUnavailableError(message string, cause error) *DomainError {
	return newError(ErrorTypeBackendUnavailable, message, cause)
}

// NewCommandExecutionError creates a command execution error
func NewCommandExecutionError(message string, cause error) *DomainError {
	return newError(ErrorTypeCommandExecution, message, cause)
}

// NewPersistenceError creates a persistence error
func NewPersistenceError(message string, cause error) *DomainError {
	return newError(ErrorTypePersistence, message, cause)
}

// NewPartialApplyError reports a live change that will not survive a reboot
func NewPartialApplyError(message string, cause error) *DomainError {
	return newError(ErrorTypePartialApply, message, cause)
}

// NewPermissionError creates a permission error
func NewPermissionError(message string, cause error) *DomainError {
	return newError(ErrorTypePermission, message, cause)
}

// NewSyntaxError creates a syntax error for artifact content
func NewSyntaxError(message string, cause error) *DomainError {
	return newError(ErrorTypeSyntax, message, cause)
}

// TypeOf returns the type of the outermost DomainError in the chain, or "" if none
func TypeOf(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

func isType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsValidationError reports whether err is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotPublicError reports whether err is a not-public error
func IsNotPublicError(err error) bool {
	return isType(err, ErrorTypeNotPublic)
}

// IsNotFoundError reports whether err is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsBackendUnavailableError reports whether err is a backend unavailable error
func IsBackendUnavailableError(err error) bool {
	return isType(err, ErrorTypeBackendUnavailable)
}

// IsCommandExecutionError reports whether err is a command execution error
func IsCommandExecutionError(err error) bool {
	return isType(err, ErrorTypeCommandExecution)
}

// IsPersistenceError reports whether err is a persistence error
func IsPersistenceError(err error) bool {
	return isType(err, ErrorTypePersistence)
}

// IsPartialApplyError reports whether err is a partial apply error
func IsPartialApplyError(err error) bool {
	return isType(err, ErrorTypePartialApply)
}

// IsPermissionError reports whether err is a permission error
func IsPermissionError(err error) bool {
	return isType(err, ErrorTypePermission)
}

// IsSyntaxError reports whether err is a syntax error
func IsSyntaxError(err error) bool {
	return isType(err, ErrorTypeSyntax)
}
