package api

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found error with contextual information.
// It is returned for unknown migration task ids and unknown service names.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "migration task", "service")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
//
// Example:
//
//	task, err := orch.Get("unknown")
//	if api.IsNotFound(err) {
//	    // Handle not found case
//	}
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// Specific NotFoundError constructors for each resource type.
var (
	// NewTaskNotFoundError creates a migration task not found error.
	NewTaskNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("migration task", id)
	}

	// NewServiceNotFoundError creates a service not found error.
	NewServiceNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("service", name)
	}
)

// ValidationError reports a request that was rejected before any work started,
// such as a migration with an empty service list.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// Registration operations reported by RegistrationError.
const (
	OpRegister   = "register"
	OpUnregister = "unregister"
)

// RegistrationError wraps a failure reported by the service directory while
// registering or unregistering a service.
type RegistrationError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to %s service %s: %v", e.Op, e.Service, e.Err)
}

// Unwrap returns the underlying directory error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// NewRegistrationError wraps err for the given service and operation.
func NewRegistrationError(service, op string, err error) *RegistrationError {
	return &RegistrationError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}

// IsRegistration reports whether err is or wraps a RegistrationError.
func IsRegistration(err error) bool {
	var regErr *RegistrationError
	return errors.As(err, &regErr)
}
