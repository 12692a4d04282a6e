package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents different types of errors that can occur
// outside the fitness core. The evaluator itself never returns errors.
type ErrorCategory string

const (
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryData          ErrorCategory = "DATA"
	ErrorCategoryStorage       ErrorCategory = "STORAGE"
	ErrorCategoryCache         ErrorCategory = "CACHE"
	ErrorCategoryOptimization  ErrorCategory = "OPTIMIZATION"
	ErrorCategoryReporting     ErrorCategory = "REPORTING"
)

// OptimizerError represents a categorized error with context
type OptimizerError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *OptimizerError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *OptimizerError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether the run cannot continue. Storage, cache and
// reporting faults are logged and the run result is still returned.
func (e *OptimizerError) IsFatal() bool {
	return e.Category == ErrorCategoryConfiguration || e.Category == ErrorCategoryData
}

// WithContext adds context information to the error
func (e *OptimizerError) WithContext(key string, value interface{}) *OptimizerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new categorized error
func New(category ErrorCategory, component, operation, message string) *OptimizerError {
	return &OptimizerError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with category context
func Wrap(err error, category ErrorCategory, component, operation string) *OptimizerError {
	if err == nil {
		return nil
	}
	return &OptimizerError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// CategoryOf returns the category of the first OptimizerError in err's chain.
func CategoryOf(err error) (ErrorCategory, bool) {
	var oe *OptimizerError
	if errors.As(err, &oe) {
		return oe.Category, true
	}
	return "", false
}

// IsFatal reports whether err carries a fatal category.
func IsFatal(err error) bool {
	var oe *OptimizerError
	if errors.As(err, &oe) {
		return oe.IsFatal()
	}
	return false
}

func NewConfigurationError(component, operation, message string) *OptimizerError {
	return New(ErrorCategoryConfiguration, component, operation, message)
}

func NewDataError(component, operation string, err error) *OptimizerError {
	return Wrap(err, ErrorCategoryData, component, operation)
}

func NewStorageError(component, operation string, err error) *OptimizerError {
	return Wrap(err, ErrorCategoryStorage, component, operation)
}

func NewCacheError(component, operation string, err error) *OptimizerError {
	return Wrap(err, ErrorCategoryCache, component, operation)
}

func NewReportingError(component, operation string, err error) *OptimizerError {
	return Wrap(err, ErrorCategoryReporting, component, operation)
}
