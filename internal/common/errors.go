package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDatabase           = errors.New("database error")
	ErrValidation         = errors.New("validation failed")
	ErrConfiguration      = errors.New("configuration error")
	ErrIdentityUnresolved = errors.New("identity unresolved")
	ErrExtraction         = errors.New("text extraction failed")
	ErrUnsupportedFormat  = errors.New("unsupported layout format")
	ErrNoTextLayer        = errors.New("document has no embedded text layer")
)

const (
	CodeConfig     = "CONFIG_ERROR"
	CodeExtraction = "EXTRACTION_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigurationError is fatal: it is raised before any document is processed.
func ConfigurationError(format string, args ...any) *AppError {
	return NewAppError(CodeConfig, fmt.Sprintf(format, args...), ErrConfiguration)
}

// ExtractionError wraps a collaborator failure so errors.Is(err, ErrExtraction) holds.
func ExtractionError(path string, cause error) *AppError {
	return NewAppError(CodeExtraction, path, fmt.Errorf("%w: %w", ErrExtraction, cause))
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func FailedPreconditionError(message string) error {
	return status.Error(codes.FailedPrecondition, message)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps domain errors onto gRPC status codes.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && status.Code(err) != codes.Unknown {
		return err
	}
	switch {
	case errors.Is(err, ErrConfiguration):
		return FailedPreconditionError(err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return InvalidArgumentError(err.Error())
	case errors.Is(err, ErrNotFound):
		return NotFoundError(err.Error())
	default:
		return InternalError(err.Error())
	}
}
