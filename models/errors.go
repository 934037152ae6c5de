package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrConnectionFailed    = errors.New("connection failed")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrTimeout             = errors.New("operation timed out")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
)

// ValidationErrorKind classifies validation failures.
type ValidationErrorKind string

const (
	ValidationRequiredField ValidationErrorKind = "required_field"
	ValidationInvalidValue  ValidationErrorKind = "invalid_value"
	ValidationTooShort      ValidationErrorKind = "too_short"
	ValidationTooLong       ValidationErrorKind = "too_long"
	ValidationInvalidFormat ValidationErrorKind = "invalid_format"
	ValidationOutOfRange    ValidationErrorKind = "out_of_range"
)

// ValidationError describes a single invalid field on a request.
type ValidationError struct {
	Kind   ValidationErrorKind
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ValidationRequiredField:
		return fmt.Sprintf("field %s is required", e.Field)
	case ValidationTooShort:
		return fmt.Sprintf("field %s is too short: %s", e.Field, e.Reason)
	case ValidationTooLong:
		return fmt.Sprintf("field %s is too long: %s", e.Field, e.Reason)
	case ValidationInvalidFormat:
		return fmt.Sprintf("field %s has invalid format: %s", e.Field, e.Reason)
	case ValidationOutOfRange:
		return fmt.Sprintf("field %s is out of range: %s", e.Field, e.Reason)
	default:
		return fmt.Sprintf("field %s has invalid value %q: %s", e.Field, e.Value, e.Reason)
	}
}

// RepositoryErrorKind classifies storage failures.
type RepositoryErrorKind string

const (
	RepoNotFound            RepositoryErrorKind = "not_found"
	RepoConnectionFailed    RepositoryErrorKind = "connection_failed"
	RepoConstraintViolation RepositoryErrorKind = "constraint_violation"
	RepoSerialization       RepositoryErrorKind = "serialization"
	RepoTableNotFound       RepositoryErrorKind = "table_not_found"
	RepoInvalidQuery        RepositoryErrorKind = "invalid_query"
	RepoTransactionFailed   RepositoryErrorKind = "transaction_failed"
	RepoTimeout             RepositoryErrorKind = "timeout"
	RepoRateLimitExceeded   RepositoryErrorKind = "rate_limit_exceeded"
	RepoBackend             RepositoryErrorKind = "backend"
)

// RepositoryError is returned by repository implementations. Err carries
// the underlying driver error when one exists.
type RepositoryError struct {
	Kind    RepositoryErrorKind
	Table   string
	Message string
	Err     error
}

func (e *RepositoryError) Error() string {
	switch e.Kind {
	case RepoNotFound:
		if e.Message != "" {
			return fmt.Sprintf("item not found: %s", e.Message)
		}
		return "item not found"
	case RepoTableNotFound:
		return fmt.Sprintf("table not found: %s. Ensure the table exists and IAM permissions are correct.", e.Table)
	case RepoConnectionFailed:
		return fmt.Sprintf("storage connection failed: %s", e.Message)
	case RepoConstraintViolation:
		return fmt.Sprintf("constraint violation: %s", e.Message)
	case RepoSerialization:
		return fmt.Sprintf("serialization error: %s", e.Message)
	case RepoInvalidQuery:
		return fmt.Sprintf("invalid query: %s", e.Message)
	case RepoTransactionFailed:
		return fmt.Sprintf("transaction failed: %s", e.Message)
	case RepoTimeout:
		return fmt.Sprintf("storage operation timed out: %s", e.Message)
	case RepoRateLimitExceeded:
		return fmt.Sprintf("storage rate limit exceeded: %s", e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("storage error: %v", e.Err)
		}
		return fmt.Sprintf("storage error: %s", e.Message)
	}
}

func (e *RepositoryError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Kind {
	case RepoNotFound:
		return ErrNotFound
	case RepoConnectionFailed:
		return ErrConnectionFailed
	case RepoConstraintViolation:
		return ErrConstraintViolation
	case RepoTimeout:
		return ErrTimeout
	case RepoRateLimitExceeded:
		return ErrRateLimitExceeded
	}
	return nil
}

// NewRepoNotFound builds a not-found repository error for the given key.
func NewRepoNotFound(key string) *RepositoryError {
	return &RepositoryError{Kind: RepoNotFound, Message: key}
}

// ServiceErrorKind classifies failures surfaced by the domain services.
type ServiceErrorKind string

const (
	SvcFoodNotFound       ServiceErrorKind = "food_not_found"
	SvcCartNotFound       ServiceErrorKind = "cart_not_found"
	SvcCartItemNotFound   ServiceErrorKind = "cart_item_not_found"
	SvcValidation         ServiceErrorKind = "validation"
	SvcRepository         ServiceErrorKind = "repository"
	SvcInsufficientStock  ServiceErrorKind = "insufficient_stock"
	SvcInvalidQuantity    ServiceErrorKind = "invalid_quantity"
	SvcProductUnavailable ServiceErrorKind = "product_unavailable"
	SvcConfiguration      ServiceErrorKind = "configuration"
	SvcExternalService    ServiceErrorKind = "external_service"
)

// ServiceError is the error type returned from service operations.
type ServiceError struct {
	Kind      ServiceErrorKind
	ID        string
	Requested int32
	Available int32
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case SvcFoodNotFound:
		return fmt.Sprintf("Food not found: %s", e.ID)
	case SvcCartNotFound:
		return fmt.Sprintf("Cart not found for user: %s", e.ID)
	case SvcCartItemNotFound:
		return fmt.Sprintf("Item not found in cart: %s", e.ID)
	case SvcInsufficientStock:
		return fmt.Sprintf("Insufficient stock: requested=%d, available=%d", e.Requested, e.Available)
	case SvcInvalidQuantity:
		return fmt.Sprintf("Invalid quantity: %s", e.Message)
	case SvcProductUnavailable:
		return fmt.Sprintf("Product is not available: %s", e.ID)
	case SvcConfiguration:
		return fmt.Sprintf("Configuration error: %s", e.Message)
	case SvcExternalService:
		return fmt.Sprintf("External service error: %s", e.Message)
	case SvcValidation, SvcRepository:
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Message
	default:
		return e.Message
	}
}

func (e *ServiceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Kind {
	case SvcFoodNotFound, SvcCartNotFound, SvcCartItemNotFound:
		return ErrNotFound
	}
	return nil
}

// NewFoodNotFound builds the service error for a missing food item.
func NewFoodNotFound(id string) *ServiceError {
	return &ServiceError{Kind: SvcFoodNotFound, ID: id}
}

// NewCartNotFound builds the service error for a missing cart.
func NewCartNotFound(userID string) *ServiceError {
	return &ServiceError{Kind: SvcCartNotFound, ID: userID}
}

// NewInsufficientStock builds the stock shortfall error.
func NewInsufficientStock(requested, available int32) *ServiceError {
	return &ServiceError{Kind: SvcInsufficientStock, Requested: requested, Available: available}
}

// WrapRepositoryError lifts a repository failure into a service error,
// translating not-found into the domain-specific variant when id is set.
func WrapRepositoryError(err error, id string) *ServiceError {
	if IsNotFound(err) && id != "" {
		return NewFoodNotFound(id)
	}
	return &ServiceError{Kind: SvcRepository, Err: err}
}

// IsNotFound reports whether err represents a missing item at any tier.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var re *RepositoryError
	if errors.As(err, &re) && re.Kind == RepoNotFound {
		return true
	}
	var se *ServiceError
	if errors.As(err, &se) {
		switch se.Kind {
		case SvcFoodNotFound, SvcCartNotFound, SvcCartItemNotFound:
			return true
		}
	}
	return false
}

// IsValidation reports whether err stems from request validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == SvcValidation
}

// IsRetryable reports whether the failure is transient and a retry may
// succeed.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimitExceeded) || errors.Is(err, ErrConnectionFailed) {
		return true
	}
	var re *RepositoryError
	if errors.As(err, &re) {
		switch re.Kind {
		case RepoTimeout, RepoRateLimitExceeded, RepoConnectionFailed:
			return true
		}
	}
	return false
}
