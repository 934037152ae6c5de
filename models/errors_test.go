package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceErrorMessages(t *testing.T) {
	assert.Equal(t, "Food not found: F123", NewFoodNotFound("F123").Error())
	assert.Equal(t, "Cart not found for user: user-1", NewCartNotFound("user-1").Error())
	assert.Equal(t, "Insufficient stock: requested=5, available=2", NewInsufficientStock(5, 2).Error())
}

func TestRepositoryErrorMessages(t *testing.T) {
	err := &RepositoryError{Kind: RepoTableNotFound, Table: "PetFoods"}
	assert.Equal(t, "table not found: PetFoods. Ensure the table exists and IAM permissions are correct.", err.Error())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewRepoNotFound("F123")))
	assert.True(t, IsNotFound(NewFoodNotFound("F123")))
	assert.True(t, IsNotFound(NewCartNotFound("user-1")))
	assert.True(t, IsNotFound(fmt.Errorf("outer: %w", NewRepoNotFound("F123"))))

	assert.False(t, IsNotFound(errors.New("boom")))
	assert.False(t, IsNotFound(NewInsufficientStock(2, 1)))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&RepositoryError{Kind: RepoTimeout}))
	assert.True(t, IsRetryable(&RepositoryError{Kind: RepoRateLimitExceeded}))
	assert.True(t, IsRetryable(&RepositoryError{Kind: RepoConnectionFailed}))

	assert.False(t, IsRetryable(NewRepoNotFound("F123")))
	assert.False(t, IsRetryable(&RepositoryError{Kind: RepoConstraintViolation}))
}

func TestWrapRepositoryError(t *testing.T) {
	wrapped := WrapRepositoryError(NewRepoNotFound("F123"), "F123")
	assert.Equal(t, SvcFoodNotFound, wrapped.Kind)

	backend := &RepositoryError{Kind: RepoBackend, Err: errors.New("boom")}
	wrapped = WrapRepositoryError(backend, "F123")
	assert.Equal(t, SvcRepository, wrapped.Kind)
	assert.True(t, errors.Is(wrapped, backend))
}

func TestIsValidation(t *testing.T) {
	ve := &ValidationError{Kind: ValidationRequiredField, Field: "name"}
	assert.True(t, IsValidation(ve))
	assert.True(t, IsValidation(&ServiceError{Kind: SvcValidation, Err: ve}))
	assert.False(t, IsValidation(errors.New("boom")))
}
