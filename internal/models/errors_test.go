package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	nf := NotFound("Bin not found")
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.False(t, errors.Is(nf, ErrConflict))
	assert.Equal(t, "Bin not found", nf.Error())

	wrapped := fmt.Errorf("failed to load bin: %w", nf)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "Bin not found", PublicMessage(wrapped, "fallback"))

	dup := Conflict("Plate number already exists for this user")
	assert.True(t, errors.Is(dup, ErrConflict))
	assert.Equal(t, "Plate number already exists for this user", PublicMessage(dup, "fallback"))

	stale := fmt.Errorf("route plan p1 was modified concurrently: %w", ErrConflict)
	assert.True(t, errors.Is(stale, ErrConflict))
	assert.Equal(t, "fallback", PublicMessage(stale, "fallback"))

	v := NewValidationError("%s is required", "name")
	assert.True(t, IsValidation(fmt.Errorf("wrap: %w", v)))
	assert.False(t, IsValidation(nf))
	assert.Equal(t, "name is required", v.Error())
}
