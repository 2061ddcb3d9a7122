package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionError_UnwrapsToKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewActionError(ErrValidationFailed, "slug already exists"))

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, ErrValidationFailed, KindOf(err))
}

func TestKindOf_DefaultsToStoreUnavailable(t *testing.T) {
	assert.Equal(t, ErrStoreUnavailable, KindOf(errors.New("connection refused")))
}
