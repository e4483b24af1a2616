package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	assert.ErrorIs(t, ErrUnbalanced, ErrValidation)
	assert.ErrorIs(t, ErrInvalidYear, ErrValidation)
	assert.ErrorIs(t, ErrUnknownAccountType, ErrValidation)
	assert.ErrorIs(t, ErrDuplicateAccount, ErrConflict)
	assert.ErrorIs(t, ErrAlreadyRun, ErrConflict)
	assert.NotErrorIs(t, ErrAlreadyRun, ErrValidation)
}

func TestUserError(t *testing.T) {
	err := fmt.Errorf("running depreciation: %w", NewUserError(ErrAlreadyRun, "already posted"))

	assert.ErrorIs(t, err, ErrAlreadyRun)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "already posted", UserMessage(err))
}

func TestUserMessageFallback(t *testing.T) {
	err := errors.New("disk full")
	assert.Equal(t, "disk full", UserMessage(err))
}
