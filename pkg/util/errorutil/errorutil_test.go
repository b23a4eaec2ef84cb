package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/farm-portal/internal/domain"
)

func TestToDomainErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{domain.ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{fmt.Errorf("login: %w", domain.ErrChallengeMismatch), "CHALLENGE_MISMATCH", http.StatusUnauthorized},
		{fmt.Errorf("user 9: %w", domain.ErrNotFound), "NOT_FOUND", http.StatusNotFound},
		{domain.ErrForbidden, "FORBIDDEN", http.StatusForbidden},
		{fmt.Errorf("qty: %w", domain.ErrInvalidAmount), "INVALID_AMOUNT", http.StatusBadRequest},
		{domain.ErrNotPending, "NOT_PENDING", http.StatusConflict},
		{domain.ErrAlreadyExists, "ALREADY_EXISTS", http.StatusConflict},
		{domain.ErrInvalidInput, "VALIDATION_FAILED", http.StatusBadRequest},
		{domain.ErrPersistenceCorrupt, "PERSISTENCE_CORRUPT", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
			assert.ErrorIs(t, de, tc.err)
		})
	}
}

func TestToDomainErrorPassesThroughAndDefaults(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	existing := NewDomainError("CUSTOM", "custom", http.StatusTeapot, nil)
	assert.Same(t, existing, ToDomainError(fmt.Errorf("wrapped: %w", existing)))

	de := ToDomainError(errors.New("disk on fire"))
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)
}
