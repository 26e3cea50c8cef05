package apperror

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind error
		code int
	}{
		{"validation", NewValidation("Email and password required"), ErrValidation, http.StatusBadRequest},
		{"conflict", NewConflict("Email already in use"), ErrConflict, http.StatusConflict},
		{"auth", NewAuth("Invalid credentials", nil), ErrAuth, http.StatusUnauthorized},
		{"upstream", NewUpstream("Failed to fetch trending", errors.New("dial tcp")), ErrUpstream, http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", testCase.err)

			assert.ErrorIs(t, wrapped, testCase.kind)
			assert.Equal(t, testCase.code, SafeCode(wrapped))
		})
	}
}

func TestKindsDoNotCrossMatch(t *testing.T) {
	err := NewConflict("Email already in use")

	assert.NotErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrAuth)
}

func TestInternalCauseIsNotExposed(t *testing.T) {
	err := NewAuth("Invalid token", sql.ErrNoRows)

	assert.Equal(t, "Invalid token", SafeMessage(err))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Contains(t, err.Error(), "no rows")
}

func TestPlainErrorsAreGeneric(t *testing.T) {
	err := errors.New("pq: relation \"users\" does not exist")

	assert.Equal(t, http.StatusInternalServerError, SafeCode(err))
	assert.Equal(t, GenericMessage, SafeMessage(err))
}
