package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionErrorTypes(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")

	transient := NewTransientStoreError("mark active", cause)
	assert.True(t, IsTransientStoreError(transient))
	assert.False(t, IsSchemaError(transient))
	assert.Equal(t, http.StatusServiceUnavailable, transient.Code)
	assert.ErrorIs(t, transient, cause)

	wrapped := fmt.Errorf("heartbeat: %w", NewSchemaError("mark active", cause))
	assert.True(t, IsSchemaError(wrapped))
	require.NotNil(t, GetAppError(wrapped))
	assert.Equal(t, http.StatusInternalServerError, GetAppError(wrapped).Code)

	notFound := NewPrincipalNotFoundError("E404")
	assert.True(t, IsPrincipalNotFoundError(notFound))
	assert.Equal(t, http.StatusNotFound, notFound.Code)
	assert.Contains(t, notFound.Error(), "E404")

	assert.True(t, IsSessionInvalidError(NewSessionInvalidError("expired")))
	assert.False(t, IsSessionInvalidError(cause))
}

func TestIsSchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlite missing column", errors.New("no such column: last_activity"), true},
		{"sqlite insert missing column", errors.New("table employee_sessions has no column named device_info"), true},
		{"sqlite missing table", errors.New("no such table: employee_sessions"), true},
		{"mysql unknown column", errors.New("Error 1054 (42S22): Unknown column 'last_activity' in 'field list'"), true},
		{"mysql missing table", errors.New("Error 1146 (42S02): Table 'pos.employee_sessions' doesn't exist"), true},
		{"postgres missing column", errors.New(`ERROR: column "last_activity" of relation "employee_sessions" does not exist (SQLSTATE 42703)`), true},
		{"postgres missing relation", errors.New(`ERROR: relation "employee_sessions" does not exist (SQLSTATE 42P01)`), true},
		{"network", errors.New("connection reset by peer"), false},
		{"duplicate", errors.New("UNIQUE constraint failed: employee_sessions.session_id"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSchemaMismatch(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(errors.New("UNIQUE constraint failed: employee_sessions.session_id")))
	assert.True(t, IsDuplicateError(errors.New("Error 1062: Duplicate entry 'x' for key 'session_id'")))
	assert.True(t, IsDuplicateError(errors.New(`duplicate key value violates unique constraint "uk_session_id"`)))
	assert.False(t, IsDuplicateError(nil))
	assert.False(t, IsDuplicateError(errors.New("timeout")))
}
