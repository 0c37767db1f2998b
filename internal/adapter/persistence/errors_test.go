package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/labtrack/labtrack/internal/domain"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		field     string
		retryable bool
	}{
		{
			name:  "postgres unique violation from detail",
			err:   &pq.Error{Code: "23505", Detail: "Key (login)=(ana) already exists."},
			field: "login",
		},
		{
			name:  "postgres unique violation from constraint name",
			err:   &pq.Error{Code: "23505", Table: "users", Constraint: "users_email_key"},
			field: "email",
		},
		{
			name:      "postgres serialization failure",
			err:       &pq.Error{Code: "40001"},
			retryable: true,
		},
		{
			name:  "sqlite unique message",
			err:   fmt.Errorf("wrapped: %w", errors.New("constraint failed: UNIQUE constraint failed: equipment.serial (2067)")),
			field: "serial",
		},
		{
			name: "anything else",
			err:  errors.New("disk I/O error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError("op", tt.err)

			if tt.field != "" {
				var dup *domain.DuplicateKeyError
				if assert.ErrorAs(t, got, &dup) {
					assert.Equal(t, tt.field, dup.Field)
				}
				return
			}

			var se *domain.StorageError
			if assert.ErrorAs(t, got, &se) {
				assert.Equal(t, "op", se.Op)
				assert.Equal(t, tt.retryable, se.Retryable)
				assert.Equal(t, tt.retryable, domain.IsRetryable(got))
			}
		})
	}
}

func TestTranslateError_PassesThrough(t *testing.T) {
	assert.NoError(t, translateError("op", nil))
	assert.ErrorIs(t, translateError("op", sql.ErrNoRows), sql.ErrNoRows)
}

func TestRelabel(t *testing.T) {
	inner := errors.New("locked")
	err := relabel("create report", &domain.StorageError{Op: "query", Err: inner, Retryable: true})

	var se *domain.StorageError
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, "create report", se.Op)
		assert.True(t, se.Retryable)
		assert.ErrorIs(t, err, inner)
	}
}
