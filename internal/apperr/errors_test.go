package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validation("reserve", "quantity must be > 0"), ErrValidation},
		{"not found", NotFound("cancel", "reservation", 7), ErrNotFound},
		{"conflict", Conflict("reserve", "reservation", 3, "active reservation exists"), ErrConflict},
		{"insufficient", Insufficient("reserve", "product", 9, "available", 10, 4), ErrInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
		})
	}
}

func TestInsufficientNamesEntity(t *testing.T) {
	err := Insufficient("produce", "product", 42, "reserved", 10, 3)
	assert.Contains(t, err.Error(), "product 42")
	entity, id, ok := EntityOf(fmt.Errorf("wrap: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "product", entity)
	assert.Equal(t, int64(42), id)
}

func TestClassify(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "57014"} {
		err := Classify("deliver", &pgconn.PgError{Code: code, Message: "boom"})
		assert.ErrorIs(t, err, ErrTransient, code)
	}

	assert.ErrorIs(t, Classify("deliver", &pgconn.PgError{Code: "23505", ConstraintName: "doc_pairs_fiscal_year_sequence_key"}), ErrConflict)
	assert.ErrorIs(t, Classify("deliver", &pgconn.PgError{Code: "23503"}), ErrValidation)
	assert.ErrorIs(t, Classify("deliver", &pgconn.PgError{Code: "23514"}), ErrValidation)

	other := &pgconn.PgError{Code: "42P01"}
	assert.Same(t, error(other), Classify("deliver", other))

	assert.ErrorIs(t, Classify("deliver", context.DeadlineExceeded), ErrTransient)
	assert.NoError(t, Classify("deliver", nil))

	plain := errors.New("plain")
	assert.Equal(t, plain, Classify("deliver", plain))
}
