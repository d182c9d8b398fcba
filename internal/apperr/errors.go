// Package apperr defines the error taxonomy shared by every engine.
//
// Each failure carries a Kind (validation, not found, insufficient, conflict,
// transient). Callers match kinds with errors.Is; handlers map them to
// response codes.
package apperr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInsufficient = errors.New("insufficient quantity")
	ErrConflict     = errors.New("conflict")
	ErrTransient    = errors.New("transient failure, retry")
)

// Error is a labeled failure identifying the entity that caused it.
type Error struct {
	Kind     error
	Op       string
	Entity   string
	EntityID int64
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func NotFound(op, entity string, id int64) error {
	return &Error{Kind: ErrNotFound, Op: op, Entity: entity, EntityID: id, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func Conflict(op, entity string, id int64, format string, args ...any) error {
	return &Error{Kind: ErrConflict, Op: op, Entity: entity, EntityID: id, Message: fmt.Sprintf(format, args...)}
}

// InsufficientError details a quantity shortage on one entity.
type InsufficientError struct {
	Op        string
	Entity    string
	EntityID  int64
	Field     string
	Requested int64
	Limit     int64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("%s: %s %d: requested %d exceeds %s %d", e.Op, e.Entity, e.EntityID, e.Requested, e.Field, e.Limit)
}

func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficient
}

func Insufficient(op, entity string, id int64, field string, requested, limit int64) error {
	return &InsufficientError{Op: op, Entity: entity, EntityID: id, Field: field, Requested: requested, Limit: limit}
}

// Postgres error codes treated as retryable.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// Constraint violations that reach a transaction boundary.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Classify wraps lock timeouts, deadlocks and serialization failures as
// ErrTransient. Unique violations become conflicts and foreign key or check
// violations become validation errors. Other errors are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
			return &Error{Kind: ErrTransient, Op: op, Message: pgErr.Message, Err: err}
		case pgUniqueViolation:
			return &Error{Kind: ErrConflict, Op: op, Message: "duplicate " + pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation, pgCheckViolation:
			return &Error{Kind: ErrValidation, Op: op, Message: "constraint " + pgErr.ConstraintName + " violated", Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrTransient, Op: op, Message: "deadline exceeded", Err: err}
	}
	return err
}

// EntityOf returns the entity name and id carried by err, if any.
func EntityOf(err error) (string, int64, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae.Entity != "" {
		return ae.Entity, ae.EntityID, true
	}
	var ie *InsufficientError
	if errors.As(err, &ie) {
		return ie.Entity, ie.EntityID, true
	}
	return "", 0, false
}
