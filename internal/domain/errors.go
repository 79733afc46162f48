package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrDuplicateOperation = errors.New("duplicate operation")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrSameLocation       = errors.New("source and destination location are the same")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrSnapshotNotFound is returned by stores that have never been written.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// LedgerError ties a sentinel to the operation and entity it was raised for.
type LedgerError struct {
	Op     string
	Entity string
	ID     string
	Err    error
	Detail string
}

func (e *LedgerError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.Entity != "" {
		msg = fmt.Sprintf("%s: %s %q: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func NewLedgerError(op, entity, id string, err error, detail string) *LedgerError {
	return &LedgerError{Op: op, Entity: entity, ID: id, Err: err, Detail: detail}
}

// Unknown builds an ErrUnknownEntity error.
func Unknown(op, entity, id string) error {
	return NewLedgerError(op, entity, id, ErrUnknownEntity, "")
}

// Message renders err for a user-facing result.
func Message(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		switch {
		case errors.Is(err, ErrInsufficientStock):
			if le.Detail != "" {
				return "Insufficient stock: " + le.Detail
			}
			return "Insufficient stock."
		case errors.Is(err, ErrUnknownEntity):
			return fmt.Sprintf("%s %s not found.", le.Entity, le.ID)
		}
	}
	return err.Error()
}
