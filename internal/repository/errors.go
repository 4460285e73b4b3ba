// Package repository holds the data access layer.  This file defines the
// error values shared by every repository.  Driver errors never leave the
// package raw: translate normalises them so that handlers only ever see
// ErrNotFound, ErrConflict or a *StoreError.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the store adapter recognises.
const (
	mysqlDuplicateEntry  = 1062 // ER_DUP_ENTRY
	mysqlNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

// ErrNotFound is returned when the requested row, or a row it references,
// does not exist.  Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// such as a second account for the same email or a second rating of the
// same restaurant by the same user.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// StoreError wraps any other persistence failure together with the
// operation that produced it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// translate maps a driver error from op onto the package error values.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case mysqlNoReferencedRow:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return &StoreError{Op: op, Err: err}
}
