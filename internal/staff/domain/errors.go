package domain

import "errors"

var (
	// ErrEmployeeNotFound is returned when an operation names an unknown employee ID.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrUpdateRejected is returned when the backend refuses a salary update.
	ErrUpdateRejected = errors.New("salary update rejected")
)
