package main

import (
	"errors"
	"fmt"

	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/gateways/restapi"
)

// CLIError wraps errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// mapError converts known errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return NewCLIError("employee not found", "Run 'staffdir list' to see employee IDs", err)
	case errors.Is(err, domain.ErrUpdateRejected):
		return NewCLIError("salary update rejected", "The backend refused the update; retry later", err)
	case errors.Is(err, errDenylistDisabled):
		return NewCLIError("denylist is disabled", "Set STAFF_DENYLIST_DIR to a directory of *.txt password lists", nil)
	}

	var apiErr *restapi.APIError
	if errors.As(err, &apiErr) {
		hint := "Check STAFF_API_URL, or set STAFF_ROSTER_FILE to work offline"
		if apiErr.Temporary() {
			hint = "The backend is busy; wait a moment and retry"
		}
		return NewCLIError("backend request failed", hint, err)
	}

	return err
}
