package restapi

import "fmt"

// APIError describes a failed backend call: a non-2xx HTTP status or a
// response whose status field is not "success".
type APIError struct {
	Op         string // "list" or "update"
	StatusCode int    // HTTP status code
	Status     string // envelope status field, if decoded
	Message    string // envelope message or response excerpt
	Err        error  // sentinel this error matches via errors.Is, may be nil
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
	if e.Status != "" {
		msg += fmt.Sprintf(", status %q", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the call may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
