package password

// MessageMismatch is shown when the verify field differs from the password field.
const MessageMismatch = "Passwords do not match"

// Form holds the password and verify fields and the one error line they share.
// Whichever field changed last decides the error. Form is not safe for
// concurrent use; it belongs to a single UI loop.
type Form struct {
	checker  *Checker
	password string
	verify   string
	err      string
}

// NewForm returns an empty form backed by checker.
func NewForm(checker *Checker) *Form {
	return &Form{checker: checker}
}

// SetPassword records a new password value and recomputes the error from the rules.
func (f *Form) SetPassword(v string) Report {
	f.password = v
	rep := f.checker.Check(v)
	f.err = rep.Message
	return rep
}

// SetVerify records a new verify value. The error becomes MessageMismatch when
// it differs from the password and is cleared otherwise.
func (f *Form) SetVerify(v string) {
	f.verify = v
	f.err = Confirm(f.password, v)
}

// ClearError drops the current error line.
func (f *Form) ClearError() { f.err = "" }

// Error returns the current error line, empty when there is nothing to show.
func (f *Form) Error() string { return f.err }

// Password returns the current password value.
func (f *Form) Password() string { return f.password }

// Verify returns the current verify value.
func (f *Form) Verify() string { return f.verify }

// Confirm compares a verify value to the password. It is a plain equality
// check, separate from the rule engine.
func Confirm(password, verify string) string {
	if password != verify {
		return MessageMismatch
	}
	return ""
}
