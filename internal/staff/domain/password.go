package domain

// Rule is a named predicate over a candidate password.
type Rule struct {
	// Description is what the password should contain, e.g. "digits".
	Description string
	Satisfied   func(candidate string) bool
}

// ValidationResult is the outcome of evaluating every rule against one candidate.
// Violated holds the descriptions of unsatisfied rules in declaration order.
type ValidationResult struct {
	AllSatisfied bool     `json:"all_satisfied"`
	Violated     []string `json:"violated"`
}
