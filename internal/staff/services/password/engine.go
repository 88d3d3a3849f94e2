// Package password evaluates candidate passwords against an ordered set of
// strength rules and models the password/verify form that reports on them.
package password

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/haukened/staffdir/internal/staff/domain"
)

// MinLength is the shortest acceptable password, in characters.
const MinLength = 8

// messagePrefix starts every combined deficiency message.
const messagePrefix = "Password should contain "

var (
	digitPattern   = regexp.MustCompile(`[0-9]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	specialPattern = regexp.MustCompile("[!\"#$%&'()*+,./:;<=>?@\\[\\]^_`{|}~-]")
)

// MatchRule returns a rule satisfied by any match of re.
func MatchRule(description string, re *regexp.Regexp) domain.Rule {
	return domain.Rule{Description: description, Satisfied: re.MatchString}
}

// LengthRule returns a rule satisfied by candidates of at least min characters.
func LengthRule(min int) domain.Rule {
	return domain.Rule{
		Description: fmt.Sprintf("at least %d characters", min),
		Satisfied: func(candidate string) bool {
			return utf8.RuneCountInString(candidate) >= min
		},
	}
}

// DefaultRules returns the five strength rules in evaluation order.
func DefaultRules() []domain.Rule {
	return []domain.Rule{
		LengthRule(MinLength),
		MatchRule("digits", digitPattern),
		MatchRule("lowercase characters", lowerPattern),
		MatchRule("uppercase characters", upperPattern),
		MatchRule("special characters", specialPattern),
	}
}

// Engine evaluates candidates against a fixed, ordered rule set.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	rules []domain.Rule
}

// NewEngine builds an Engine over rules, evaluated in the given order.
func NewEngine(rules ...domain.Rule) *Engine {
	return &Engine{rules: append([]domain.Rule(nil), rules...)}
}

// DefaultEngine returns an Engine over DefaultRules.
func DefaultEngine() *Engine {
	return NewEngine(DefaultRules()...)
}

// Rules returns a copy of the engine's rules in evaluation order.
func (e *Engine) Rules() []domain.Rule {
	return append([]domain.Rule(nil), e.rules...)
}

// Evaluate runs every rule against candidate and reports the violated ones
// in declaration order.
func (e *Engine) Evaluate(candidate string) domain.ValidationResult {
	violated := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		if !r.Satisfied(candidate) {
			violated = append(violated, r.Description)
		}
	}
	return domain.ValidationResult{
		AllSatisfied: len(violated) == 0,
		Violated:     violated,
	}
}

// Message renders result as the single line shown under the password field.
//
// When every rule is violated nothing is shown: that is the state of an empty
// field, and an error there would flash before the user has typed anything.
func (e *Engine) Message(result domain.ValidationResult) string {
	if len(result.Violated) == 0 {
		return ""
	}
	if len(result.Violated) == len(e.rules) {
		return ""
	}
	return messagePrefix + strings.Join(result.Violated, ", ")
}
