package domain

import (
	"fmt"
	"strings"
	"time"
)

// DenyEntry is one known-common password sourced from a list file.
//
// Value is expected to be canonical (case folded); normalization is handled by
// the parsers.
type DenyEntry struct {
	Value   string
	Source  string
	AddedAt time.Time
}

// NewDenyEntry constructs a DenyEntry and validates its fields.
func NewDenyEntry(value, source string, addedAt time.Time) (DenyEntry, error) {
	e := DenyEntry{
		Value:   value,
		Source:  strings.TrimSpace(source),
		AddedAt: addedAt,
	}
	if err := e.Validate(); err != nil {
		return DenyEntry{}, err
	}
	return e, nil
}

// Validate checks the DenyEntry for required fields.
func (e DenyEntry) Validate() error {
	if e.Value == "" {
		return fmt.Errorf("deny entry value must not be empty")
	}
	if e.Source == "" {
		return fmt.Errorf("deny entry source must not be empty")
	}
	if e.AddedAt.IsZero() {
		return fmt.Errorf("deny entry addedAt must be set")
	}
	return nil
}

// DenyDecision is the outcome of looking a candidate up in the denylist.
type DenyDecision struct {
	Denied bool   `json:"denied"`
	Source string `json:"source,omitempty"`
}

// AllowDecision returns a not-denied decision.
func AllowDecision() DenyDecision { return DenyDecision{} }
