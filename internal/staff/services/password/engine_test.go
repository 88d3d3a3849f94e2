package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/staffdir/internal/staff/domain"
)

var declared = []string{
	"at least 8 characters",
	"digits",
	"lowercase characters",
	"uppercase characters",
	"special characters",
}

func TestEngine_Evaluate(t *testing.T) {
	e := DefaultEngine()

	tests := []struct {
		name      string
		candidate string
		violated  []string
		message   string
	}{
		{
			name:      "empty violates everything and stays quiet",
			candidate: "",
			violated:  declared,
			message:   "",
		},
		{
			name:      "strong",
			candidate: "Abc12345!",
			violated:  []string{},
			message:   "",
		},
		{
			name:      "short lowercase",
			candidate: "abc",
			violated:  []string{"at least 8 characters", "digits", "uppercase characters", "special characters"},
			message:   "Password should contain at least 8 characters, digits, uppercase characters, special characters",
		},
		{
			name:      "eight uppercase",
			candidate: "ABCDEFGH",
			violated:  []string{"digits", "lowercase characters", "special characters"},
			message:   "Password should contain digits, lowercase characters, special characters",
		},
		{
			name:      "only missing special",
			candidate: "Abcdefg1",
			violated:  []string{"special characters"},
			message:   "Password should contain special characters",
		},
		{
			name:      "whitespace only is not special",
			candidate: "        ",
			violated:  declared[1:],
			message:   "Password should contain digits, lowercase characters, uppercase characters, special characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Evaluate(tt.candidate)
			assert.Equal(t, tt.violated, res.Violated)
			assert.Equal(t, len(tt.violated) == 0, res.AllSatisfied)
			assert.Equal(t, tt.message, e.Message(res))
		})
	}
}

func TestEngine_SpecialCharacterSet(t *testing.T) {
	e := DefaultEngine()
	for _, ch := range "!\"#$%&'()*+,./:;<=>?@[]^_`{|}~-" {
		res := e.Evaluate("Abcdefg1" + string(ch))
		assert.True(t, res.AllSatisfied, "special %q not recognised", ch)
	}
	for _, ch := range " \\é€" {
		res := e.Evaluate("Abcdefg1" + string(ch))
		assert.Equal(t, []string{"special characters"}, res.Violated, "%q should not count as special", ch)
	}
}

func TestEngine_LengthCountsCharacters(t *testing.T) {
	e := DefaultEngine()
	// seven runes, more than eight bytes
	res := e.Evaluate("Ab1!ééé")
	assert.Equal(t, []string{"at least 8 characters"}, res.Violated)
}

func TestEngine_Idempotent(t *testing.T) {
	e := DefaultEngine()
	for _, c := range []string{"", "abc", "Abc12345!", "ABCDEFGH", "x y z"} {
		assert.Equal(t, e.Evaluate(c), e.Evaluate(c), c)
	}
}

func TestEngine_ViolationsKeepDeclarationOrder(t *testing.T) {
	e := DefaultEngine()
	for _, c := range []string{"", "a", "A", "1", "!", "aA", "1!", "abcdefgh", "ABC!1", "aB3$5678"} {
		res := e.Evaluate(c)
		assert.True(t, isSubsequence(res.Violated, declared), "%q: %v", c, res.Violated)
	}
}

func isSubsequence(sub, of []string) bool {
	i := 0
	for _, s := range of {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	return i == len(sub)
}

func TestEngine_CustomRules(t *testing.T) {
	noSpaces := domain.Rule{
		Description: "no spaces",
		Satisfied:   func(c string) bool { return c != "" && !strings.Contains(c, " ") },
	}
	e := NewEngine(LengthRule(4), noSpaces)
	require.Len(t, e.Rules(), 2)

	res := e.Evaluate("a b")
	assert.Equal(t, []string{"at least 4 characters", "no spaces"}, res.Violated)
	// every rule of this engine violated, so the message is suppressed
	assert.Equal(t, "", e.Message(res))

	res = e.Evaluate("abcd e")
	assert.Equal(t, "Password should contain no spaces", e.Message(res))
}

func TestEngine_RulesReturnsCopy(t *testing.T) {
	e := DefaultEngine()
	rules := e.Rules()
	rules[0] = domain.Rule{Description: "mutated", Satisfied: func(string) bool { return true }}
	assert.Equal(t, "at least 8 characters", e.Rules()[0].Description)
}
