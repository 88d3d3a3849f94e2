package password

import (
	"strings"

	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/domain"
)

// MessageTooCommon is shown when a password passes every rule but is on the denylist.
const MessageTooCommon = "Password is too common"

// Denylist reports whether a candidate is a known-common password.
type Denylist interface {
	Decide(value string) domain.DenyDecision
}

type nopDenylist struct{}

func (nopDenylist) Decide(string) domain.DenyDecision { return domain.AllowDecision() }

// Report is everything the UI needs to know about one candidate.
type Report struct {
	Result  domain.ValidationResult `json:"result"`
	Denied  domain.DenyDecision     `json:"denied"`
	Message string                  `json:"message"`
}

// OK reports whether the candidate is acceptable.
func (r Report) OK() bool {
	return r.Result.AllSatisfied && !r.Denied.Denied
}

// Problem returns the reason a candidate is rejected, or "" when it is
// acceptable. Unlike Message it is never blank for a rejected candidate: when
// every rule is violated the full list is reported.
func (r Report) Problem() string {
	if r.OK() {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	return messagePrefix + strings.Join(r.Result.Violated, ", ")
}

// Checker combines the rule engine with an optional denylist.
type Checker struct {
	engine   *Engine
	denylist Denylist
	logger   log.Logger
}

// CheckerOptions configures a Checker. Nil fields get defaults: the default
// engine, a denylist that allows everything, and a noop logger.
type CheckerOptions struct {
	Engine   *Engine
	Denylist Denylist
	Logger   log.Logger
}

// NewChecker constructs a Checker from opts.
func NewChecker(opts CheckerOptions) *Checker {
	if opts.Engine == nil {
		opts.Engine = DefaultEngine()
	}
	if opts.Denylist == nil {
		opts.Denylist = nopDenylist{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Checker{engine: opts.Engine, denylist: opts.Denylist, logger: opts.Logger}
}

// Check evaluates candidate. The denylist is only consulted once every rule
// passes, and the rule message always takes precedence.
func (c *Checker) Check(candidate string) Report {
	res := c.engine.Evaluate(candidate)
	rep := Report{Result: res, Message: c.engine.Message(res)}
	if !res.AllSatisfied {
		return rep
	}
	rep.Denied = c.denylist.Decide(candidate)
	if rep.Denied.Denied {
		c.logger.Debug(map[string]any{"source": rep.Denied.Source}, "password_denylisted")
		rep.Message = MessageTooCommon
	}
	return rep
}
