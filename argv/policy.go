package argv

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Action is the configured response to a soft condition.
type Action int

const (
	// Accept tolerates the condition silently.
	Accept Action = iota
	// Warn tolerates the condition and records a [Diagnostic].
	Warn
	// Fail aborts with the condition's error.
	Fail
)

// String returns the lowercase name of the action.
func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Warn:
		return "warn"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseAction parses "accept", "warn" or "fail" (case-insensitive).
// The aliases "ignore"/"silent", "warning" and "error"/"strict" are accepted.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "ignore", "silent":
		return Accept, nil
	case "warn", "warning":
		return Warn, nil
	case "fail", "error", "strict":
		return Fail, nil
	default:
		return Accept, fmt.Errorf("invalid policy action %q", s)
	}
}

// Condition identifies one of the soft conditions governed by a [Policy].
type Condition int

const (
	ModeDuplicated Condition = iota
	ModeUndefined
	OptionMixedShortForm
	OptionMissingBoolValue
	OptionDuplicated
	MapDuplicateKey
)

// Conditions lists every soft condition in declaration order.
func Conditions() []Condition {
	return []Condition{
		ModeDuplicated,
		ModeUndefined,
		OptionMixedShortForm,
		OptionMissingBoolValue,
		OptionDuplicated,
		MapDuplicateKey,
	}
}

// String returns the diagnostic code of the condition.
func (c Condition) String() string {
	switch c {
	case ModeDuplicated:
		return "mode-duplicated"
	case ModeUndefined:
		return "mode-undefined"
	case OptionMixedShortForm:
		return "option-mixed-short-form"
	case OptionMissingBoolValue:
		return "option-missing-boolean-value"
	case OptionDuplicated:
		return "option-duplicated"
	case MapDuplicateKey:
		return "map-duplicate-key"
	default:
		return "unknown"
	}
}

// err returns the sentinel raised when the condition's action is [Fail].
func (c Condition) err() *Error {
	switch c {
	case ModeDuplicated:
		return ErrDuplicateMode
	case ModeUndefined:
		return ErrUndefinedMode
	case OptionMixedShortForm:
		return ErrMixedShortForm
	case OptionMissingBoolValue:
		return ErrMissingBoolValue
	case OptionDuplicated:
		return ErrDuplicateOption
	default:
		return ErrDuplicateMapKey
	}
}

// ParseCondition parses a diagnostic code such as "mode-undefined".
func ParseCondition(s string) (Condition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Conditions() {
		if c.String() == s {
			return c, nil
		}
	}

	return 0, fmt.Errorf("invalid policy condition %q", s)
}

// Policy assigns an [Action] to every soft condition.
type Policy struct {
	ModeDuplicated         Action
	ModeUndefined          Action
	OptionMixedShortForm   Action
	OptionMissingBoolValue Action
	OptionDuplicated       Action
	MapDuplicateKey        Action
}

// DefaultPolicy tolerates every soft condition with a diagnostic.
func DefaultPolicy() Policy {
	return Policy{
		ModeDuplicated:         Warn,
		ModeUndefined:          Warn,
		OptionMixedShortForm:   Warn,
		OptionMissingBoolValue: Warn,
		OptionDuplicated:       Warn,
		MapDuplicateKey:        Warn,
	}
}

// StrictPolicy fails on every soft condition.
func StrictPolicy() Policy {
	return Policy{
		ModeDuplicated:         Fail,
		ModeUndefined:          Fail,
		OptionMixedShortForm:   Fail,
		OptionMissingBoolValue: Fail,
		OptionDuplicated:       Fail,
		MapDuplicateKey:        Fail,
	}
}

// LenientPolicy accepts every soft condition silently.
func LenientPolicy() Policy { return Policy{} }

// Action returns the action assigned to c.
func (p Policy) Action(c Condition) Action {
	switch c {
	case ModeDuplicated:
		return p.ModeDuplicated
	case ModeUndefined:
		return p.ModeUndefined
	case OptionMixedShortForm:
		return p.OptionMixedShortForm
	case OptionMissingBoolValue:
		return p.OptionMissingBoolValue
	case OptionDuplicated:
		return p.OptionDuplicated
	case MapDuplicateKey:
		return p.MapDuplicateKey
	default:
		return Fail
	}
}

// Set returns a copy of p with c assigned to a.
func (p Policy) Set(c Condition, a Action) Policy {
	switch c {
	case ModeDuplicated:
		p.ModeDuplicated = a
	case ModeUndefined:
		p.ModeUndefined = a
	case OptionMixedShortForm:
		p.OptionMixedShortForm = a
	case OptionMissingBoolValue:
		p.OptionMissingBoolValue = a
	case OptionDuplicated:
		p.OptionDuplicated = a
	case MapDuplicateKey:
		p.MapDuplicateKey = a
	}

	return p
}

// ParsePolicy applies comma-separated "condition=action" pairs to base.
func ParsePolicy(base Policy, list string) (Policy, error) {
	for item := range strings.SplitSeq(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, value, ok := strings.Cut(item, "=")
		if !ok {
			return base, fmt.Errorf("invalid policy entry %q", item)
		}

		c, err := ParseCondition(name)
		if err != nil {
			return base, err
		}

		a, err := ParseAction(value)
		if err != nil {
			return base, err
		}

		base = base.Set(c, a)
	}

	return base, nil
}

// Diagnostic records a soft condition that was tolerated with [Warn].
type Diagnostic struct {
	Condition Condition
	Message   string
	Attrs     []slog.Attr
}

// String returns "<code>: <message>".
func (d Diagnostic) String() string {
	return d.Condition.String() + ": " + d.Message
}

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(d.Attrs)+2)
	attrs = append(attrs,
		slog.String("code", d.Condition.String()),
		slog.String("message", d.Message),
	)

	return slog.GroupValue(append(attrs, d.Attrs...)...)
}

// DiagnosticSink observes diagnostics as they are recorded.
type DiagnosticSink func(Diagnostic)

// reporter interprets a policy at the point a soft condition occurs.
type reporter struct {
	policy Policy
	sink   DiagnosticSink
	log    func(msg string, attrs ...slog.Attr)
	diags  []Diagnostic
}

// soft applies the configured action for c. It returns a non-nil error only
// when the action is [Fail].
func (r *reporter) soft(c Condition, msg string, attrs ...slog.Attr) error {
	switch r.policy.Action(c) {
	case Accept:
		return nil

	case Warn:
		d := Diagnostic{Condition: c, Message: msg, Attrs: attrs}
		r.diags = append(r.diags, d)

		if r.log != nil {
			r.log("soft condition", slog.Any("diagnostic", d))
		}

		if r.sink != nil {
			r.sink(d)
		}

		return nil

	default:
		return c.err().Wrap(errors.New(msg)).With(attrs...)
	}
}
