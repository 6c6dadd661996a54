package argv

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions bounds the "did you mean" list of an undefined option.
const maxSuggestions = 3

// Parse consumes tokens and returns the resolved mode and bound values.
//
// Tokens are scanned as options until the end-of-options marker "--" or the
// first token that is not an option; every later token is positional. On
// error the returned Result is nil.
func (m *Model) Parse(tokens []string) (*Result, error) {
	s := m.newState(tokens)

	if err := s.run(); err != nil {
		m.logger.Debug("parse failed", slog.Any("error", err))

		return nil, err
	}

	return s.result(), nil
}

func (s *state) run() error {
	for {
		tok, ok := s.take()
		if !ok {
			break
		}

		s.trace("token",
			slog.Int("pos", s.pos-1),
			slog.String("token", tok),
			slog.Bool("options", s.scanningOptions()),
		)

		var err error
		if s.scanningOptions() {
			err = s.dispatchOption(tok)
		} else {
			err = s.dispatchArgument(tok)
		}

		if err != nil {
			return err
		}
	}

	return s.finish()
}

func (s *state) dispatchOption(tok string) error {
	if tok == EndOfOptions {
		s.beginArguments()

		return nil
	}

	if o, ok := s.model.byName[tok]; ok {
		return s.option(o, tok, valueFollows)
	}

	if !isOptionToken(tok) {
		s.beginArguments()

		return s.dispatchArgument(tok)
	}

	if name, value, ok := strings.Cut(tok, "="); ok {
		if o, ok := s.model.byName[name]; ok {
			return s.option(o, name, valueInline(value))
		}
	}

	if isBundle(tok) {
		return s.bundle(tok)
	}

	return s.undefined(tok, tok)
}

// valueSource describes where an option's value comes from.
type valueSource struct {
	inline   string
	isInline bool // --name=value
	bundled  bool // non-final letter of a bundle; no value available
}

var (
	valueFollows = valueSource{}
	valueBundled = valueSource{bundled: true}
)

func valueInline(v string) valueSource {
	return valueSource{inline: v, isInline: true}
}

// option runs the mode resolution step and the option-value step for o.
func (s *state) option(o *Option, tok string, src valueSource) error {
	if err := s.resolveMode(o, tok); err != nil {
		return err
	}

	c := s.optionContainer(o)
	a := s.assign(tok)

	switch {
	case o.Trigger || o.Type.IsBool():
		if src.isInline {
			b, ok := parseBoolLiteral(src.inline)
			if !ok {
				return ErrConvert.
					Wrap(fmt.Errorf("%s: %q is not a boolean", o.Name, src.inline)).
					With(
						slog.String("subject", o.Name),
						slog.String("value", src.inline),
					)
			}

			return c.setBool(b, a)
		}

		if o.Trigger || src.bundled {
			return c.setBool(true, a)
		}

		if next, ok := s.peek(); ok {
			if b, ok := parseBoolLiteral(next); ok {
				s.pos++

				return c.setBool(b, a)
			}

			err := s.report.soft(OptionMissingBoolValue,
				o.Name+" not followed by a boolean value",
				slog.String("option", o.Name),
				slog.String("next", next),
			)
			if err != nil {
				return err
			}
		}

		return c.setBool(true, a)

	case src.isInline:
		return c.setValue(src.inline, a)

	default:
		var (
			value string
			ok    bool
		)

		if !src.bundled {
			value, ok = s.take()
		}

		if !ok {
			return ErrMissingValue.Wrap(errors.New(tok)).With(
				slog.String("option", o.Name),
				slog.String("token", tok),
			)
		}

		return c.setValue(value, a)
	}
}

// resolveMode narrows the current mode to the owning mode of o, or fails if
// the two modes are unrelated.
func (s *state) resolveMode(o *Option, tok string) error {
	m := s.model.graph.mode(o.Mode)

	switch {
	case s.mode == nil:
		s.mode, s.trigger = m, tok
		s.trace("mode fixed", slog.String("mode", m.id), slog.String("token", tok))

	case m == s.mode, m.IsAncestorOf(s.mode):

	case m.IsDescendantOf(s.mode):
		s.trace("mode narrowed",
			slog.String("from", s.mode.id),
			slog.String("to", m.id),
			slog.String("token", tok),
		)

		s.mode = m

	default:
		return ErrIncompatibleModes.
			Wrap(fmt.Errorf("%s (mode %q) conflicts with %s (mode %q)",
				tok, m.title, s.trigger, s.mode.title)).
			With(
				slog.String("token", tok),
				slog.String("mode", m.id),
				slog.String("trigger", s.trigger),
				slog.String("current", s.mode.id),
			)
	}

	return nil
}

// bundle expands "-abc" into "-a", "-b", "-c". Every letter must name a
// declared option; only the last may consume a following value.
func (s *state) bundle(tok string) error {
	letters := tok[len(ShortPrefix):]
	opts := make([]*Option, len(letters))

	for i := range letters {
		name := ShortPrefix + letters[i:i+1]

		o, ok := s.model.byName[name]
		if !ok {
			return s.undefined(name, tok)
		}

		opts[i] = o
	}

	err := s.report.soft(OptionMixedShortForm,
		tok+" bundles short options",
		slog.String("token", tok),
	)
	if err != nil {
		return err
	}

	for i, o := range opts {
		src := valueBundled
		if i == len(opts)-1 {
			src = valueFollows
		}

		if err := s.option(o, ShortPrefix+letters[i:i+1], src); err != nil {
			return err
		}
	}

	return nil
}

// undefined returns ErrUndefinedOption for name, suggesting declared names
// that fuzzily match it.
func (s *state) undefined(name, tok string) error {
	err := ErrUndefinedOption.With(slog.String("token", tok))

	candidates := make([]string, 0, len(s.model.byName))
	for _, o := range s.model.options {
		candidates = append(candidates, o.Names()...)
	}

	matches := fuzzy.Find(strings.TrimLeft(name, ShortPrefix), candidates)
	if len(matches) == 0 {
		return err.Wrap(errors.New(name))
	}

	suggest := make([]string, 0, maxSuggestions)
	for _, match := range matches[:min(len(matches), maxSuggestions)] {
		suggest = append(suggest, match.Str)
	}

	return err.
		Wrap(fmt.Errorf("%s (did you mean %s?)", name,
			strings.Join(suggest, ", "))).
		With(slog.Any("suggest", suggest))
}

func (s *state) dispatchArgument(tok string) error {
	if s.index >= len(s.args) {
		return ErrUnexpectedArgument.Wrap(fmt.Errorf("%q", tok)).With(
			slog.String("token", tok),
			slog.String("mode", s.mode.id),
		)
	}

	a := s.args[s.index]

	s.trace("argument", slog.String("argument", a.ID), slog.String("token", tok))

	if err := s.argumentContainer(a).setValue(tok, s.assign(tok)); err != nil {
		return err
	}

	if !a.Type.IsContainer() {
		s.index++
	}

	return nil
}

// finish fixes the default mode if none was fixed and checks that every
// required declaration active in the resolved mode was assigned.
func (s *state) finish() error {
	if s.mode == nil {
		s.mode = s.model.DefaultMode()
		s.trace("mode defaulted", slog.String("mode", s.mode.id))
	}

	for _, o := range s.model.optionsFor(s.mode) {
		if _, ok := s.opts[o]; o.Required && !ok {
			return ErrMissingOption.
				Wrap(fmt.Errorf("%s (mode %q)", o.Name, s.mode.title)).
				With(
					slog.String("option", o.Name),
					slog.String("mode", s.mode.id),
				)
		}
	}

	for _, a := range s.model.argumentsFor(s.mode) {
		if _, ok := s.values[a]; a.Required && !ok {
			return ErrMissingArgument.
				Wrap(fmt.Errorf("%s (mode %q)", a.ID, s.mode.title)).
				With(
					slog.String("argument", a.ID),
					slog.String("mode", s.mode.id),
				)
		}
	}

	return nil
}

// isBundle reports whether tok has the form "-xy..." with two or more
// ASCII letters or digits.
func isBundle(tok string) bool {
	if len(tok) < len(ShortPrefix)+2 || !strings.HasPrefix(tok, ShortPrefix) ||
		strings.HasPrefix(tok, LongPrefix) {
		return false
	}

	for _, r := range tok[len(ShortPrefix):] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
