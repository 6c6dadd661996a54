package argv

import "log/slog"

// state is the per-parse mutable context. A fresh state is allocated by every
// call to [Model.Parse] and never shared.
type state struct {
	model  *Model
	report *reporter

	tokens []string
	pos    int

	mode    *Mode
	trigger string // token that fixed mode

	// index is the position in args of the next positional argument, or -1
	// while options are still being scanned.
	index int
	args  []*Argument

	opts   map[*Option]*container
	values map[*Argument]*container
}

func (m *Model) newState(tokens []string) *state {
	return &state{
		model:  m,
		report: m.reporter(),
		tokens: tokens,
		index:  -1,
		opts:   make(map[*Option]*container),
		values: make(map[*Argument]*container),
	}
}

func (s *state) scanningOptions() bool { return s.index < 0 }

// take consumes and returns the next token.
func (s *state) take() (string, bool) {
	if s.pos >= len(s.tokens) {
		return "", false
	}

	tok := s.tokens[s.pos]
	s.pos++

	return tok, true
}

// peek returns the next token without consuming it.
func (s *state) peek() (string, bool) {
	if s.pos >= len(s.tokens) {
		return "", false
	}

	return s.tokens[s.pos], true
}

// beginArguments switches to argument scanning, fixing the default mode if
// no option has fixed one.
func (s *state) beginArguments() {
	if s.mode == nil {
		s.mode = s.model.DefaultMode()
		s.trace("mode defaulted", slog.String("mode", s.mode.id))
	}

	s.index = 0
	s.args = s.model.argumentsFor(s.mode)

	s.trace("scanning arguments",
		slog.String("mode", s.mode.id),
		slog.Int("arguments", len(s.args)),
	)
}

func (s *state) optionContainer(o *Option) *container {
	c, ok := s.opts[o]
	if !ok {
		c = newContainer(o.Name, o.Type, o.Style)
		s.opts[o] = c
	}

	return c
}

func (s *state) argumentContainer(a *Argument) *container {
	c, ok := s.values[a]
	if !ok {
		c = newContainer(a.ID, a.Type, a.Style)
		s.values[a] = c
	}

	return c
}

func (s *state) assign(token string) assign {
	return assign{
		convert: s.model.convert,
		report:  s.report,
		token:   token,
	}
}

func (s *state) trace(msg string, attrs ...slog.Attr) {
	s.model.logger.Trace(msg, attrs...)
}
