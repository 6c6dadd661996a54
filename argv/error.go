package argv

import (
	"log/slog"
	"strings"
)

// Declaration-time errors. These abort construction of a [Model].
var (
	ErrOptionConflict     = NewError("option name already declared")
	ErrInvalidOptionName  = NewError("invalid option name")
	ErrModeCycle          = NewError("cyclic mode extension")
	ErrArgumentCycle      = NewError("cyclic argument placement")
	ErrUnresolvedArgument = NewError("unresolved argument placement")
	ErrReservedID         = NewError("reserved argument id")
	ErrInvalidArgumentID  = NewError("invalid argument id")
	ErrDuplicateArgument  = NewError("argument id already declared")
	ErrContainerNotLast   = NewError("container argument must be last")
	ErrDuplicateMode      = NewError("mode already declared")
	ErrUndefinedMode      = NewError("undefined mode")
)

// Token-time errors. These abort the current parse.
var (
	ErrUndefinedOption    = NewError("undefined option")
	ErrMissingValue       = NewError("option missing value")
	ErrMalformedMapEntry  = NewError("malformed map entry")
	ErrUnexpectedArgument = NewError("unexpected extra argument")
	ErrIncompatibleModes  = NewError("incompatible modes")
	ErrMixedShortForm     = NewError("bundled short options")
	ErrMissingBoolValue   = NewError("option missing boolean value")
	ErrDuplicateOption    = NewError("duplicate option")
	ErrDuplicateMapKey    = NewError("duplicate map key")
	ErrConvert            = NewError("invalid value")
)

// Post-scan errors.
var (
	ErrMissingOption   = NewError("missing required option")
	ErrMissingArgument = NewError("missing required argument")
)

// Error represents an engine error with optional structured logging
// attributes. It implements both error and slog.LogValuer.
//
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] match that
// sentinel with errors.Is.
type Error struct {
	msg   string
	err   error
	kind  *Error
	attrs []slog.Attr
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or "" depending on which are set.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.kind != nil && e.kind == t)
}

// Attrs returns the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// Attr returns the string form of the attribute with the given key, if any.
func (e *Error) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value.String(), true
		}
	}

	return "", false
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		kind:  e.root(),
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		kind:  e.root(),
		attrs: newAttrs,
	}
}

func (e *Error) root() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}
