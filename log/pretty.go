package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	paintKey      = color.New(color.FgHiBlack).SprintFunc()
	paintString   = color.New(color.FgCyan).SprintFunc()
	paintNumber   = color.New(color.FgYellow).SprintFunc()
	paintTrue     = color.New(color.FgGreen).SprintFunc()
	paintFalse    = color.New(color.FgRed).SprintFunc()
	paintDuration = color.New(color.FgMagenta).SprintFunc()
	paintTime     = color.New(color.FgBlue).SprintFunc()
	paintMessage  = color.New(color.Bold).SprintFunc()
)

func paintLevel(level slog.Level) func(...any) string {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case level >= slog.LevelWarn:
		return paintNumber
	case level >= slog.LevelInfo:
		return paintTrue
	default:
		return paintTime
	}
}

// prettyHandler writes colorized records, either as a single line of
// key=value pairs or as an indented multiline object.
//
// Attributes qualified by groups are flattened to dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	object bool
	prefix string      // dotted group path applied to new attributes
	attrs  []slog.Attr // from WithAttrs, already qualified by prefix
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, object: true}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	builtin := []slog.Attr{
		slog.Time(slog.TimeKey, r.Time),
		slog.Any(slog.LevelKey, r.Level),
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			builtin = append(builtin,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	builtin = append(builtin, slog.String(slog.MessageKey, r.Message))

	for _, a := range builtin {
		if a.Key == slog.TimeKey && r.Time.IsZero() {
			continue
		}

		if a = h.replace(nil, a); !a.Equal(slog.Attr{}) {
			attrs = append(attrs, a)
		}
	}

	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = h.flatten(attrs, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)
	if h.object {
		writeObject(buf, r.Level, attrs)
	} else {
		writeLine(buf, r.Level, attrs)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		c.attrs = h.flatten(c.attrs, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) replace(groups []string, a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(groups, a)
}

// flatten resolves a and appends it to dst, expanding groups into dotted
// keys. Empty attributes are dropped.
func (h *prettyHandler) flatten(dst []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return dst
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range group {
			dst = h.flatten(dst, prefix, g)
		}

		return dst
	}

	if a.Equal(slog.Attr{}) {
		return dst
	}

	a.Key = prefix + a.Key

	return append(dst, a)
}

func writeLine(buf *bytes.Buffer, level slog.Level, attrs []slog.Attr) {
	for i, a := range attrs {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(paintKey(a.Key))
		buf.WriteByte('=')
		buf.WriteString(formatValue(level, a))
	}
}

func writeObject(buf *bytes.Buffer, level slog.Level, attrs []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range attrs {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(paintKey(a.Key))
		buf.WriteString(": ")
		buf.WriteString(formatValue(level, a))
	}

	buf.WriteString("\n}")
}

func formatValue(level slog.Level, a slog.Attr) string {
	v := a.Value

	switch a.Key {
	case slog.LevelKey:
		return paintLevel(level)(v.String())
	case slog.MessageKey:
		return paintMessage(v.String())
	}

	switch v.Kind() {
	case slog.KindString:
		return paintString(v.String())
	case slog.KindInt64:
		return paintNumber(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return paintNumber(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return paintNumber(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return paintTrue("true")
		}

		return paintFalse("false")
	case slog.KindDuration:
		return paintDuration(v.Duration().String())
	case slog.KindTime:
		return paintTime(v.Time().Format(DefaultTimeLayout))
	}

	switch x := v.Any().(type) {
	case nil:
		return paintKey("null")
	case error:
		return paintFalse(x.Error())
	case []string:
		return paintString("[" + strings.Join(x, " ") + "]")
	default:
		return paintString(fmt.Sprint(x))
	}
}
