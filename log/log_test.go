package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelTrace + 2, "trace+2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"WARN", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for name := range Levels() {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat(" JSON "); got != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v", got)
	}

	if got := ParseFormat("yaml"); got != DefaultFormat {
		t.Errorf("ParseFormat(yaml) = %v, want default", got)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestZeroLogger(t *testing.T) {
	var l Logger

	l.Error("discarded", slog.String("k", "v"))
	l.With(slog.Int("n", 1)).Trace("discarded")

	if l.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", l.Level(), DefaultLevel)
	}

	if l.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", l.Format(), DefaultFormat)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf,
		WithPretty(false),
		WithTimeLayout("none"),
		WithLevel(LevelWarn),
	)

	l.Info("dropped")
	l.Warn("kept")

	got := buf.String()
	if strings.Contains(got, "dropped") || !strings.Contains(got, "msg=kept") {
		t.Errorf("output = %q", got)
	}
}

func TestTraceLevelName(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf,
		WithPretty(false),
		WithTimeLayout("none"),
		WithLevel(LevelTrace),
	)

	l.Trace("deep")

	if want := "level=TRACE msg=deep\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false), WithFormat(FormatJSON))
	l.With(slog.String("mode", "run")).Info("bound", slog.Int("n", 2))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}

	if rec["msg"] != "bound" || rec["mode"] != "run" || rec["n"] != float64(2) {
		t.Errorf("record = %v", rec)
	}

	if _, ok := rec["time"]; !ok {
		t.Errorf("record has no time: %v", rec)
	}
}

func TestWrap(t *testing.T) {
	var first, second bytes.Buffer

	l := Make(&first, WithPretty(false), WithLevel(LevelError))
	w := l.Wrap(WithOutput(&second), WithLevel(LevelDebug))

	if w.Level() != LevelDebug || l.Level() != LevelError {
		t.Fatalf("levels = %v, %v", l.Level(), w.Level())
	}

	w.Debug("to second")

	if first.Len() != 0 || !strings.Contains(second.String(), "to second") {
		t.Errorf("first = %q, second = %q", first.String(), second.String())
	}
}

func TestPrettyText(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"))
	l.With(slog.String("mode", "run")).
		WithGroup("opt").
		Info("bound", slog.Bool("set", true), slog.Group("at", slog.Int("pos", 3)))

	got := stripANSI(buf.String())

	for _, want := range []string{
		"level=INFO",
		"msg=bound",
		"mode=run",
		"opt.set=true",
		"opt.at.pos=3",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q lacks %q", got, want)
		}
	}

	if strings.Contains(got, "time=") {
		t.Errorf("output %q has a time", got)
	}
}

func TestPrettyJSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none"))
	l.Warn("odd", slog.String("token", "-x"))

	got := stripANSI(buf.String())
	if !strings.HasPrefix(got, "{\n") || !strings.Contains(got, "  token: -x") {
		t.Errorf("output = %q", got)
	}
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithPretty(false), WithTimeLayout("none")))
	Config(WithLevel(LevelDebug))

	Debug("via default", slog.String("k", "v"))

	if want := "level=DEBUG msg=\"via default\" k=v\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestCaller(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false), WithTimeLayout("none"), WithCaller(true))
	l.Info("here")

	if !strings.Contains(buf.String(), "log_test.go:") {
		t.Errorf("output %q does not name the calling file", buf.String())
	}
}

func stripANSI(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			for i < len(s) && s[i] != 'm' {
				i++
			}

			continue
		}

		b.WriteByte(s[i])
	}

	return b.String()
}
