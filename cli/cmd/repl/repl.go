package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/modecli/argv"
	"github.com/ardnew/modecli/cli/cmd"
	"github.com/ardnew/modecli/decl"
	"github.com/ardnew/modecli/log"
)

// declMsg is sent when the declaration was edited or reloaded successfully.
type declMsg struct {
	decl  *cmd.Declaration
	model *argv.Model
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after an error.
type editDeclinedMsg struct{}

// errMsg is sent when an edit or reload fails.
type errMsg struct{ err error }

const (
	parsePrompt = "➜ "
	ctrlPrompt  = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help            Print this cruft
  modes           List modes
  order [MODE]    Show the positional argument order
  options [MODE]  List options
  edit            Edit the declaration file in $EDITOR
  reload          Re-read the declaration file
  clear           Clear screen
  quit            Exit REPL

Usage:
  Type a command line to parse it against the declarations
  Quote arguments containing spaces with ' or "
  Option names complete as you type; Tab / Shift-Tab cycle candidates
  Press Esc to toggle between parse and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeParse inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Command is the repl subcommand.
type Command struct {
	NoHistory bool `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (c *Command) Run(ctx context.Context) error {
	d, err := cmd.DeclarationFrom(ctx)
	if err != nil {
		return err
	}

	var historyPath string

	if cache, ok := cmd.Var(ctx, cmd.CacheIdentifier); ok && !c.NoHistory {
		historyPath = filepath.Join(cache, baseHistory)
	}

	return Run(ctx, d, historyPath, log.With(slog.String("component", "repl")))
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	decl         *cmd.Declaration
	argm         *argv.Model
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	saved        [2]struct {
		text   string
		cursor int
	} // per-mode input preserved across toggles
}

// Run starts the REPL on the declarations d. History is persisted to
// historyPath unless it is empty.
func Run(
	ctx context.Context,
	d *cmd.Declaration,
	historyPath string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("decl", d.Path),
		slog.String("history", historyPath),
	)

	argm, err := d.Model()
	if err != nil {
		return err
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, d, argm, history, logger)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	d *cmd.Declaration,
	argm *argv.Model,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(parsePrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		decl:       d,
		argm:       argm,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeParse,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(parsePrompt) - 2

		return m, nil

	case declMsg:
		m.decl, m.argm = msg.decl, msg.model
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl declarations updated",
			slog.Int("options", len(m.argm.Options())),
			slog.Int("arguments", len(m.argm.Arguments())),
		)
		refreshMatches(&m, false)

		return m, tea.Println(resultStyle.Render("✔ declarations updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case errMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var c tea.Cmd

	m.input, c = m.input.Update(msg)

	return m, c
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hint())
	b.WriteString("\n")

	return b.String()
}

// hint returns the line shown below the input: the history position, a
// usage hint, the completion bar, or a summary of the option at the cursor.
func (m model) hint() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "":
		if m.mode == modeParse {
			return hintStyle.Render(
				"Type arguments to parse or press Esc for commands")
		}

		return hintStyle.Render(
			"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")

	case len(m.matches) > 0 && !m.exactMatch():
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)

	case m.mode == modeParse:
		word, _, _ := wordBounds(input, m.input.Position())

		return describeOption(m.argm, word)
	}

	return ""
}

// exactMatch reports whether the word at the cursor already equals the best
// candidate.
func (m model) exactMatch() bool {
	return m.matches[0].Str == m.input.Value()[m.wordStart:m.wordEnd]
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeParse {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeParse), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var c tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, c = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, c
	}

	// Any other key (backspace, delete, arrows, etc.) edits freely without
	// auto-confirming a completion.
	var c tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, c = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, c
}

// cycle moves the tab selection by step, completing the word at the cursor
// with the selected candidate. A sole candidate is completed immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also drops the completion bar when exactly
// one candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if autoConfirm && len(m.matches) == 1 && m.exactMatch() {
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved[modeParse].text, m.saved[modeParse].cursor = "", 0
	m.saved[modeCtrl].text, m.saved[modeCtrl].cursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Write(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not write history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl input",
		slog.String("input", input),
		slog.Int("mode", int(m.mode)),
	)

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	return m, tea.Sequence(
		tea.Println(promptStyle.Render(parsePrompt)+inputStyle.Render(input)),
		tea.Println(m.evaluate(input)),
	)
}

// evaluate parses one input line and renders the outcome.
func (m model) evaluate(input string) string {
	tokens, err := splitLine(input)
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	res, err := m.decl.ParseWith(m.argm, tokens)
	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl parse failed",
			slog.Any("error", err))

		return errorStyle.Render("error: " + err.Error())
	}

	return formatResult(res)
}

// formatResult renders a parse result as the resolved mode followed by one
// "name = value" line per bound declaration and one line per diagnostic.
func formatResult(res *argv.Result) string {
	var b strings.Builder

	b.WriteString(resultStyle.Render("mode " + res.Mode.ID()))

	for _, v := range res.Values() {
		b.WriteString("\n  ")
		b.WriteString(v.Name)
		b.WriteString(hintStyle.Render(" = "))
		b.WriteString(cmd.FormatValue(v.Value))
	}

	for _, d := range res.Diagnostics {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("warning: " + d.String()))
	}

	return b.String()
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	name, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "modes":
		return m, tea.Sequence(echo, tea.Println(m.listModes()))

	case "order":
		return m, tea.Sequence(echo, tea.Println(m.listOrder(args)))

	case "options":
		return m, tea.Sequence(echo, tea.Println(m.listOptions(args)))

	case "c", "clear":
		return m, tea.ClearScreen

	case "reload":
		return m, tea.Sequence(echo, m.reload)

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + name + " (try 'help')"),
		)
	}
}

// reload re-reads the declaration file from disk.
func (m model) reload() tea.Msg {
	set, err := decl.Load(m.decl.Path)
	if err != nil {
		return errMsg{err}
	}

	next := &cmd.Declaration{Path: m.decl.Path, Set: set, Settings: m.decl.Settings}

	argm, err := next.Model()
	if err != nil {
		return errMsg{err}
	}

	return declMsg{decl: next, model: argm}
}

func (m model) edit() tea.Cmd {
	c := &editDeclCommand{
		decl:    m.decl,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(c, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return errMsg{err}
		case c.updated == nil:
			return editCancelledMsg{}
		}

		argm, err := c.updated.Model()
		if err != nil {
			return errMsg{err}
		}

		return declMsg{decl: c.updated, model: argm}
	})
}

func (m model) listModes() string {
	var b strings.Builder

	for _, mode := range m.argm.Modes() {
		line := mode.ID()
		if mode == m.argm.DefaultMode() {
			line += " (default)"
		}

		fmt.Fprintf(&b, "  %s %s\n", line,
			hintStyle.Render("extends "+strings.Join(mode.ExtendedModes(), ", ")))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// modeArg resolves the optional mode argument of a control command.
func (m model) modeArg(args []string) (*argv.Mode, error) {
	if len(args) == 0 {
		return nil, nil
	}

	mode := m.argm.Mode(args[0])
	if mode == nil {
		return nil, cmd.ErrUnknownMode.Wrap(errors.New(args[0]))
	}

	return mode, nil
}

func (m model) listOrder(args []string) string {
	mode, err := m.modeArg(args)
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	list := m.argm.Arguments()
	if mode != nil {
		list = m.argm.ArgumentsFor(mode)
	}

	var b strings.Builder

	for i, a := range list {
		fmt.Fprintf(&b, "  %d. %s %s\n", i+1, a.ID,
			hintStyle.Render(a.Type.String()+"  mode "+a.Mode))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) listOptions(args []string) string {
	mode, err := m.modeArg(args)
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	list := m.argm.Options()
	if mode != nil {
		list = m.argm.OptionsFor(mode)
	}

	var b strings.Builder

	for _, o := range list {
		b.WriteString("  ")
		b.WriteString(describeOption(m.argm, o.Name))
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// historyStep moves through history by step (-1 older, +1 newer). With
// sameMode it skips entries from the other input mode; otherwise it
// switches mode to match the entry.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	// Stepping past the newest entry clears the input.
	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode].text = m.input.Value()
	m.saved[m.mode].cursor = m.input.Position()

	m.mode = mode
	m.tabActive = false

	if mode == modeParse {
		m.input.Prompt = promptStyle.Render(parsePrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	refreshMatches(&m, false)

	return m
}
