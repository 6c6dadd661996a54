package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "modes", "order", "options", "edit", "reload", "clear", "quit",
}

// modeCommands are the control-mode commands whose argument is a mode id.
var modeCommands = []string{"order", "options"}

// isWordBoundary reports whether r separates words for completion. An '='
// ends the option name of an inline "--name=value" token.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '=':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completions available for a word starting at
// wordStart. In parse mode only option-like words complete, against every
// declared option name; in control mode the first word completes command
// names and the argument of a mode command completes mode ids.
func (m model) candidates(input, word string, wordStart int) []string {
	if m.mode == modeCtrl {
		fields := strings.Fields(input[:wordStart])

		switch {
		case len(fields) == 0:
			return ctrlCommands
		case len(fields) == 1 && slices.Contains(modeCommands, fields[0]):
			var ids []string
			for _, mode := range m.argm.Modes() {
				ids = append(ids, mode.ID())
			}

			return ids
		default:
			return nil
		}
	}

	if !strings.HasPrefix(word, "-") {
		return nil
	}

	// Inline values are not completed.
	if wordStart > 0 && input[wordStart-1] == '=' {
		return nil
	}

	var names []string
	for _, o := range m.argm.Options() {
		names = append(names, o.Names()...)
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, along with the word boundaries.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, wordStart, wordEnd
	}

	candidates := m.candidates(input, word, wordStart)
	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
