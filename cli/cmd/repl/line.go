package repl

import "strings"

// splitLine splits an input line into tokens the way a POSIX shell splits
// words: runs of whitespace separate tokens, single quotes preserve their
// content literally, double quotes preserve whitespace and honor backslash
// before '"' and '\', and an unquoted backslash escapes the next character.
func splitLine(line string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		inWord bool
		quote  rune
		escape bool
	)

	for _, r := range line {
		switch {
		case escape:
			cur.WriteRune(r)

			escape = false

		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}

		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escape = true
			default:
				cur.WriteRune(r)
			}

		case r == '\'' || r == '"':
			quote, inWord = r, true

		case r == '\\':
			escape, inWord = true, true

		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				tokens = append(tokens, cur.String())
				cur.Reset()

				inWord = false
			}

		default:
			cur.WriteRune(r)

			inWord = true
		}
	}

	if quote != 0 || escape {
		return nil, ErrUnterminated
	}

	if inWord {
		tokens = append(tokens, cur.String())
	}

	return tokens, nil
}
