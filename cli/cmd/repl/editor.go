package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ardnew/modecli/cli/cmd"
	"github.com/ardnew/modecli/decl"
	"github.com/ardnew/modecli/log"
)

const defaultEditor = "vi"

// editDeclCommand implements [tea.ExecCommand] for the declaration
// edit-validate-retry loop. It copies the declaration file to a temp file
// with the same extension, opens the user's editor, and validates the
// result by building a model from it. A valid edit is written back to the
// declaration file. On error the user is prompted to re-edit; declining
// returns [ErrEditDeclined].
type editDeclCommand struct {
	decl    *cmd.Declaration
	ctxFunc func() context.Context
	logger  log.Logger
	updated *cmd.Declaration
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editDeclCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editDeclCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editDeclCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-validate-retry loop.
func (c *editDeclCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := os.ReadFile(c.decl.Path)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "modecli-repl-*"+filepath.Ext(c.decl.Path))
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		// An emptied file cancels the edit.
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		next, checkErr := c.validate(data)
		c.logger.TraceContext(
			ctx,
			"editor validate attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", checkErr == nil),
		)

		if checkErr == nil {
			if err := os.WriteFile(c.decl.Path, data, 0o600); err != nil {
				return err
			}

			c.updated = next

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDeclaration error: %s\n", checkErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = data
	}
}

// validate compiles data as a declaration file and builds its model.
func (c *editDeclCommand) validate(data []byte) (*cmd.Declaration, error) {
	set, err := decl.Parse(c.decl.Path, data)
	if err != nil {
		return nil, err
	}

	next := &cmd.Declaration{Path: c.decl.Path, Set: set, Settings: c.decl.Settings}
	if _, err := next.Model(); err != nil {
		return nil, err
	}

	return next, nil
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	// EDITOR may carry arguments, e.g. "code --wait".
	args := append(strings.Fields(editor), path)

	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Stdin = stdin
	c.Stdout = stdout
	c.Stderr = stderr

	return c.Run()
}
