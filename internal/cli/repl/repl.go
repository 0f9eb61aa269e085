package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
)

// DefaultPrompt is printed before each input line.
const DefaultPrompt = "wizcli>>> "

var builtins = []string{"exit", "quit", "help", "history"}

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	errOutput io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
	// valueFlags lists the global flags that take a value, e.g. "-o".
	valueFlags map[string]bool
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
		r.errOutput = errOut
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithCompleter sets the command completer.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) {
		r.completer = c
	}
}

// WithValueFlags names the global flags that consume the next token, so a
// line like `-o json stats` is looked up as "stats".
func WithValueFlags(names ...string) Option {
	return func(r *REPL) {
		for _, n := range names {
			r.valueFlags[n] = true
		}
	}
}

// WithPrompt overrides DefaultPrompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// New creates a REPL that hands every non-builtin line to exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		errOutput: os.Stderr,
		prompt:    DefaultPrompt,
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory(""),

		valueFlags: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// History returns the history store.
func (r *REPL) History() *History {
	return r.history
}

// Run reads lines until exit, quit, EOF or ctx is done. Command errors are
// printed and the loop continues; errors with an empty message were already
// reported by the command. Only read errors end the loop with an error.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.errOutput, "Warning: cannot load history: %v\n", err)
	}

	// Shares buffering with other readers of the same *bufio.Reader, such
	// as password prompts.
	reader := bufio.NewReader(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(r.output, r.prompt)
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return readErr
		}

		if line := strings.TrimSpace(raw); line != "" {
			r.history.Add(line)
			done, err := r.execute(ctx, line)
			if err != nil && err.Error() != "" {
				fmt.Fprintf(r.errOutput, "Error: %v\n", err)
			}
			if done {
				return nil
			}
		}

		if readErr == io.EOF {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

// execute runs one line. It reports done when the shell should end.
func (r *REPL) execute(ctx context.Context, line string) (bool, error) {
	args, err := shellquote.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return false, nil
	}

	name := r.commandName(args)
	switch name {
	case "exit", "quit":
		return true, nil
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return false, nil
	}

	if name != "" && !r.completer.Known(name) {
		msg := fmt.Sprintf("unknown command %q", name)
		if s := r.completer.Suggest(name); len(s) > 0 {
			msg += fmt.Sprintf(", did you mean %s?", strings.Join(s, " or "))
		}
		return false, errors.New(msg)
	}

	return false, r.exec(ctx, args)
}

// commandName returns the first token after any leading global flags, or
// "" when the line holds flags only.
func (r *REPL) commandName(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			return arg
		}
		if !strings.Contains(arg, "=") && r.valueFlags[arg] {
			i++
		}
	}
	return ""
}
