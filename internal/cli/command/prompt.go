package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptLine asks for one line of input.
func (rt *Runtime) promptLine(label string) (string, error) {
	fmt.Fprint(rt.errOut, label)
	line, err := rt.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret asks for input without echo when stdin is a terminal.
func (rt *Runtime) promptSecret(label string) (string, error) {
	if rt.in.Buffered() == 0 && rt.stdinIsTerminal() {
		fmt.Fprint(rt.errOut, label)
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(rt.errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	return rt.promptLine(label)
}

func (rt *Runtime) stdinIsTerminal() bool {
	return rt.stdin && term.IsTerminal(int(os.Stdin.Fd()))
}

// stderrIsTerminal reports whether progress output goes to a terminal.
func (rt *Runtime) stderrIsTerminal() bool {
	f, ok := rt.errOut.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
