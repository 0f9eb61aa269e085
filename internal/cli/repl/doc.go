// Package repl implements the interactive wizcli shell.
//
// Each input line is split with shell quoting rules and handed to an
// Executor, normally the command tree itself, so the shell accepts the
// same commands and flags as the command line. Builtins are exit, quit
// and history. History is persisted to a file between sessions.
package repl
