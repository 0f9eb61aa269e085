// Package logger provides structured logging for wizcli.
//
// It wraps log/slog with:
//
//   - Terse text on stderr by default, without timestamps; JSON on request
//   - Redaction of passwords and session tokens, including token query
//     parameters inside request URLs
//   - Command and API call IDs carried through context (see L)
//   - A global level that the shell can change while running
package logger
