// Package output renders command results for wizcli.
//
// Results are written as an aligned table (default), indented JSON or
// YAML. Table mode derives columns from json struct tags. Spinner shows
// progress for slow requests on an interactive terminal.
package output
