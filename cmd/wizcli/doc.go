// Package main provides the entry point for wizcli.
//
// wizcli talks to the WizNote sync API, either one command per run or
// in an interactive shell.
//
// Usage:
//
//	wizcli login -u me@example.com --remember
//	wizcli user displayName
//	wizcli versions --all -o json
//	wizcli doc download <DOC_GUID> --out ./notes
//	wizcli                      # interactive shell
package main
