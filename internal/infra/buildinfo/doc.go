// Package buildinfo exposes version information injected via ldflags:
//
//   - Version: Semantic version (e.g., "v0.3.0")
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//
// The Go version is read from the runtime. UserAgent derives the HTTP
// User-Agent header from Version.
package buildinfo
