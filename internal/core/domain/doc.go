// Package domain defines the core records of the WizNote sync client.
//
// Domain records are plain values without IO dependencies. This package
// contains:
//
//   - Endpoint: normalized account/content server address
//   - UserInfo: identity and session token returned at login
//   - KbValueVersions: per knowledge base key/value version counters
//   - Document: downloaded document info and raw content
//   - Errors: client error kinds and server return code mapping
package domain
