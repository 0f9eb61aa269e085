// Package storage persists the remembered login session.
//
//   - kv.go: KVEngine interface and configuration
//   - badger.go: Badger v3 implementation of KVEngine
//   - keyfile.go: local master key file and HKDF key derivation
//   - session.go: SessionStore, one encrypted session record
//
// The session token is sealed with an adaptive AEAD cipher; the rest of
// the user record is stored in clear so it can be listed without the key.
package storage
