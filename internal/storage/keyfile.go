package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"
)

// MasterKeySize is the length of the local master key.
const MasterKeySize = 32

// tokenKeyInfo separates the token key from other keys derived from the
// same master key.
const tokenKeyInfo = "wizcli session token v1"

// ErrInvalidKeyFile is returned when the key file has the wrong size.
var ErrInvalidKeyFile = errors.New("storage: invalid key file")

// LoadOrCreateMasterKey reads the master key at path, creating it with
// 0600 permissions when missing.
func LoadOrCreateMasterKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != MasterKeySize {
			return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidKeyFile, path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: read key file: %w", err)
	}

	key = make([]byte, MasterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("storage: generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("storage: create key dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("storage: create key file: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("storage: write key file: %w", err)
	}
	return key, nil
}

// DeriveTokenKey derives the 32-byte token encryption key from the master
// key with HKDF-SHA256.
func DeriveTokenKey(masterKey []byte) ([]byte, error) {
	if len(masterKey) < MasterKeySize {
		return nil, ErrInvalidKeyFile
	}
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(tokenKeyInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("storage: derive key: %w", err)
	}
	return key, nil
}
