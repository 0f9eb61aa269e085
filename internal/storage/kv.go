package storage

import "context"

// KVEngine is the embedded key-value store behind the session store.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Scan iterates over keys with a given prefix.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// GC reclaims value log space. Returns the number of rewritten log files.
	GC(ctx context.Context) (int, error)

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*KVStats, error)

	// Close flushes and closes the engine.
	Close() error
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// LSMSize is the LSM tree size in bytes.
	LSMSize uint64 `json:"lsm_size" yaml:"lsm_size"`

	// ValueLogSize is the value log size in bytes.
	ValueLogSize uint64 `json:"value_log_size" yaml:"value_log_size"`

	// TotalSize is LSMSize plus ValueLogSize.
	TotalSize uint64 `json:"total_size" yaml:"total_size"`
}

// KVConfig configures the embedded KV engine.
type KVConfig struct {
	// Dir is the storage directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in memory (tests).
	InMemory bool

	// GCThreshold is the discard ratio passed to value log GC (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB, the session store holds a handful of small records.
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: true
	SyncWrites bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Dir:              dir,
		GCThreshold:      0.5,
		ValueLogFileSize: 16 << 20,
		SyncWrites:       true,
	}
}
