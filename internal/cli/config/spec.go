package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/yndnr/wizcli-go/internal/cli/output"
	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/wizapi"
)

// CLIConfig is the configuration for wizcli.
type CLIConfig struct {
	// AccountServer is the account server base URL.
	AccountServer string `koanf:"account_server" json:"account_server" yaml:"account_server"`

	// ClientVersion is sent as the clientVersion query parameter.
	ClientVersion string `koanf:"client_version" json:"client_version" yaml:"client_version"`

	Output   string        `koanf:"output" json:"output" yaml:"output"` // table, json, yaml
	Timeout  time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout"`
	LogLevel string        `koanf:"log_level" json:"log_level" yaml:"log_level"`

	// DataDir holds the session database, key file and shell history.
	DataDir string `koanf:"data_dir" json:"data_dir" yaml:"data_dir"`

	TLS     TLSConfig     `koanf:"tls" json:"tls" yaml:"tls"`
	Sync    SyncConfig    `koanf:"sync" json:"sync" yaml:"sync"`
	Session SessionConfig `koanf:"session" json:"session" yaml:"session"`
}

// TLSConfig configures certificate verification and the client certificate.
type TLSConfig struct {
	// CAFile is a PEM file or a directory of them, trusted in addition to
	// the system roots.
	CAFile string `koanf:"ca_file" json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
	// CertFile and KeyFile hold a client certificate for mutual TLS.
	CertFile           string `koanf:"cert_file" json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile            string `koanf:"key_file" json:"key_file,omitempty" yaml:"key_file,omitempty"`
	InsecureSkipVerify bool   `koanf:"insecure_skip_verify" json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
}

// SyncConfig bounds value-version pagination.
type SyncConfig struct {
	MaxPages int     `koanf:"max_pages" json:"max_pages" yaml:"max_pages"`
	PageRate float64 `koanf:"page_rate" json:"page_rate" yaml:"page_rate"` // pages per second, <= 0 unlimited
}

// SessionConfig configures the local session estimate.
type SessionConfig struct {
	IdleTimeout time.Duration `koanf:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		AccountServer: wizapi.DefaultAccountServer,
		Output:        output.FormatTable.String(),
		Timeout:       30 * time.Second,
		LogLevel:      "warn",
		DataDir:       DefaultConfigDir(),
		Sync: SyncConfig{
			MaxPages: 1000,
			PageRate: 5,
		},
		Session: SessionConfig{
			IdleTimeout: 15 * time.Minute,
		},
	}
}

// defaultValues flattens Default into dotted keys for the loader.
func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"account_server":           d.AccountServer,
		"client_version":           d.ClientVersion,
		"output":                   d.Output,
		"timeout":                  d.Timeout.String(),
		"log_level":                d.LogLevel,
		"data_dir":                 d.DataDir,
		"tls.ca_file":              d.TLS.CAFile,
		"tls.cert_file":            d.TLS.CertFile,
		"tls.key_file":             d.TLS.KeyFile,
		"tls.insecure_skip_verify": d.TLS.InsecureSkipVerify,
		"sync.max_pages":           d.Sync.MaxPages,
		"sync.page_rate":           d.Sync.PageRate,
		"session.idle_timeout":     d.Session.IdleTimeout.String(),
	}
}

// Validate checks the configuration for values the client cannot use.
func (c *CLIConfig) Validate() error {
	if _, err := output.ParseFormat(c.Output); err != nil {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("output: %v", err))
	}
	if domain.NewEndpoint(c.AccountServer, domain.RoleAccount).Host() == "" {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("account_server: %q has no host", c.AccountServer))
	}
	if c.Timeout <= 0 {
		return domain.ErrInvalidArgument.WithDetails("timeout must be positive")
	}
	if c.Sync.MaxPages <= 0 {
		return domain.ErrInvalidArgument.WithDetails("sync.max_pages must be positive")
	}
	if c.Session.IdleTimeout < 0 {
		return domain.ErrInvalidArgument.WithDetails("session.idle_timeout must not be negative")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return domain.ErrInvalidArgument.WithDetails("tls.cert_file and tls.key_file must be set together")
	}
	if c.DataDir == "" {
		return domain.ErrInvalidArgument.WithDetails("data_dir is required")
	}
	return nil
}

// SessionDir returns the session database directory.
func (c *CLIConfig) SessionDir() string {
	return filepath.Join(c.DataDir, "session")
}

// KeyPath returns the master key file path.
func (c *CLIConfig) KeyPath() string {
	return filepath.Join(c.DataDir, "session.key")
}

// HistoryPath returns the shell history file path.
func (c *CLIConfig) HistoryPath() string {
	return filepath.Join(c.DataDir, "history")
}
