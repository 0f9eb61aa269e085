package command

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/cli/config"
	"github.com/yndnr/wizcli-go/internal/cli/connection"
	"github.com/yndnr/wizcli-go/internal/cli/output"
	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/core/service"
	"github.com/yndnr/wizcli-go/internal/infra/buildinfo"
	"github.com/yndnr/wizcli-go/internal/infra/tlsroots"
	"github.com/yndnr/wizcli-go/internal/storage"
	"github.com/yndnr/wizcli-go/internal/telemetry/logger"
	"github.com/yndnr/wizcli-go/internal/telemetry/metric"
	"github.com/yndnr/wizcli-go/internal/wizapi"
)

// Options configures a Runtime.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Fs receives exported documents (default: OS filesystem).
	Fs afero.Fs

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// Runtime holds the clients and session shared by every command of one
// process, including all commands typed into the shell.
type Runtime struct {
	in     *bufio.Reader
	stdin  bool
	out    io.Writer
	errOut io.Writer
	fs     afero.Fs
	now    func() time.Time

	ready   bool
	inShell bool

	cfg      *config.CLIConfig
	cfgPath  string
	cfgFlags map[string]any
	format   output.Format
	wide     bool
	baseWide bool

	log       logger.Logger
	metrics   *metric.Registry
	account   *wizapi.AccountClient
	tokens    *service.TokenManager
	accounts  *service.AccountService
	documents *service.DocumentService

	store         *storage.SessionStore
	restoredToken string
}

// NewRuntime creates an uninitialized runtime. Configuration is loaded on
// the first command, once global flags are known.
func NewRuntime(opts Options) *Runtime {
	rt := &Runtime{
		in:     bufio.NewReader(orReader(opts.In, os.Stdin)),
		stdin:  opts.In == nil,
		out:    orWriter(opts.Out, os.Stdout),
		errOut: orWriter(opts.Err, os.Stderr),
		fs:     opts.Fs,
		now:    opts.Now,
	}
	if rt.fs == nil {
		rt.fs = afero.NewOsFs()
	}
	if rt.now == nil {
		rt.now = time.Now
	}
	return rt
}

func orReader(r, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// flagKeys maps global flags to configuration keys.
var flagKeys = map[string]string{
	"server":    "account_server",
	"output":    "output",
	"log-level": "log_level",
	"data-dir":  "data_dir",
	"timeout":   "timeout",
}

// init loads configuration and wires the clients. Later calls only apply
// per-command output flags.
func (rt *Runtime) init(c *cli.Context) error {
	if rt.ready {
		return rt.applyOutputFlags(c)
	}

	flags := make(map[string]any)
	for name, key := range flagKeys {
		if c.IsSet(name) {
			flags[key] = c.Value(name)
		}
	}
	if c.Bool("verbose") {
		flags["log_level"] = "debug"
	}
	if d, ok := flags["timeout"].(time.Duration); ok {
		flags["timeout"] = d.String()
	}

	rt.cfgPath = c.String("config")
	if rt.cfgPath == "" {
		rt.cfgPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(rt.cfgPath, flags)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.cfgFlags = flags
	rt.format, _ = output.ParseFormat(cfg.Output)
	rt.wide = c.Bool("wide")
	rt.baseWide = rt.wide

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "text", Output: rt.errOut})
	if err != nil {
		return err
	}
	logger.SetDefault(log)
	rt.log = log

	tlsConfig, err := clientTLS(cfg.TLS)
	if err != nil {
		return err
	}

	rt.metrics = metric.NewRegistry()
	transport := connection.NewHTTPClient(connection.Options{
		Timeout:            cfg.Timeout,
		TLS:                tlsConfig,
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify,
		UserAgent:          buildinfo.UserAgent(),
		Logger:             log.Named("http"),
		Metrics:            rt.metrics,
	})

	serverOpt := wizapi.WithClientVersion(cfg.ClientVersion)
	rt.account = wizapi.NewAccountClient(wizapi.NewServer(cfg.AccountServer, domain.RoleAccount, serverOpt), transport)
	rt.tokens = service.NewTokenManager(rt.account, &service.TokenManagerConfig{
		IdleTimeout: cfg.Session.IdleTimeout,
		Now:         rt.now,
	})
	rt.accounts = service.NewAccountService(rt.tokens, rt.account, &service.AccountServiceConfig{
		MaxPages: cfg.Sync.MaxPages,
		PageRate: cfg.Sync.PageRate,
	})
	rt.documents = service.NewDocumentService(rt.tokens, func(kbServer, kbGUID string) service.KnowledgeBaseAPI {
		return wizapi.NewKnowledgeBaseClient(wizapi.NewServer(kbServer, domain.RoleContent, serverOpt), kbGUID, transport)
	}, rt.fs)

	rt.ready = true
	rt.restoreSession(c.Context)
	return nil
}

// resetOutput restores the configured output settings between shell lines.
func (rt *Runtime) resetOutput() {
	rt.format, _ = output.ParseFormat(rt.cfg.Output)
	rt.wide = rt.baseWide
}

// clientTLS builds the transport TLS settings, or nil for the defaults.
func clientTLS(cfg config.TLSConfig) (*tls.Config, error) {
	if cfg.CAFile == "" && cfg.CertFile == "" && cfg.KeyFile == "" {
		return nil, nil
	}
	roots := tlsroots.NewPool()
	if cfg.CAFile != "" {
		if err := roots.AddPath(cfg.CAFile); err != nil {
			return nil, fmt.Errorf("tls.ca_file: %w", err)
		}
	}
	return roots.ClientConfig(cfg.CertFile, cfg.KeyFile)
}

func (rt *Runtime) applyOutputFlags(c *cli.Context) error {
	if c.IsSet("output") {
		f, err := output.ParseFormat(c.String("output"))
		if err != nil {
			return err
		}
		rt.format = f
	}
	if c.IsSet("wide") {
		rt.wide = c.Bool("wide")
	}
	return nil
}

// restoreSession loads a remembered session if one was saved before.
func (rt *Runtime) restoreSession(ctx context.Context) {
	if !sessionDirExists(rt) {
		return
	}
	store, err := rt.sessionStore()
	if err != nil {
		rt.log.Warn("cannot open session store", "error", err)
		return
	}
	user, err := store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			rt.log.Warn("cannot load saved session", "error", err)
		}
		return
	}
	var savedAt time.Time
	if meta, err := store.Meta(ctx); err == nil {
		savedAt = meta.SavedAt
	}
	rt.tokens.RestoreSession(user, savedAt)
	rt.restoredToken = user.Token
	rt.log.Debug("restored session", "user_id", user.UserID, "saved_at", savedAt)
}

// sessionStore opens the session store on first use.
func (rt *Runtime) sessionStore() (*storage.SessionStore, error) {
	if rt.store != nil {
		return rt.store, nil
	}

	masterKey, err := storage.LoadOrCreateMasterKey(rt.cfg.KeyPath())
	if err != nil {
		return nil, err
	}
	tokenKey, err := storage.DeriveTokenKey(masterKey)
	if err != nil {
		return nil, err
	}
	engine, err := storage.NewBadgerEngine(storage.DefaultKVConfig(rt.cfg.SessionDir()), rt.log.Named("session"))
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSessionStore(engine, tokenKey)
	if err != nil {
		engine.Close()
		return nil, err
	}
	rt.store = store
	return store, nil
}

// remember saves the current session.
func (rt *Runtime) remember(ctx context.Context) error {
	user := rt.tokens.UserInfo()
	if user == nil {
		return domain.ErrUnauthenticated
	}
	store, err := rt.sessionStore()
	if err != nil {
		return err
	}
	if err := store.Save(ctx, user); err != nil {
		return err
	}
	rt.restoredToken = user.Token
	return nil
}

// forget removes the remembered session, if any.
func (rt *Runtime) forget(ctx context.Context) (bool, error) {
	if rt.store == nil && !sessionDirExists(rt) {
		return false, nil
	}
	store, err := rt.sessionStore()
	if err != nil {
		return false, err
	}
	rt.restoredToken = ""
	return store.Forget(ctx)
}

// syncSession updates the remembered session to the final login state:
// an expired token is forgotten and a used one has its timestamp renewed.
func (rt *Runtime) syncSession(ctx context.Context) error {
	if rt.store == nil || rt.restoredToken == "" {
		return nil
	}
	switch rt.tokens.State() {
	case service.StateExpired:
		_, err := rt.store.Forget(ctx)
		return err
	case service.StateAuthenticated:
		if user := rt.tokens.UserInfo(); user.Token == rt.restoredToken {
			return rt.store.Save(ctx, user)
		}
	}
	return nil
}

// Close persists the remembered session and releases the store.
func (rt *Runtime) Close() error {
	if rt.store == nil {
		return nil
	}
	var result *multierror.Error
	if err := rt.syncSession(context.Background()); err != nil {
		result = multierror.Append(result, fmt.Errorf("save session: %w", err))
	}
	if err := rt.store.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close session store: %w", err))
	}
	rt.store = nil
	return result.ErrorOrNil()
}

// render writes data in the selected output format.
func (rt *Runtime) render(data any) error {
	return output.NewFormatter(rt.format, rt.wide).Format(rt.out, data)
}

// printf writes a human-readable line to stdout.
func (rt *Runtime) printf(format string, args ...any) {
	fmt.Fprintf(rt.out, format, args...)
}

// hintIfIdle warns when the session has likely expired on the server.
func (rt *Runtime) hintIfIdle() {
	if rt.tokens.State() == service.StateAuthenticated && rt.tokens.LikelyExpired(rt.now()) {
		fmt.Fprintf(rt.errOut, "Hint: session idle since %s, the server may have expired it. Run `keep` or `login` if requests fail.\n",
			rt.tokens.LastUsed().Format("15:04"))
	}
}
