package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/cli/config"
	"github.com/yndnr/wizcli-go/internal/cli/repl"
	"github.com/yndnr/wizcli-go/internal/infra/confloader"
	"github.com/yndnr/wizcli-go/internal/telemetry/logger"
)

// ShellCommand returns the shell command.
func ShellCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start the interactive shell (the default without a command)",
		Action: func(c *cli.Context) error {
			return runShell(c, rt)
		},
	}
}

// runShell reads commands until exit. Every line runs through the same
// app, so the login state is shared between lines.
func runShell(c *cli.Context, rt *Runtime) error {
	if rt.inShell {
		return errors.New("already in the shell")
	}
	rt.inShell = true
	defer func() { rt.inShell = false }()

	app := c.App
	exec := func(ctx context.Context, args []string) error {
		rt.resetOutput()
		return app.RunContext(ctx, append([]string{app.Name}, args...))
	}

	r := repl.New(exec,
		repl.WithIO(rt.in, rt.out, rt.errOut),
		repl.WithHistory(repl.NewHistory(rt.cfg.HistoryPath())),
		repl.WithCompleter(repl.NewCompleter(commandLines(app.Commands)...)),
		repl.WithValueFlags(valueFlags(app.Flags)...),
	)

	watcher := rt.watchConfig()

	fmt.Fprintf(rt.out, "Welcome to wizcli. Type `help` for commands, `exit` to quit.\n")
	runErr := r.Run(c.Context)

	var result *multierror.Error
	if runErr != nil {
		result = multierror.Append(result, runErr)
	}
	if err := r.History().Save(); err != nil {
		result = multierror.Append(result, fmt.Errorf("save history: %w", err))
	}
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			result = multierror.Append(result, fmt.Errorf("stop config watcher: %w", err))
		}
	}
	return result.ErrorOrNil()
}

// commandLines lists command names, aliases and "group sub" lines.
func commandLines(cmds []*cli.Command) []string {
	var lines []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		for _, name := range cmd.Names() {
			lines = append(lines, name)
			for _, sub := range cmd.Subcommands {
				lines = append(lines, name+" "+sub.Name)
			}
		}
	}
	return lines
}

// valueFlags returns the dashed names of flags that take a value.
func valueFlags(flags []cli.Flag) []string {
	var names []string
	for _, f := range flags {
		if df, ok := f.(cli.DocGenerationFlag); !ok || !df.TakesValue() {
			continue
		}
		for _, n := range f.Names() {
			if len(n) == 1 {
				names = append(names, "-"+n)
			} else {
				names = append(names, "--"+n)
			}
		}
	}
	return names
}

// watchConfig follows the config file while the shell runs and applies
// log level changes. It returns nil when the file cannot be watched.
func (rt *Runtime) watchConfig() *confloader.Watcher {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.log.Named("config")))
	if err != nil {
		rt.log.Debug("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(rt.cfgPath); err != nil {
		w.Stop()
		return nil
	}

	level := rt.cfg.LogLevel
	w.OnChange(func(path string) {
		cfg, err := config.Load(path, rt.cfgFlags)
		if err != nil {
			rt.log.Warn("ignoring invalid config change", "path", path, "error", err)
			return
		}
		if cfg.LogLevel != level {
			level = cfg.LogLevel
			logger.SetLevel(level)
			rt.log.Info("log level changed", "level", level)
		}
	})
	w.StartAsync()
	return w
}
