package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/infra/buildinfo"
	"github.com/yndnr/wizcli-go/internal/telemetry/logger"
)

// App creates the CLI application bound to rt. Running it without a
// subcommand opens the interactive shell.
func App(rt *Runtime) *cli.App {
	app := &cli.App{
		Name:      "wizcli",
		Usage:     "WizNote command-line client",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Writer:    rt.out,
		ErrWriter: rt.errOut,
		Reader:    rt.in,
		Commands: []*cli.Command{
			LoginCommand(rt),
			LogoutCommand(rt),
			KeepCommand(rt),
			TokenCommand(rt),
			UserCommand(rt),
			VersionsCommand(rt),
			DocumentCommand(rt),
			SessionCommand(rt),
			ConfigCommand(rt),
			StatsCommand(rt),
			VersionCommand(rt),
			ShellCommand(rt),
		},
		Before: func(c *cli.Context) error {
			c.Context = logger.WithCommand(c.Context, c.Args().First())
			return rt.init(c)
		},
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return fmt.Errorf("unknown command %q", c.Args().First())
			}
			return runShell(c, rt)
		},
		// Errors are returned to the caller, which decides on the exit code.
		ExitErrHandler:       func(*cli.Context, error) {},
		HideVersion:          true,
		EnableBashCompletion: true,
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Account server address; a bare host or IP gets https://",
			EnvVars: []string{"WIZCLI_SERVER"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path (default: ~/.wizcli/cli.yaml)",
			EnvVars: []string{"WIZCLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Directory for the saved session and shell history",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
			Value: 30 * time.Second,
		},
	}
}
