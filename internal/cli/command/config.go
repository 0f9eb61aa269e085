package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/cli/config"
	"github.com/yndnr/wizcli-go/internal/cli/output"
	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/infra/confloader"
)

// ConfigCommand returns the config command group.
func ConfigCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show and initialize the CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration (defaults, file, env and flags merged)",
				Action: func(c *cli.Context) error {
					// Nested sections read better as YAML than as a two-column table.
					if rt.format == output.FormatTable {
						return output.NewFormatter(output.FormatYAML, false).Format(rt.out, rt.cfg)
					}
					return rt.render(rt.cfg)
				},
			},
			{
				Name:  "path",
				Usage: "Print the config file path",
				Action: func(c *cli.Context) error {
					rt.printf("%s\n", rt.cfgPath)
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: func(c *cli.Context) error {
					if confloader.FileExists(rt.cfgPath) && !c.Bool("force") {
						return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("%s exists, use --force to overwrite", rt.cfgPath))
					}
					if err := config.Save(rt.cfg, rt.cfgPath); err != nil {
						return err
					}
					rt.printf("Wrote %s\n", rt.cfgPath)
					return nil
				},
			},
		},
	}
}
