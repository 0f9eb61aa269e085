package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/cli/output"
	"github.com/yndnr/wizcli-go/internal/infra/buildinfo"
	"github.com/yndnr/wizcli-go/internal/storage"
	"github.com/yndnr/wizcli-go/internal/telemetry/metric"
)

// statsView is the JSON and YAML form of `stats`.
type statsView struct {
	Requests []metric.RequestStat `json:"requests" yaml:"requests"`
	Store    *storage.KVStats     `json:"session_store,omitempty" yaml:"session_store,omitempty"`
}

// StatsCommand returns the stats command.
func StatsCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show API request statistics of this process",
		Action: func(c *cli.Context) error {
			rows, err := rt.metrics.Snapshot()
			if err != nil {
				return err
			}

			view := statsView{Requests: rows}
			if rt.store != nil {
				if view.Store, err = rt.store.Stats(c.Context); err != nil {
					return err
				}
			}

			if rt.format != output.FormatTable {
				return rt.render(view)
			}
			if len(rows) == 0 {
				rt.printf("No requests yet.\n")
			} else if err := rt.render(rows); err != nil {
				return err
			}
			if view.Store != nil {
				rt.printf("\nSession store: %d bytes\n", view.Store.TotalSize)
			}
			return nil
		},
	}
}

// VersionCommand returns the version command.
func VersionCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			return rt.render(buildinfo.Get())
		},
	}
}
