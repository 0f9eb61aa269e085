package command

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/cli/output"
	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/telemetry/logger"
)

// UserCommand returns the user command.
func UserCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:      "user",
		Usage:     "Show user information",
		ArgsUsage: "[KEYS...]",
		Description: "Without KEYS, shows the whole record. KEYS select fields by name in any\n" +
			"case style, e.g. displayName, display_name or DisplayName.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Fetch the latest record from the server",
			},
		},
		Action: func(c *cli.Context) error {
			args, err := parseArgs(c)
			if err != nil {
				return err
			}
			rt.hintIfIdle()

			var user *domain.UserInfo
			if args.Bool("refresh") {
				if user, err = rt.accounts.FetchUserInfo(c.Context); err != nil {
					return err
				}
			} else if user = rt.tokens.UserInfo(); user == nil {
				return domain.ErrUnauthenticated.WithDetails("run `login` first")
			}
			if user.Token != "" {
				user.Token = logger.RedactString(user.Token)
			}

			if args.Len() == 0 {
				return rt.render(user)
			}
			return renderUserKeys(rt, user, args.Slice())
		},
	}
}

// userFields returns the user record keyed by normalized field name.
func userFields(user *domain.UserInfo) (map[string]any, map[string]string, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, nil, err
	}

	names := make(map[string]string, len(fields))
	for name := range fields {
		names[normalizeKey(name)] = name
	}
	return fields, names, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strcase.ToLowerCamel(key))
}

func renderUserKeys(rt *Runtime, user *domain.UserInfo, keys []string) error {
	fields, names, err := userFields(user)
	if err != nil {
		return err
	}

	selected := make(map[string]any, len(keys))
	var ordered []string
	for _, key := range keys {
		name, ok := names[normalizeKey(key)]
		if !ok {
			valid := make([]string, 0, len(fields))
			for n := range fields {
				valid = append(valid, n)
			}
			sort.Strings(valid)
			return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown key %q (valid: %s)", key, strings.Join(valid, ", ")))
		}
		selected[name] = fields[name]
		ordered = append(ordered, name)
	}

	if rt.format != output.FormatTable {
		return rt.render(selected)
	}
	for _, name := range ordered {
		rt.printf("%v\n", selected[name])
	}
	return nil
}

// versionRow is the table form of one knowledge base's value versions.
type versionRow struct {
	KbGUID     string `json:"kbGuid"`
	MaxVersion int64  `json:"maxVersion"`
	Keys       int    `json:"keys"`
	KeyList    string `json:"keyList" table:"wide"`
}

func versionRows(entries []*domain.KbValueVersions) []versionRow {
	rows := make([]versionRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, versionRow{
			KbGUID:     e.KbGUID,
			MaxVersion: e.MaxVersion(),
			Keys:       len(e.Versions),
			KeyList:    strings.Join(e.Keys(), ","),
		})
	}
	return rows
}

// VersionsCommand returns the versions command.
func VersionsCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "versions",
		Usage: "List key/value versions of your knowledge bases",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Fetch every page and show the merged result",
			},
			&cli.Int64Flag{
				Name:  "cursor",
				Usage: "Only list versions newer than this value (single page)",
			},
		},
		Action: func(c *cli.Context) error {
			rt.hintIfIdle()
			if c.Bool("all") {
				return versionsAll(c, rt)
			}

			page, err := rt.accounts.FetchValueVersions(c.Context, c.Int64("cursor"))
			if err != nil {
				return err
			}
			if rt.format != output.FormatTable {
				return rt.render(page.Entries)
			}
			if err := rt.render(versionRows(page.Entries)); err != nil {
				return err
			}
			if !page.IsLast() {
				fmt.Fprintf(rt.errOut, "More versions available: --cursor %d\n", page.NextCursor)
			}
			return nil
		},
	}
}

func versionsAll(c *cli.Context, rt *Runtime) error {
	spinner := output.NewSpinner(rt.errOut, "Fetching value versions", rt.format == output.FormatTable && rt.stderrIsTerminal())
	spinner.Start()
	if err := rt.accounts.InitAllValueVersions(c.Context); err != nil {
		spinner.Fail("Fetching value versions failed")
		return err
	}
	spinner.Stop()

	all := rt.accounts.ValueVersions()
	entries := make([]*domain.KbValueVersions, 0, len(all))
	for _, v := range all {
		entries = append(entries, v)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].KbGUID < entries[j].KbGUID })

	if rt.format != output.FormatTable {
		return rt.render(entries)
	}
	return rt.render(versionRows(entries))
}
