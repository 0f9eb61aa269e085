package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/cli/output"
	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/core/service"
	"github.com/yndnr/wizcli-go/internal/wizapi"
)

// DocumentCommand returns the document subcommand group.
func DocumentCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:    "document",
		Aliases: []string{"doc"},
		Usage:   "Work with documents",
		Subcommands: []*cli.Command{
			{
				Name:      "download",
				Usage:     "Download a document",
				ArgsUsage: "DOC_GUID [flags]",
				Description: "Downloads from your personal knowledge base unless --kb and --kb-server\n" +
					"are given. With --out the document is written as <guid>.json and <guid>.html.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kb",
						Usage: "Knowledge base GUID (default: your personal knowledge base)",
					},
					&cli.StringFlag{
						Name:  "kb-server",
						Usage: "Content server of the knowledge base",
					},
					&cli.BoolFlag{
						Name:  "no-info",
						Usage: "Skip the document info",
					},
					&cli.BoolFlag{
						Name:  "no-data",
						Usage: "Skip the document content",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Directory to export the document into",
					},
				},
				Action: func(c *cli.Context) error {
					return documentDownload(c, rt)
				},
			},
		},
	}
}

// documentRow summarizes a downloaded document.
type documentRow struct {
	DocGUID   string `json:"docGuid"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Version   int64  `json:"version"`
	HTMLBytes int    `json:"htmlBytes"`
	Resources int    `json:"resources"`
	KbGUID    string `json:"kbGuid" table:"wide"`
}

func documentDownload(c *cli.Context, rt *Runtime) error {
	args, err := parseArgs(c)
	if err != nil {
		return err
	}
	docGUID := args.First()
	if docGUID == "" {
		return domain.ErrMissingArgument.WithDetails("DOC_GUID")
	}
	if args.Len() > 1 {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unexpected arguments %v", args.Tail()))
	}

	if args.String("out") != "" {
		if err := service.CheckExportName(docGUID); err != nil {
			return err
		}
	}

	opts := wizapi.DefaultDownloadOptions()
	opts.Info = !args.Bool("no-info")
	opts.Data = !args.Bool("no-data")

	rt.hintIfIdle()
	spinner := output.NewSpinner(rt.errOut, "Downloading "+docGUID, rt.format == output.FormatTable && rt.stderrIsTerminal())
	spinner.Start()
	doc, err := rt.documents.Download(c.Context, args.String("kb"), args.String("kb-server"), docGUID, opts)
	if err != nil {
		spinner.Fail("Download failed")
		return err
	}
	spinner.Stop()

	if dir := args.String("out"); dir != "" {
		files, err := rt.documents.Export(doc, dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(rt.errOut, "Wrote %s\n", f)
		}
	}

	if rt.format != output.FormatTable {
		return rt.render(doc)
	}

	row := documentRow{
		DocGUID:   doc.DocGUID,
		KbGUID:    doc.KbGUID,
		HTMLBytes: len(doc.HTML),
		Resources: len(doc.Resources),
	}
	if doc.Info != nil {
		row.Title = doc.Info.Title
		row.Category = doc.Info.Category
		row.Version = doc.Info.Version
	}
	return rt.render([]documentRow{row})
}
