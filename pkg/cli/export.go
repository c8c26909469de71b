package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
	"github.com/secmon-lab/assetcheck/pkg/service/storage"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var output string
	var format string
	var keyword string
	var statuses []string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file path or gs://bucket/object",
			Required:    true,
			Destination: &output,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Report format (xlsx, csv); default from the output extension",
			Destination: &format,
		},
	}
	flags = append(flags, filterFlags(&keyword, &statuses)...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:      "export",
		Aliases:   []string{"e"},
		Usage:     "Write a status report of a task",
		ArgsUsage: "TASK_ID",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := taskIDArg(c, 0)
			if err != nil {
				return err
			}
			filter, err := buildFilter(keyword, statuses)
			if err != nil {
				return err
			}

			dest, err := storage.ParseDestination(output)
			if err != nil {
				return err
			}

			var f spreadsheet.Format
			if format != "" {
				f, err = spreadsheet.ParseFormat(format)
			} else {
				f, err = spreadsheet.FormatFromName(output)
			}
			if err != nil {
				return err
			}

			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				// Render fully before touching the destination
				var buf bytes.Buffer
				n, err := uc.Asset.ExportTo(ctx, &buf, id, filter, f)
				if err != nil {
					return err
				}
				if err := storage.New().Put(ctx, dest, f.ContentType(), &buf); err != nil {
					return goerr.Wrap(err, "failed to store report", goerr.V("destination", dest.String()))
				}

				fmt.Fprintf(c.Root().Writer, "Exported %d assets to %s\n", n, dest)
				return nil
			})
		},
	}
}
