package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/secmon-lab/assetcheck/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdImport() *cli.Command {
	var name string
	var repoCfg config.Repository
	var layoutCfg config.Layout

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Task name (default: file name without extension)",
			Destination: &name,
		},
	}
	flags = append(flags, layoutCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:      "import",
		Aliases:   []string{"i"},
		Usage:     "Create a task from an xlsx or csv asset list",
		ArgsUsage: "FILE",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			path := c.Args().Get(0)

			layout, err := layoutCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load layout")
			}

			// #nosec G304 - path is expected to be provided by CLI argument
			f, err := os.Open(path)
			if err != nil {
				return goerr.Wrap(err, "failed to open import file", goerr.V("path", path))
			}
			defer safe.Close(ctx, f)

			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				result, err := uc.Task.Import(ctx, usecase.ImportInput{
					Reader:   f,
					FileName: path,
					Name:     name,
				})
				if err != nil {
					return err
				}

				w := c.Root().Writer
				fmt.Fprintf(w, "Imported %d assets into task %s (%s)\n",
					result.Imported, result.Task.ID, result.Task.Name)
				if result.Dropped > 0 {
					fmt.Fprintln(w, warnColor.Sprintf("Skipped %d rows without code or name", result.Dropped))
				}
				return nil
			}, usecase.WithLayout(layout))
		},
	}
}
