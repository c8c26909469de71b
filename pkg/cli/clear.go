package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdClear() *cli.Command {
	var force bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "force",
			Usage:       "Confirm the irreversible wipe",
			Destination: &force,
		},
	}

	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every task and asset",
		Flags: append(flags, repoCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if !force {
				return goerr.New("clear deletes all data irreversibly; pass --force to confirm")
			}

			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				if err := uc.Task.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(c.Root().Writer, "All tasks and assets deleted")
				return nil
			})
		},
	}
}
