package cli

import (
	"context"

	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdScan() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:      "scan",
		Usage:     "Resolve a decoded barcode or QR payload to an asset",
		ArgsUsage: "TASK_ID PAYLOAD",
		Flags:     repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := requireArgs(c, 2); err != nil {
				return err
			}
			id, err := taskIDArg(c, 0)
			if err != nil {
				return err
			}

			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				result, err := uc.Asset.Scan(ctx, id, c.Args().Get(1))
				if err != nil {
					return err
				}
				printOpenResult(c, result)
				return nil
			})
		},
	}
}
