package cli

import (
	"context"
	"fmt"

	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdAsset() *cli.Command {
	return &cli.Command{
		Name:    "asset",
		Aliases: []string{"a"},
		Usage:   "Inspect and check assets of a task",
		Commands: []*cli.Command{
			cmdAssetList(),
			cmdAssetShow(),
			cmdAssetMatch(),
			cmdAssetMismatch(),
		},
	}
}

// filterFlags binds --keyword and --status to filter
func filterFlags(keyword *string, statuses *[]string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "keyword",
			Aliases:     []string{"k"},
			Usage:       "Match code, name or location (case-insensitive substring)",
			Destination: keyword,
		},
		&cli.StringSliceFlag{
			Name:        "status",
			Aliases:     []string{"s"},
			Usage:       "Only assets in this status; repeatable (UNCHECKED, MATCHED, MISMATCH, LABEL_REPRINT)",
			Destination: statuses,
		},
	}
}

func buildFilter(keyword string, statuses []string) (model.AssetFilter, error) {
	filter := model.AssetFilter{Keyword: keyword}
	for _, s := range statuses {
		status, err := types.ParseAssetStatus(s)
		if err != nil {
			return model.AssetFilter{}, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	return filter, nil
}

func cmdAssetList() *cli.Command {
	var keyword string
	var statuses []string
	var repoCfg config.Repository

	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List assets of a task with a per-status summary",
		ArgsUsage: "TASK_ID",
		Flags:     append(filterFlags(&keyword, &statuses), repoCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := taskIDArg(c, 0)
			if err != nil {
				return err
			}
			filter, err := buildFilter(keyword, statuses)
			if err != nil {
				return err
			}

			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				list, err := uc.Asset.List(ctx, id, filter)
				if err != nil {
					return err
				}

				w := c.Root().Writer
				fmt.Fprintf(w, "Task %s: %s\n", list.Task.ID, list.Task.Name)
				printSummary(w, list.Summary)
				if len(list.Assets) == 0 {
					fmt.Fprintln(w, "No matching assets")
					return nil
				}
				printAssets(w, list.Assets)
				return nil
			})
		},
	}
}

func cmdAssetShow() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:      "show",
		Usage:     "Show one asset; warns when it was already checked",
		ArgsUsage: "TASK_ID CODE",
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
				result, err := uc.Asset.Open(ctx, id, c.Args().Get(1))
				if err != nil {
					return err
				}
				printOpenResult(c, result)
				return nil
			})
		},
	}
}

func printOpenResult(c *cli.Command, result *usecase.OpenResult) {
	w := c.Root().Writer
	if result.AlreadyChecked {
		printAlreadyChecked(w, result.Asset)
	}
	printAsset(w, result.Asset)
}

func cmdAssetMatch() *cli.Command {
	var reprint bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "reprint",
			Aliases:     []string{"r"},
			Usage:       "The asset matches but its label must be reprinted",
			Destination: &reprint,
		},
	}

	return &cli.Command{
		Name:      "match",
		Usage:     "Confirm that an asset matches the list",
		ArgsUsage: "TASK_ID CODE",
		Flags:     append(flags, repoCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := requireArgs(c, 2); err != nil {
				return err
			}
			id, err := taskIDArg(c, 0)
			if err != nil {
				return err
			}

			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				code := c.Args().Get(1)
				opened, err := uc.Asset.Open(ctx, id, code)
				if err != nil {
					return err
				}
				if opened.AlreadyChecked {
					printAlreadyChecked(c.Root().Writer, opened.Asset)
				}

				updated, err := uc.Asset.ConfirmMatch(ctx, id, code, reprint)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "%s: %s\n", updated.Code, statusText(updated.Status))
				return nil
			})
		},
	}
}

func cmdAssetMismatch() *cli.Command {
	var user, department, location string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{Name: "user", Usage: "Actual user", Destination: &user},
		&cli.StringFlag{Name: "department", Usage: "Actual department", Destination: &department},
		&cli.StringFlag{Name: "location", Usage: "Actual location", Destination: &location},
	}

	return &cli.Command{
		Name:      "mismatch",
		Usage:     "Record that an asset differs from the list, with corrected details",
		ArgsUsage: "TASK_ID CODE",
		Flags:     append(flags, repoCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := requireArgs(c, 2); err != nil {
				return err
			}
			id, err := taskIDArg(c, 0)
			if err != nil {
				return err
			}

			// Only flags given on the command line overwrite stored values
			var details model.AssetDetails
			if c.IsSet("user") {
				details.User = &user
			}
			if c.IsSet("department") {
				details.Department = &department
			}
			if c.IsSet("location") {
				details.Location = &location
			}

			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				updated, err := uc.Asset.DeclareMismatch(ctx, id, c.Args().Get(1), details)
				if err != nil {
					return err
				}
				printAsset(c.Root().Writer, updated)
				return nil
			})
		},
	}
}
