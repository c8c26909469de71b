package cli

import (
	"context"
	"fmt"

	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdTask() *cli.Command {
	return &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "Manage inventory tasks",
		Commands: []*cli.Command{
			cmdTaskList(),
			cmdTaskRename(),
			cmdTaskDelete(),
		},
	}
}

func cmdTaskList() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List tasks, newest first",
		Flags:   repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				tasks, err := uc.Task.List(ctx)
				if err != nil {
					return err
				}
				printTasks(c.Root().Writer, tasks)
				return nil
			})
		},
	}
}

func cmdTaskRename() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a task",
		ArgsUsage: "TASK_ID NAME",
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
				task, err := uc.Task.Rename(ctx, id, c.Args().Get(1))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "Renamed task %s to %s\n", task.ID, task.Name)
				return nil
			})
		},
	}
}

func cmdTaskDelete() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a task and all of its assets",
		ArgsUsage: "TASK_ID",
		Flags:     repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := taskIDArg(c, 0)
			if err != nil {
				return err
			}

			return withUseCases(ctx, &repoCfg, func(uc *usecase.UseCases) error {
				if err := uc.Task.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "Deleted task %s\n", id)
				return nil
			})
		},
	}
}
