package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/secmon-lab/assetcheck/pkg/utils/errutil"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
	"github.com/secmon-lab/assetcheck/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	app := newApp(version, os.Stdout)
	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run app")
	}
	return nil
}

func newApp(version string, w io.Writer) *cli.Command {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "assetcheck",
		Usage:   "Asset inventory checking: import lists, record scan results, export reports",
		Version: version,
		Flags:   flags,
		Writer:  w,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Debug("Starting assetcheck", "logger", loggerCfg, "sentry", sentryCfg.IsEnabled())
			return logging.With(ctx, logging.Default()), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdImport(),
			cmdTask(),
			cmdAsset(),
			cmdScan(),
			cmdExport(),
			cmdClear(),
			cmdMigrate(),
			cmdServe(),
		},
	}
}

// withRepository opens the configured repository for the duration of fn
func withRepository(ctx context.Context, repoCfg *config.Repository, fn func(repo interfaces.Repository) error) error {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to initialize repository")
	}
	defer safe.Close(ctx, repo)

	return fn(repo)
}

// withUseCases opens the configured repository and builds the use cases on it
func withUseCases(ctx context.Context, repoCfg *config.Repository, fn func(uc *usecase.UseCases) error, opts ...usecase.Option) error {
	return withRepository(ctx, repoCfg, func(repo interfaces.Repository) error {
		return fn(usecase.New(repo, opts...))
	})
}

// taskIDArg parses the n-th positional argument as a task ID
func taskIDArg(c *cli.Command, n int) (types.TaskID, error) {
	raw := c.Args().Get(n)
	if raw == "" {
		return 0, goerr.New("task ID argument is required", goerr.V("usage", c.ArgsUsage))
	}
	return types.ParseTaskID(raw)
}

// requireArgs fails when fewer than n positional arguments were given
func requireArgs(c *cli.Command, n int) error {
	if c.Args().Len() < n {
		return goerr.New("missing arguments",
			goerr.V("command", c.Name), goerr.V("usage", c.ArgsUsage), goerr.V("given", c.Args().Len()))
	}
	return nil
}
