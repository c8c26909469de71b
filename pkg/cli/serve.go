package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	httpctrl "github.com/secmon-lab/assetcheck/pkg/controller/http"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var maxUploadSize int
	var selectionTTL time.Duration
	var maxSelections int
	var repoCfg config.Repository
	var layoutCfg config.Layout

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ASSETCHECK_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "max-upload-size",
			Usage:       "Maximum size of an imported spreadsheet in bytes",
			Value:       32 << 20,
			Sources:     cli.EnvVars("ASSETCHECK_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
		&cli.DurationFlag{
			Name:        "selection-ttl",
			Usage:       "Idle time after which a print selection expires (0 keeps them)",
			Value:       12 * time.Hour,
			Sources:     cli.EnvVars("ASSETCHECK_SELECTION_TTL"),
			Destination: &selectionTTL,
		},
		&cli.IntFlag{
			Name:        "max-selections",
			Usage:       "Maximum number of live print selections",
			Value:       1000,
			Sources:     cli.EnvVars("ASSETCHECK_MAX_SELECTIONS"),
			Destination: &maxSelections,
		},
	}
	flags = append(flags, layoutCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			layout, err := layoutCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load layout")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithLayout(layout))
			handler := httpctrl.New(uc,
				httpctrl.WithMaxUploadSize(int64(maxUploadSize)),
				httpctrl.WithSelectionTTL(selectionTTL),
				httpctrl.WithMaxSelections(maxSelections),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "repository", repoCfg)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
