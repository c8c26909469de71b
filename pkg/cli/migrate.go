package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/cli/config"
	"github.com/secmon-lab/assetcheck/pkg/repository/firestore"
	"github.com/secmon-lab/assetcheck/pkg/repository/rdb"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
	"github.com/secmon-lab/assetcheck/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var dryRun bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
	}

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate the SQL schema or the Firestore indexes",
		Flags:   append(flags, repoCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.From(ctx).Info("Migrate configuration", "repository", repoCfg, "dryRun", dryRun)

			switch repoCfg.Backend() {
			case config.BackendFirestore:
				return migrateFirestore(ctx, c, &repoCfg, dryRun)
			case config.BackendMemory:
				fmt.Fprintln(c.Root().Writer, "Memory backend has nothing to migrate")
				return nil
			default:
				return migrateRDB(ctx, c, &repoCfg, dryRun)
			}
		},
	}
}

func migrateRDB(ctx context.Context, c *cli.Command, repoCfg *config.Repository, dryRun bool) error {
	repoCfg.DisableAutoMigrate()
	db, err := repoCfg.ConfigureRDB(ctx)
	if err != nil {
		return err
	}
	defer safe.Close(ctx, db)

	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	latest := rdb.LatestSchemaVersion()
	w := c.Root().Writer

	if dryRun {
		if current >= latest {
			fmt.Fprintf(w, "Schema is up to date (version %d)\n", current)
			return nil
		}
		fmt.Fprintf(w, "Schema version %d, %d migrations pending (latest %d)\n", current, latest-current, latest)
		return nil
	}

	applied, err := db.Migrate(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	fmt.Fprintf(w, "Applied %d migrations, schema version %d\n", applied, latest)
	return nil
}

func migrateFirestore(ctx context.Context, c *cli.Command, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.From(ctx)
	if repoCfg.ProjectID() == "" {
		return goerr.Wrap(config.ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
	}

	indexConfig := firestore.IndexConfig(repoCfg.CollectionPrefix())

	client, err := fireconf.New(ctx, repoCfg.ProjectID(), firestoreDatabaseID(repoCfg.DatabaseID()), indexConfig,
		fireconf.WithLogger(logger),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if !dryRun {
		logger.Info("Applying index migrations")
		if err := client.Migrate(ctx); err != nil {
			return goerr.Wrap(err, "failed to apply migrations")
		}
		fmt.Fprintln(c.Root().Writer, "Firestore indexes migrated")
		return nil
	}

	names := make([]string, 0, len(indexConfig.Collections))
	for _, col := range indexConfig.Collections {
		names = append(names, col.Name)
	}
	current, err := client.Import(ctx, names...)
	if err != nil {
		return goerr.Wrap(err, "failed to import current indexes")
	}
	diff, err := client.DiffConfigs(current)
	if err != nil {
		return goerr.Wrap(err, "failed to diff indexes")
	}
	printIndexDiff(c.Root().Writer, diff)
	return nil
}

// firestoreDatabaseID falls back to the default database when none is set
func firestoreDatabaseID(id string) string {
	if id == "" {
		return "(default)"
	}
	return id
}

func printIndexDiff(w io.Writer, diff *fireconf.DiffResult) {
	if diff == nil || len(diff.Collections) == 0 {
		fmt.Fprintln(w, "No changes required")
		return
	}
	for _, col := range diff.Collections {
		fmt.Fprintf(w, "%s %s: %d indexes to add, %d to delete\n",
			col.Action, col.Name, len(col.IndexesToAdd), len(col.IndexesToDelete))
	}
}
