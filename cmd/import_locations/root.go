package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"infinite-experiment/gazetteer/internal/config"
	"infinite-experiment/gazetteer/internal/db"
	"infinite-experiment/gazetteer/internal/importer"
	"infinite-experiment/gazetteer/internal/logging"
)

type importOptions struct {
	databasePath string
}

func newRootCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import_locations [source-path]",
		Short: "Import countries, states, cities and postal codes from a SQLite dataset",
		Long: "Reads the flat countries/states/zipcodes dataset and loads it into the\n" +
			"normalized destination tables in a single transaction. Running it twice\n" +
			"against the same destination imports every row twice.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return withCode(exitUsage, fmt.Errorf("expected at most one source path, got %d", len(args)))
			}
			if len(args) == 1 && cmd.Flags().Changed("database-path") && args[0] != opts.databasePath {
				return withCode(exitUsage, fmt.Errorf("source path given both as argument and --database-path"))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.databasePath = args[0]
			}
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.databasePath, "database-path", "", "path to the source dataset (default $SOURCE_DB_PATH or allcountries.sqlite3)")
	return cmd
}

func runImport(ctx context.Context, opts importOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return withCode(exitUsage, err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		return withCode(exitUsage, err)
	}
	defer logging.Close()

	path := opts.databasePath
	if path == "" {
		path = cfg.SourceDBPath
	}

	gdb, err := db.InitORM(cfg.Database)
	if err != nil {
		return withCode(exitDBWrite, err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gdb); err != nil {
		return withCode(exitDBWrite, err)
	}

	result, err := importer.New(gdb).Run(ctx, path)
	if err != nil {
		return classify(err)
	}

	fmt.Fprintf(os.Stdout, "Imported %d countries, %d states, %d cities, %d locations in %s (%d rows skipped)\n",
		result.Countries, result.States, result.Cities, result.Locations, result.Elapsed.Round(1e6), result.Dropped.Total())
	return nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
