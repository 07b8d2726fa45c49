package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"hawaii-climate/internal/climate/repository"
	"hawaii-climate/internal/dataset"
)

// newRootCommand builds the dataset tool. defaultPath seeds --db.
func newRootCommand(defaultPath string) *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:           "climatedb",
		Short:         "Build and inspect the climate dataset served by the API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", defaultPath, "path to the sqlite dataset file (env SQLITE_PATH)")

	// withDB opens --db for fn. Only commands that build the dataset pass create.
	withDB := func(create bool, fn func(ctx context.Context, db *sqlx.DB, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db, err := openDataset(dbPath, create)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					slog.Error("db close", "error", err)
				}
			}()
			return fn(cmd.Context(), db, cmd.OutOrStdout(), args)
		}
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the dataset schema",
		Args:  cobra.NoArgs,
		RunE: withDB(true, func(ctx context.Context, db *sqlx.DB, out io.Writer, _ []string) error {
			if err := dataset.Migrate(ctx, db.DB); err != nil {
				return err
			}
			v, err := dataset.SchemaVersion(ctx, db.DB)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "schema at version %s\n", v)
			return err
		}),
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Load CSV exports into the dataset",
	}
	importCmd.AddCommand(
		newImportCommand("stations", "Import hawaii_stations.csv (station,name,latitude,longitude,elevation)", dataset.ImportStations, withDB),
		newImportCommand("measurements", "Import hawaii_measurements.csv (station,date,prcp,tobs)", dataset.ImportMeasurements, withDB),
	)

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print row counts, date range and the most active station",
		Args:  cobra.NoArgs,
		RunE: withDB(false, func(ctx context.Context, db *sqlx.DB, out io.Writer, _ []string) error {
			return printSummary(ctx, db, out)
		}),
	}

	root.AddCommand(migrateCmd, importCmd, summaryCmd)
	return root
}

type importFunc func(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error)

type dbRunner func(create bool, fn func(ctx context.Context, db *sqlx.DB, out io.Writer, args []string) error) func(*cobra.Command, []string) error

func newImportCommand(name, short string, load importFunc, withDB dbRunner) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <csv>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withDB(true, func(ctx context.Context, db *sqlx.DB, out io.Writer, args []string) error {
			if err := dataset.Migrate(ctx, db.DB); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			n, err := load(ctx, db, f)
			if err != nil {
				return fmt.Errorf("import %s from %s: %w", name, args[0], err)
			}
			slog.Info("import finished", "table", name, "rows", n)
			_, err = fmt.Fprintf(out, "imported %d %s\n", n, name)
			return err
		}),
	}
}

func printSummary(ctx context.Context, db *sqlx.DB, out io.Writer) error {
	s, err := dataset.Summarize(ctx, db)
	if err != nil {
		return err
	}
	version := s.SchemaVersion
	if version == "" {
		version = "unmanaged"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "schema version: %s\n", version)
	fmt.Fprintf(&b, "stations:       %d\n", s.Stations)
	fmt.Fprintf(&b, "measurements:   %d\n", s.Measurements)
	if s.FirstDate.Valid {
		fmt.Fprintf(&b, "date range:     %s .. %s\n", s.FirstDate.String, s.LastDate.String)
	}

	active, err := repository.NewRepository(db).GetMostActiveStation(ctx)
	switch {
	case errors.Is(err, repository.ErrNoMeasurements):
	case err != nil:
		return err
	default:
		fmt.Fprintf(&b, "most active:    %s (%d rows)\n", active.Station, active.Count)
	}

	_, err = io.WriteString(out, b.String())
	return err
}

// openDataset opens the dataset read-write. Without create, a missing file is an
// error instead of being created empty by sqlite.
func openDataset(path string, create bool) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.New("no dataset path: pass --db or set SQLITE_PATH")
	}
	mode := "rwc"
	if !create {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", path, err)
		}
		mode = "rw"
	}
	db, err := sqlx.Open("sqlite3", "file:"+path+"?mode="+mode+"&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
