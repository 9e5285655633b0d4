package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/target/eventhub/config"
	"github.com/target/eventhub/internal/bootstrap"
	"github.com/target/eventhub/internal/data"
	"github.com/target/eventhub/internal/devseed"
	"github.com/target/eventhub/internal/migrate"
)

type migrateOptions struct {
	Timeout time.Duration
	Status  bool
}

type dbResetOptions struct {
	Timeout     time.Duration
	Yes         bool
	SeedFile    string
	AllowRemote bool
}

type dbSeedOptions struct {
	Timeout     time.Duration
	File        string
	ICSFile     string
	Owner       string
	TimeZone    string
	Replace     bool
	AllowRemote bool
}

var errPostgresOnly = errors.New("command requires BACKEND_MODE=postgres")

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.UsesPostgres() {
		return errPostgresOnly
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if opts.Status {
			pending, statusErr := migrate.Pending(ctx, db)
			if statusErr != nil {
				return statusErr
			}
			return printPending(os.Stdout, pending)
		}

		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runDBReset(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBResetFlags(args)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.UsesPostgres() {
		return errPostgresOnly
	}

	if guardErr := guardRemoteHost(cmdCtx.Config.Postgres.Host, opts.AllowRemote); guardErr != nil {
		return guardErr
	}

	target := fmt.Sprintf(
		"database %q on %s:%d",
		cmdCtx.Config.Postgres.Name,
		cmdCtx.Config.Postgres.Host,
		cmdCtx.Config.Postgres.Port,
	)
	if !opts.Yes {
		if confirmErr := confirmAction(os.Stdin, os.Stdout, "drop every record in "+target); confirmErr != nil {
			return confirmErr
		}
	}

	var seed *devseed.File
	if opts.SeedFile != "" {
		if seed, err = devseed.LoadFile(opts.SeedFile); err != nil {
			return err
		}
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("dropping public schema", "database", cmdCtx.Config.Postgres.Name)
		if resetErr := resetSchema(ctx, db, cmdCtx.Config.Postgres.User); resetErr != nil {
			return resetErr
		}

		cmdCtx.Logger.Info("re-running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}

		if seed != nil {
			cmdCtx.Logger.Info("seeding data after reset", "file", opts.SeedFile)
			if _, seedErr := devseed.Run(ctx, seedRepos(db, cmdCtx.Config.Backend), seed, cmdCtx.Logger); seedErr != nil {
				return fmt.Errorf("seed data: %w", seedErr)
			}
		}

		cmdCtx.Logger.Info("database reset completed successfully")
		return nil
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBSeedFlags(args)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(opts.TimeZone)
	if err != nil {
		return fmt.Errorf("--tz: %w", err)
	}

	var seed *devseed.File
	if opts.File != "" {
		if seed, err = devseed.LoadFile(opts.File); err != nil {
			return err
		}
	}

	if !cmdCtx.Config.UsesPostgres() {
		if opts.Replace {
			return fmt.Errorf("--replace: %w", errPostgresOnly)
		}
		ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		return seedInto(ctx, cmdCtx, nil, seed, opts, loc)
	}

	if guardErr := guardRemoteHost(cmdCtx.Config.Postgres.Host, opts.AllowRemote); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("ensuring database migrations are current")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}

		if opts.Replace {
			backend := cmdCtx.Config.Backend
			removed, truncErr := data.NewRecordStore(db).Truncate(ctx, backend.EventsTable, backend.ProfilesTable)
			if truncErr != nil {
				return fmt.Errorf("clear records: %w", truncErr)
			}
			cmdCtx.Logger.Info("cleared existing records", "rows", removed)
		}

		return seedInto(ctx, cmdCtx, db, seed, opts, loc)
	})
}

// seedInto loads the YAML seed and the calendar import through the configured backend.
func seedInto(
	ctx context.Context,
	cmdCtx *commandContext,
	db *sql.DB,
	seed *devseed.File,
	opts dbSeedOptions,
	loc *time.Location,
) error {
	client, err := bootstrap.BuildRecordClient(bootstrap.RecordClientConfig{
		Backend: cmdCtx.Config.Backend,
		DB:      db,
		Logger:  cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	repos := devseed.Repos{
		Events:   data.NewEventRepo(client, cmdCtx.Config.Backend.EventsTable),
		Profiles: data.NewProfileRepo(client, cmdCtx.Config.Backend.ProfilesTable),
	}

	if seed != nil {
		stats, seedErr := devseed.Run(ctx, repos, seed, cmdCtx.Logger)
		if seedErr != nil {
			return fmt.Errorf("seed data: %w", seedErr)
		}
		cmdCtx.Logger.Info("seed file loaded", "events", stats.Events, "profiles", stats.Profiles)
	}

	if opts.ICSFile != "" {
		f, openErr := os.Open(opts.ICSFile)
		if openErr != nil {
			return fmt.Errorf("open calendar: %w", openErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				cmdCtx.Logger.Warn("close calendar failed", "error", cerr)
			}
		}()

		created, importErr := devseed.ImportICS(ctx, repos.Events, f, opts.Owner, loc)
		if importErr != nil {
			return fmt.Errorf("import calendar: %w", importErr)
		}
		cmdCtx.Logger.Info("calendar imported", "file", opts.ICSFile, "events", created)
	}

	cmdCtx.Logger.Info("seeding completed successfully")
	return nil
}

func seedRepos(db *sql.DB, backend config.BackendConfig) devseed.Repos {
	store := data.NewRecordStore(db)
	return devseed.Repos{
		Events:   data.NewEventRepo(store, backend.EventsTable),
		Profiles: data.NewProfileRepo(store, backend.ProfilesTable),
	}
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")
	fs.BoolVar(&opts.Status, "status", false, "List pending migrations without applying them")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseDBResetFlags(args []string) (dbResetOptions, error) {
	fs := flag.NewFlagSet("db-reset", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbResetOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for reset operations to complete")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	fs.StringVar(&opts.SeedFile, "seed", "", "YAML seed file to load after the reset")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return dbResetOptions{}, err
	}
	if opts.Timeout <= 0 {
		return dbResetOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseDBSeedFlags(args []string) (dbSeedOptions, error) {
	fs := flag.NewFlagSet("db-seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbSeedOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for seeding to complete")
	fs.StringVar(&opts.File, "file", "", "YAML seed file with events and profiles")
	fs.StringVar(&opts.ICSFile, "ics", "", "iCalendar file whose events are imported")
	fs.StringVar(&opts.Owner, "owner", devseed.DefaultOwnerID, "Owner of events imported from --ics")
	fs.StringVar(&opts.TimeZone, "tz", "UTC", "Time zone for dates in --ics")
	fs.BoolVar(&opts.Replace, "replace", false, "Delete existing events and profiles before seeding")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return dbSeedOptions{}, err
	}
	if opts.Timeout <= 0 {
		return dbSeedOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.File == "" && opts.ICSFile == "" {
		return dbSeedOptions{}, errors.New("one of --file or --ics is required")
	}
	opts.Owner = strings.TrimSpace(opts.Owner)
	if opts.Owner == "" {
		return dbSeedOptions{}, errors.New("--owner must not be empty")
	}
	return opts, nil
}

func printPending(w io.Writer, pending []migrate.Migration) error {
	if len(pending) == 0 {
		return writef(w, "schema is up to date\n")
	}
	for _, m := range pending {
		if err := writef(w, "pending  %s\n", m.Version); err != nil {
			return err
		}
	}
	return nil
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

func resetSchema(ctx context.Context, db *sql.DB, user string) error {
	statements := []string{
		"DROP SCHEMA public CASCADE",
		"CREATE SCHEMA public",
		"GRANT ALL ON SCHEMA public TO public",
	}
	if u := strings.TrimSpace(user); u != "" && !strings.EqualFold(u, "public") {
		statements = append(statements, "GRANT ALL ON SCHEMA public TO "+quoteIdentifier(u))
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func guardRemoteHost(host string, allow bool) error {
	if !isLikelyRemoteHost(host) || allow {
		return nil
	}
	return fmt.Errorf(
		"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
		host,
	)
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" || h == "localhost" || strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	// Single-label names are compose/k8s service names.
	return strings.Contains(h, ".")
}

func confirmAction(in io.Reader, out io.Writer, action string) error {
	if err := writef(out, "This will %s.\nContinue? [y/N]: ", action); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}
