package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"usersvc/config"
	"usersvc/internal/domain/lifecycle"
	logs "usersvc/internal/infra/log"
	"usersvc/internal/infra/migrator"
	"usersvc/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - up:            apply every pending step
// - down-to <N>:   revert steps above version N
// - status:        list steps and whether they are applied

func main() {
	upCmd := flag.NewFlagSet("up", flag.ExitOnError)
	downToCmd := flag.NewFlagSet("down-to", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)

	timeout := lifecycle.MigrationTimeout
	for _, fs := range []*flag.FlagSet{upCmd, downToCmd, statusCmd} {
		fs.DurationVar(&timeout, "timeout", lifecycle.MigrationTimeout, "Maximum duration of the run")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], upCmd, downToCmd, statusCmd, &timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, upCmd, downToCmd, statusCmd *flag.FlagSet, timeout *time.Duration) error {
	var target int64
	switch command {
	case "up":
		_ = upCmd.Parse(args)
	case "status":
		_ = statusCmd.Parse(args)
	case "down-to":
		_ = downToCmd.Parse(args)
		if downToCmd.NArg() != 1 {
			return errors.New("down-to requires exactly one version argument")
		}
		v, err := strconv.ParseInt(downToCmd.Arg(0), 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid version %q", downToCmd.Arg(0))
		}
		target = v
	default:
		printUsage()

		return errors.Errorf("unknown command %q", command)
	}

	m, cleanup, err := newMigrator()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	switch command {
	case "up":
		return m.MigrateToLatest(ctx)
	case "down-to":
		return m.RevertTo(ctx, target)
	default:
		return printStatus(ctx, m)
	}
}

func newMigrator() (*migrator.Migrator, func(), error) {
	cfg, err := config.NewDatabaseOnly()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}

	logger, err := logs.NewWithWriter(cfg, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	db, err := postgres.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := postgres.NewSQLDB(db)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close database", slog.Any("error", err))
		}
	}

	m, err := migrator.NewPostgres(migrator.Params{DB: sqlDB, Config: cfg, Logger: logger})
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	return m, cleanup, nil
}

func printStatus(ctx context.Context, m *migrator.Migrator) error {
	steps, err := m.Status(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tSOURCE")
	for _, s := range steps {
		state, appliedAt := "pending", "-"
		if s.Applied {
			state = "applied"
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Version, state, appliedAt, s.Path)
	}
	fmt.Fprintf(w, "\nlatest: %d\n", m.Latest())

	return w.Flush()
}

func printUsage() {
	fmt.Println("Usage: migrate <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up              Apply every pending migration")
	fmt.Println("  down-to <N>     Revert migrations above version N")
	fmt.Println("  status          Show applied and pending migrations")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -timeout        Maximum duration of the run (default 5m)")
}
