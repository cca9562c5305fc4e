package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/examiner/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

type options struct {
	dsn     string
	seed    string
	up      bool
	down    bool
	version bool
	steps   int
	force   int
	forced  bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(os.Args[1:], os.Stdout); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	opts, usage, err := parseOptions(args)
	if err != nil {
		return err
	}

	if opts.dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("resolve database (pass -dsn to skip config): %w", err)
		}
		opts.dsn = cfg.Database.Dsn()
	}

	if opts.seed != "" {
		counts, err := seedCorpus(opts.dsn, opts.seed)
		if err != nil {
			return fmt.Errorf("seed corpus: %w", err)
		}
		fmt.Fprintf(out, "seeded %d questions and %d grade boundary entries\n", counts.questions, counts.boundaries)
		return nil
	}

	if !opts.actionable() {
		usage()
		return nil
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, opts.dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	return apply(m, opts, out)
}

func parseOptions(args []string) (options, func(), error) {
	var opts options

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.StringVar(&opts.dsn, "dsn", "", "Database connection string (defaults to the database section of config.toml)")
	fs.StringVar(&opts.seed, "seed", "", "Load questions and grade boundaries from a JSON file")
	fs.BoolVar(&opts.up, "up", false, "Run all up migrations")
	fs.BoolVar(&opts.down, "down", false, "Run all down migrations")
	fs.BoolVar(&opts.version, "version", false, "Print current migration version")
	fs.IntVar(&opts.steps, "steps", 0, "Number of migrations (positive=up, negative=down)")
	fs.IntVar(&opts.force, "force", -1, "Force set version (use with caution)")

	usage := func() {
		fmt.Fprintln(fs.Output(), "usage: migrate [-dsn URL] [-up|-down|-steps N|-version|-force N|-seed FILE]")
		fs.PrintDefaults()
	}
	fs.Usage = usage

	if err := fs.Parse(args); err != nil {
		return opts, usage, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			opts.forced = true
		}
	})

	return opts, usage, nil
}

func (o options) actionable() bool {
	return o.version || o.forced || o.up || o.down || o.steps != 0
}

func apply(m *migrate.Migrate, opts options, out io.Writer) error {
	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Fprintf(out, "version: %d, dirty: %v\n", v, dirty)
	case opts.forced:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		fmt.Fprintf(out, "forced to version %d\n", opts.force)
	case opts.up:
		if err := ignoreNoChange(m.Up()); err != nil {
			return fmt.Errorf("up: %w", err)
		}
		fmt.Fprintln(out, "migrations applied")
	case opts.down:
		if err := ignoreNoChange(m.Down()); err != nil {
			return fmt.Errorf("down: %w", err)
		}
		fmt.Fprintln(out, "migrations reverted")
	case opts.steps != 0:
		if err := ignoreNoChange(m.Steps(opts.steps)); err != nil {
			return fmt.Errorf("steps %d: %w", opts.steps, err)
		}
		fmt.Fprintf(out, "applied %d migration steps\n", opts.steps)
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
