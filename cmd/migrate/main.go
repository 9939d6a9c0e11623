// Command migrate manages the PostgreSQL schema of the invoice store.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/invoicesxpert/backend/internal/infrastructure/config"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	"github.com/invoicesxpert/backend/internal/infrastructure/migration"
	"github.com/invoicesxpert/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// session is what every command runs against. schema is the embedded
// migrations unless -path names a directory; migrator is nil for the
// file-only commands.
type session struct {
	log      *zap.Logger
	dir      string
	schema   fs.FS
	migrator *migration.Migrator
}

type command struct {
	usage   string
	minArgs int
	// offline commands never connect to the database
	offline bool
	run     func(s *session, args []string) error
}

var commands = map[string]command{
	"up": {
		usage: "up",
		run:   func(s *session, _ []string) error { return s.migrator.Up() },
	},
	"down": {
		usage: "down",
		run:   func(s *session, _ []string) error { return s.migrator.Down() },
	},
	"step": {
		usage:   "step <n>",
		minArgs: 1,
		run: func(s *session, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return s.migrator.Steps(n)
		},
	},
	"goto": {
		usage:   "goto <version>",
		minArgs: 1,
		run: func(s *session, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return s.migrator.GoTo(uint(v))
		},
	},
	"version": {
		usage: "version",
		run: func(s *session, _ []string) error {
			v, dirty, err := s.migrator.Version()
			if err != nil {
				return err
			}
			if v == 0 {
				s.log.Info("No migrations applied")
				return nil
			}
			s.log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		},
	},
	"force": {
		usage:   "force <version>",
		minArgs: 1,
		run: func(s *session, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			s.log.Warn("Forcing migration version without running it", zap.Int("version", v))
			return s.migrator.Force(v)
		},
	},
	"drop": {
		usage: "drop -confirm",
		run: func(s *session, args []string) error {
			if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
				return errors.New("drop removes every invoice, client and export; rerun with -confirm")
			}
			return s.migrator.Drop()
		},
	},
	"create": {
		usage:   "create <name> [description]",
		minArgs: 1,
		offline: true,
		run: func(s *session, args []string) error {
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(s.dir, args[0], description)
			if err != nil {
				return err
			}
			s.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	},
	"list": {
		usage:   "list",
		offline: true,
		run: func(s *session, _ []string) error {
			names, err := migration.ListMigrations(s.schema)
			if err != nil {
				return err
			}
			s.log.Info("Available migrations", zap.Int("count", len(names)))
			for _, name := range names {
				fmt.Println("  -", name)
			}
			return nil
		},
	},
}

func main() {
	migrationsPath := flag.String("path", "", "Read migrations from this directory instead of the embedded schema")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}
	name, args := flag.Arg(0), flag.Args()[1:]

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	cmd, ok := commands[name]
	if !ok {
		log.Error("Unknown command", zap.String("command", name))
		printUsage()
		os.Exit(1)
	}
	if len(args) < cmd.minArgs {
		log.Fatal("Missing argument", zap.String("usage", "migrate "+cmd.usage))
	}

	dir := *migrationsPath
	if dir == "" {
		dir = defaultMigrationsPath
	}
	if dir, err = filepath.Abs(dir); err != nil {
		log.Fatal("Failed to resolve migrations directory", zap.Error(err))
	}

	s := &session{log: log, dir: dir, schema: migrations.FS}
	if *migrationsPath != "" {
		s.schema = os.DirFS(dir)
	}
	if !cmd.offline {
		db, m, err := openMigrator(s.schema, log)
		if err != nil {
			log.Fatal("Failed to prepare migrator", zap.Error(err))
		}
		defer db.Close()
		defer m.Close()
		s.migrator = m
	}

	log.Info("Running migration command",
		zap.String("command", name),
		zap.Bool("embedded", *migrationsPath == ""),
	)
	if err := cmd.run(s, args); err != nil {
		log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
	}
}

// openMigrator connects with the server's database settings.
func openMigrator(schema fs.FS, log *zap.Logger) (*sql.DB, *migration.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Persistence.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("schema migrations only apply to the postgres driver, not %q", cfg.Persistence.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.NewWithSource(db, schema, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, m, nil
}

func printUsage() {
	fmt.Println(`InvoicesXpert schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create the next numbered migration file pair
  list                  List the migrations that up would apply

Flags:
  -path string          Migrations directory; empty applies the schema built into the binary
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  INVOICE_PERSISTENCE_DRIVER=postgres
  INVOICE_DATABASE_HOST, INVOICE_DATABASE_PORT, INVOICE_DATABASE_USER,
  INVOICE_DATABASE_PASSWORD, INVOICE_DATABASE_DBNAME, INVOICE_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate create add_invoice_discount "Discount column on invoices"
  migrate version`)
}
