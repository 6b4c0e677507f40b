package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/PabloPavan/pharmaerp_api/internal"
	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/golang-migrate/migrate/v4"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	databaseURL := internal.MustEnv("DATABASE_URL")

	m, err := db.NewMigrator(databaseURL)
	if err != nil {
		log.Fatalf("migration init failed: %v", err)
	}
	m.Log = migrateLogger{}

	if err := run(m, args); err != nil {
		m.Close()
		log.Fatalf("%s failed: %v", args[0], err)
	}
	m.Close()
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Printf("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Printf("migrations: down %d completed", steps)

	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("version: %d dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			return errors.New("version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return err
		}
		log.Printf("migrations: forced version %d", v)

	default:
		usage()
		os.Exit(2)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

func (migrateLogger) Verbose() bool { return false }

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print the current migration version
  force <V>    Set the migration version without running it (clears dirty state)

Environment:
  DATABASE_URL      Required. Postgres connection URL.`)
}
