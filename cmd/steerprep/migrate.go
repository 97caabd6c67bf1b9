package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/banshee-data/steering.dataset/internal/manifest"
)

func runMigrate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "Manifest database path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: steerprep migrate [-db path] up|down|version")
	}

	// Migrations manage the schema, so open without applying them.
	store, err := manifest.OpenUnmigrated(*dbPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer store.Close()

	switch fs.Arg(0) {
	case "up":
		if err := store.MigrateUp(); err != nil {
			return err
		}
		log.Println("all migrations applied")
	case "down":
		if err := store.MigrateDown(); err != nil {
			return err
		}
		log.Println("rolled back one migration")
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q", fs.Arg(0))
	}

	v, dirty, err := store.MigrateVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "schema version %d", v)
	if dirty {
		fmt.Fprint(stdout, " (dirty)")
	}
	fmt.Fprintln(stdout)
	return nil
}
