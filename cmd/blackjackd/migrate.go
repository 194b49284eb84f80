package main

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/pkg/db/migrations"
)

// MigrateCmd applies pending migrations to a SQLite database
type MigrateCmd struct {
	DB  string `help:"Path to SQLite database" default:"data/blackjack.db"`
	Dir string `help:"Read migrations from this directory instead of the embedded set"`
}

func (c *MigrateCmd) Run() error {
	db, err := sql.Open("sqlite3", c.DB)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	var migrator *migrations.Migrator
	if c.Dir != "" {
		migrator = migrations.NewDirMigrator(db, c.Dir)
	} else {
		migrator = migrations.NewMigrator(db)
	}
	return migrator.WithLogger(logging.Default).MigrateUp()
}

// CreateMigrationCmd writes a new numbered migration file
type CreateMigrationCmd struct {
	Description string `arg:"" help:"What the migration does"`
	Dir         string `help:"Directory to store migrations" default:"pkg/db/migrations/sql"`
}

func (c *CreateMigrationCmd) Run() error {
	path, err := migrations.CreateMigration(c.Dir, c.Description)
	if err != nil {
		return err
	}
	fmt.Printf("Created migration file: %s\n", path)
	fmt.Println("Edit this file to add your database schema changes.")
	return nil
}
