package migrations

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/suite"

	"github.com/fadedpez/blackjack/internal/logging"
)

type MigrationsTestSuite struct {
	suite.Suite
	db *sql.DB
}

func TestMigrationsSuite(t *testing.T) {
	suite.Run(t, new(MigrationsTestSuite))
}

func (s *MigrationsTestSuite) SetupTest() {
	db, err := sql.Open("sqlite3", ":memory:")
	s.Require().NoError(err)
	db.SetMaxOpenConns(1)
	s.db = db
}

func (s *MigrationsTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *MigrationsTestSuite) TestEmbeddedSchema() {
	// Setup
	m := NewMigrator(s.db).WithLogger(logging.Discard())

	// Execute
	s.Require().NoError(m.MigrateUp())
	s.Require().NoError(m.MigrateUp())

	// Assert
	applied, err := m.GetAppliedMigrations()
	s.Require().NoError(err)
	s.Equal(map[string]bool{"001": true, "002": true, "003": true}, applied)

	for _, table := range []string{"round_results", "hand_results", "player_statistics", "transactions"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		s.NoError(err, table)
	}
}

func (s *MigrationsTestSuite) TestDirMigrations() {
	// Setup
	dir := s.T().TempDir()
	path, err := CreateMigration(dir, "add notes")
	s.Require().NoError(err)
	s.Equal("001_add_notes.sql", filepath.Base(path))
	s.Require().NoError(os.WriteFile(path, []byte("CREATE TABLE notes (id INTEGER);"), 0644))

	second, err := CreateMigration(dir, "more notes")
	s.Require().NoError(err)
	s.Equal("002_more_notes.sql", filepath.Base(second))
	s.Require().NoError(os.WriteFile(second, []byte("ALTER TABLE notes ADD COLUMN body TEXT;"), 0644))

	// Execute
	m := NewDirMigrator(s.db, dir).WithLogger(logging.Discard())
	migrations, err := m.LoadMigrations()
	s.Require().NoError(err)
	s.Require().NoError(m.MigrateUp())

	// Assert
	s.Len(migrations, 2)
	s.Equal("add notes", migrations[0].Description)
	_, err = s.db.Exec("INSERT INTO notes (id) VALUES (1)")
	s.NoError(err)
}
