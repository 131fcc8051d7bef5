package db

import (
	"database/sql"

	"github.com/hermeznetwork/tracerr"
	_ "github.com/mattn/go-sqlite3"
)

// UniqueConstrain is the sqlite extended code for unique and primary key
// violations.
const UniqueConstrain = 1555

// NewSQLiteDB opens the database file at dbPath and applies the pragmas
// every connection of this node relies on. WAL lets readers run while a
// write transaction is open, the busy timeout covers commits that touch the
// ledgers and the transfer table together.
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	database, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	if _, err := database.Exec(`
		PRAGMA foreign_keys = ON;
		pragma journal_mode = WAL;
		pragma synchronous = normal;
		pragma journal_size_limit  = 6144000;
		pragma busy_timeout = 5000;
	`); err != nil {
		return nil, tracerr.Wrap(err)
	}

	return database, nil
}
