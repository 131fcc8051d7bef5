package db

import (
	"fmt"
	"strings"

	"github.com/hermeznetwork/tracerr"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/zabit11/movement/db/types"
	"github.com/zabit11/movement/log"
)

const (
	upDownSeparator  = "-- +migrate Up"
	dbPrefixReplacer = "/*dbprefix*/"
)

// RunMigrations applies the given migrations on the SQLite DB at dbPath,
// creating the file when it does not exist yet.
func RunMigrations(dbPath string, migrations []types.Migration) error {
	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		return tracerr.Wrap(fmt.Errorf("error creating DB %w", err))
	}
	defer db.Close()

	migs := &migrate.MemoryMigrationSource{Migrations: []*migrate.Migration{}}
	for _, m := range migrations {
		prefixed := strings.ReplaceAll(m.SQL, dbPrefixReplacer, m.Prefix)
		splitted := strings.Split(prefixed, upDownSeparator)
		migs.Migrations = append(migs.Migrations, &migrate.Migration{
			Id:   m.Prefix + m.ID,
			Up:   []string{splitted[1]},
			Down: []string{splitted[0]},
		})
	}

	log.Debugf("running migrations for %s", dbPath)
	nMigrations, err := migrate.Exec(db, "sqlite3", migs, migrate.Up)
	if err != nil {
		return tracerr.Wrap(fmt.Errorf("error executing migration %w", err))
	}

	log.Infof("successfully ran %d migrations", nMigrations)
	return nil
}
