package migrations

import (
	_ "embed"

	"github.com/zabit11/movement/db"
	"github.com/zabit11/movement/db/types"
	fungibleMigrations "github.com/zabit11/movement/fungible/migrations"
)

const (
	// NativeLedgerPrefix selects the ledger holding the canonical asset form.
	NativeLedgerPrefix = "native_"
	// WrappedLedgerPrefix selects the ledger holding the wrapped asset form.
	WrappedLedgerPrefix = "wrapped_"
)

//go:embed escrow0001.sql
var mig001 string

// RunMigrations prepares the escrow database: the transfer records, the id
// nonce and one fungible ledger instance per asset form.
func RunMigrations(dbPath string) error {
	migrations := []types.Migration{
		{
			ID:  "escrow0001",
			SQL: mig001,
		},
	}
	migrations = append(migrations, fungibleMigrations.MigrationsWithPrefix(NativeLedgerPrefix)...)
	migrations = append(migrations, fungibleMigrations.MigrationsWithPrefix(WrappedLedgerPrefix)...)

	return db.RunMigrations(dbPath, migrations)
}
