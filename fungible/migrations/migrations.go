package migrations

import (
	_ "embed"

	"github.com/zabit11/movement/db/types"
)

//go:embed fungible0001.sql
var mig001 string

// MigrationsWithPrefix returns the schema of one fungible asset ledger. The
// prefix selects the table names, so several assets can share a database.
func MigrationsWithPrefix(prefix string) []types.Migration {
	return []types.Migration{
		{
			ID:     "fungible0001",
			SQL:    mig001,
			Prefix: prefix,
		},
	}
}
