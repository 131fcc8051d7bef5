package db

import (
	"database/sql"
)

// Querier is the query surface shared by *sql.DB, *sql.Tx and Tx. Storage
// helpers take a Querier so the caller picks the transaction boundary:
// mutations arrive on a Tx, reads may come straight off the DB handle.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}
