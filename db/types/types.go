package types

// Migration is a database schema change to be applied on startup. SQL holds
// both directions separated by the sql-migrate up marker. Prefix, when set,
// replaces the /*dbprefix*/ placeholder so the same schema can be
// instantiated more than once on a single database.
type Migration struct {
	ID     string
	SQL    string
	Prefix string
}
