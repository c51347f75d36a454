package command

import (
	"context"

	"dscmd/datastore"
	"dscmd/model"
)

// DataStore is the database interface the datastore commands delegate to.
// *datastore.DataStore implements it.
type DataStore interface {
	Name() string
	Property(ctx context.Context, name string) (string, error)
	TableExists(ctx context.Context, table string) (bool, error)
	DeleteTableRows(ctx context.Context, table, where string) (int64, error)
	Exec(ctx context.Context, stmt string) (datastore.ExecResult, error)
	Query(ctx context.Context, stmt string, limit int) (*model.Table, error)
	SelectTable(ctx context.Context, table string, limit int) (*model.Table, error)
}

// Env is the processor state a command runs against.
type Env interface {
	DataStore(name string) (DataStore, error)
	Property(name string) (string, bool)
	SetProperty(name, value string)
	SetTable(t *model.Table)
	WorkingDir() string
}
