package model

import "time"

// Command is a saved command line in the library.
type Command struct {
	ID          int64
	Name        string
	Cmd         string // serialized command, e.g. RunSql(DataStore="x",Sql="...")
	Description string
	CreatedAt   time.Time
	LastUsedAt  *time.Time
	LastParams  string // JSON map of property values supplied on the last run
}
