package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dscmd/model"
)

func init() {
	Register(&Definition{
		Name:        "RunSql",
		Description: "Run a SQL statement against a datastore.",
		Params: []Param{
			{Name: "DataStore", Description: "Datastore to run the statement on.", Required: true},
			{Name: "Sql", Description: "SQL statement; ${Property} references are expanded."},
			{Name: "SqlFile", Description: "File containing the SQL statement, relative to the working directory."},
			{Name: "TableID", Description: "Table identifier to hold a returned result set."},
		},
		Check: checkRunSql,
		Run:   runRunSql,
	})
}

func checkRunSql(props *model.PropList, status *Status) {
	requireOneOf(props, status, "Sql", "SqlFile")
}

func runRunSql(ctx context.Context, env Env, props *model.PropList, status *Status) error {
	ds, err := dataStore(env, props)
	if err != nil {
		return err
	}

	stmt := props.Value("Sql")
	if file := param(env, props, "SqlFile"); file != "" {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(env.WorkingDir(), path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read SQL file: %w", err)
		}
		stmt = string(data)
	}
	stmt = strings.TrimSpace(expand(env, stmt))

	res, err := ds.Exec(ctx, stmt)
	if err != nil {
		return err
	}

	if res.Table == nil {
		status.Add(PhaseRun, SeveritySuccess,
			fmt.Sprintf("Statement affected %s.", plural(res.RowsAffected, "row")), "")
		return nil
	}

	msg := fmt.Sprintf("Query returned %s.", plural(int64(res.Table.NumRows()), "row"))
	if id := param(env, props, "TableID"); id != "" {
		res.Table.ID = id
		env.SetTable(res.Table)
		msg = fmt.Sprintf("Query returned %s into table %s.", plural(int64(res.Table.NumRows()), "row"), id)
	}
	status.Add(PhaseRun, SeveritySuccess, msg, "")
	return nil
}
