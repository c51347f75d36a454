package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dscmd/model"
)

func init() {
	Register(&Definition{
		Name:        "ReadTableFromDataStore",
		Description: "Read a datastore table or query result into a processor table.",
		Params: []Param{
			{Name: "DataStore", Description: "Datastore to read from.", Required: true},
			{Name: "DataStoreTable", Description: "Table to read."},
			{Name: "Sql", Description: "Query to run instead of reading a whole table."},
			{Name: "Top", Description: "Maximum number of rows to read."},
			{Name: "TableID", Description: "Identifier of the processor table to create.", Required: true},
			{Name: "RowCountProperty", Description: "Processor property to set to the number of rows read."},
		},
		Check: checkReadTableFromDataStore,
		Run:   runReadTableFromDataStore,
	})
}

func checkReadTableFromDataStore(props *model.PropList, status *Status) {
	requireOneOf(props, status, "DataStoreTable", "Sql")
	if top := strings.TrimSpace(props.Value("Top")); top != "" {
		if n, err := strconv.Atoi(top); err != nil || n <= 0 {
			status.Add(PhaseInitialization, SeverityFailure,
				fmt.Sprintf("The Top parameter value %q is not a positive integer.", top),
				"Specify Top as a positive integer.")
		}
	}
}

func runReadTableFromDataStore(ctx context.Context, env Env, props *model.PropList, status *Status) error {
	ds, err := dataStore(env, props)
	if err != nil {
		return err
	}
	top, _ := strconv.Atoi(param(env, props, "Top"))

	var tbl *model.Table
	if table := param(env, props, "DataStoreTable"); table != "" {
		tbl, err = ds.SelectTable(ctx, table, top)
	} else {
		tbl, err = ds.Query(ctx, strings.TrimSpace(expand(env, props.Value("Sql"))), top)
	}
	if err != nil {
		return err
	}

	tbl.ID = param(env, props, "TableID")
	env.SetTable(tbl)
	if p := param(env, props, "RowCountProperty"); p != "" {
		env.SetProperty(p, strconv.Itoa(tbl.NumRows()))
	}
	status.Add(PhaseRun, SeveritySuccess,
		fmt.Sprintf("Read %s into table %s.", plural(int64(tbl.NumRows()), "row"), tbl.ID), "")
	return nil
}
