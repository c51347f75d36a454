package command

import (
	"context"
	"fmt"
	"strings"

	"dscmd/logging"
	"dscmd/model"
)

func init() {
	Register(&Definition{
		Name:        "DeleteDataStoreTableRows",
		Description: "Delete rows from a datastore table.",
		Params: []Param{
			{Name: "DataStore", Description: "Datastore containing the table.", Required: true},
			{Name: "DataStoreTable", Description: "Table to delete rows from (schema.table allowed).", Required: true},
			{Name: "Where", Description: "SQL condition selecting the rows to delete."},
			{Name: "DeleteAllRows", Description: "Delete every row in the table.", Choices: []string{"True", "False"}, Default: "False"},
		},
		Check: checkDeleteDataStoreTableRows,
		Run:   runDeleteDataStoreTableRows,
	})
}

func checkDeleteDataStoreTableRows(props *model.PropList, status *Status) {
	deleteAll := isTrue(props.Value("DeleteAllRows"))
	where := strings.TrimSpace(props.Value("Where"))
	switch {
	case !deleteAll && where == "":
		status.Add(PhaseInitialization, SeverityFailure,
			"The DeleteAllRows parameter must be True when no Where condition is specified.",
			"Specify DeleteAllRows=True or a Where condition.")
	case deleteAll && where != "":
		status.Add(PhaseInitialization, SeverityFailure,
			"DeleteAllRows=True and Where cannot both be specified.",
			"Remove the Where condition or set DeleteAllRows=False.")
	}
}

func runDeleteDataStoreTableRows(ctx context.Context, env Env, props *model.PropList, status *Status) error {
	ds, err := dataStore(env, props)
	if err != nil {
		return err
	}
	table := param(env, props, "DataStoreTable")
	where := ""
	if !isTrue(props.Value("DeleteAllRows")) {
		where = param(env, props, "Where")
		if where == "" {
			return fmt.Errorf("refusing to delete all rows from %s without DeleteAllRows=True", table)
		}
	}

	n, err := ds.DeleteTableRows(ctx, table, where)
	if err != nil {
		return err
	}

	logger := logging.FromContext(ctx)
	logger.Info().
		Str("datastore", ds.Name()).
		Str("table", table).
		Int64("rows", n).
		Msg("deleted datastore table rows")
	status.Add(PhaseRun, SeveritySuccess, fmt.Sprintf("Deleted %s from %s.", plural(n, "row"), table), "")
	return nil
}
