package command

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, env *testEnv) int {
	t.Helper()
	ds, err := env.DataStore("HydroBase")
	require.NoError(t, err)
	tbl, err := ds.Query(context.Background(), "select count(*) from stations", 0)
	require.NoError(t, err)
	n, err := strconv.Atoi(tbl.Rows[0][0])
	require.NoError(t, err)
	return n
}

func TestRunDeleteDataStoreTableRowsWhere(t *testing.T) {
	env, _ := newTestEnv(t)
	env.props["Year"] = "2021"

	c := mustNew(t, "DeleteDataStoreTableRows", props("DataStore", "hydrobase", "DataStoreTable", "stations", "Where", "year = ${Year}"))
	require.Empty(t, c.CheckParameters().All())
	require.NoError(t, c.Run(context.Background(), env))

	assert.Equal(t, 1, countRows(t, env))
	entries := c.Status().Entries(PhaseRun)
	require.Len(t, entries, 1)
	assert.Equal(t, "Deleted 2 rows from stations.", entries[0].Message)
	assert.Equal(t, SeveritySuccess, c.Status().Severity(PhaseRun))
}

func TestRunDeleteDataStoreTableRowsAll(t *testing.T) {
	env, _ := newTestEnv(t)
	c := mustNew(t, "DeleteDataStoreTableRows", props("DataStore", "HydroBase", "DataStoreTable", "stations", "DeleteAllRows", "True"))
	require.NoError(t, c.Run(context.Background(), env))
	assert.Equal(t, 0, countRows(t, env))
}

func TestRunDeleteDataStoreTableRowsNeedsWhereOrDeleteAll(t *testing.T) {
	env, _ := newTestEnv(t)

	tests := []struct {
		name  string
		props []string
	}{
		{"no where", []string{"DataStore", "HydroBase", "DataStoreTable", "stations"}},
		{"blank where", []string{"DataStore", "HydroBase", "DataStoreTable", "stations", "Where", "  "}},
		{"delete all false", []string{"DataStore", "HydroBase", "DataStoreTable", "stations", "DeleteAllRows", "False"}},
		{"where expands to nothing", []string{"DataStore", "HydroBase", "DataStoreTable", "stations", "Where", "${Empty}"}},
	}
	env.props["Empty"] = ""

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustNew(t, "DeleteDataStoreTableRows", props(tt.props...))
			require.Error(t, c.Run(context.Background(), env))
			assert.Equal(t, SeverityFailure, c.Status().Severity(PhaseRun))
			assert.Equal(t, 3, countRows(t, env))
		})
	}
}

func TestRunDeleteDataStoreTableRowsMixedCaseTable(t *testing.T) {
	env, _ := newTestEnv(t)
	c := mustNew(t, "DeleteDataStoreTableRows", props("DataStore", "HydroBase", "DataStoreTable", "Stations", "DeleteAllRows", "True"))
	require.NoError(t, c.Run(context.Background(), env))
	assert.Equal(t, 0, countRows(t, env))
	assert.Equal(t, "Deleted 3 rows from Stations.", c.Status().Entries(PhaseRun)[0].Message)
}

func TestRunFailureIsRecorded(t *testing.T) {
	env, _ := newTestEnv(t)

	tests := []struct {
		name  string
		kind  string
		props []string
	}{
		{"missing table", "DeleteDataStoreTableRows", []string{"DataStore", "HydroBase", "DataStoreTable", "nope", "DeleteAllRows", "True"}},
		{"missing datastore", "RunSql", []string{"DataStore", "Other", "Sql", "select 1"}},
		{"bad sql", "RunSql", []string{"DataStore", "HydroBase", "Sql", "selec nothing"}},
		{"missing sql file", "RunSql", []string{"DataStore", "HydroBase", "SqlFile", "missing.sql"}},
		{"unknown datastore property", "SetPropertyFromDataStore", []string{"DataStore", "HydroBase", "DataStoreProperty", "Nope", "PropertyName", "P"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustNew(t, tt.kind, props(tt.props...))
			err := c.Run(context.Background(), env)
			require.Error(t, err)

			entries := c.Status().Entries(PhaseRun)
			require.Len(t, entries, 1)
			assert.Equal(t, SeverityFailure, entries[0].Severity)
			assert.Empty(t, c.Status().Entries(PhaseInitialization))
		})
	}
}

func TestRunSqlStatementAndQuery(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	update := mustNew(t, "RunSql", props("DataStore", "HydroBase", "Sql", "update stations set year = 1999 where name = 'a'"))
	require.NoError(t, update.Run(ctx, env))
	assert.Equal(t, "Statement affected 1 row.", update.Status().Entries(PhaseRun)[0].Message)

	query := mustNew(t, "RunSql", props("DataStore", "HydroBase", "Sql", "select name from stations where year = 1999", "TableID", "old"))
	require.NoError(t, query.Run(ctx, env))
	require.Contains(t, env.tables, "old")
	assert.Equal(t, [][]string{{"a"}}, env.tables["old"].Rows)
}

func TestRunSqlFile(t *testing.T) {
	env, _ := newTestEnv(t)
	env.props["Name"] = "b"
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "delete.sql"), []byte("delete from stations where name = '${Name}';\n"), 0o600))

	c := mustNew(t, "RunSql", props("DataStore", "HydroBase", "SqlFile", "delete.sql"))
	require.NoError(t, c.Run(context.Background(), env))
	assert.Equal(t, 2, countRows(t, env))
}

func TestRunSqlFileWithHeaderComment(t *testing.T) {
	env, _ := newTestEnv(t)
	body := "-- stations reported in 2021\n/* generated\n   nightly */\nselect name from stations where year = 2021 order by name;\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "report.sql"), []byte(body), 0o600))

	c := mustNew(t, "RunSql", props("DataStore", "HydroBase", "SqlFile", "report.sql", "TableID", "R"))
	require.NoError(t, c.Run(context.Background(), env))
	require.Contains(t, env.tables, "R")
	assert.Equal(t, [][]string{{"b"}, {"c"}}, env.tables["R"].Rows)
	assert.Equal(t, "Query returned 2 rows into table R.", c.Status().Entries(PhaseRun)[0].Message)
}

func TestRunSetPropertyFromDataStore(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	c := mustNew(t, "SetPropertyFromDataStore", props("DataStore", "HydroBase", "DataStoreProperty", "Region", "PropertyName", "Region"))
	require.NoError(t, c.Run(ctx, env))
	assert.Equal(t, "South Platte", env.props["Region"])

	c = mustNew(t, "SetPropertyFromDataStore", props("DataStore", "HydroBase", "DataStoreProperty", "DatabaseVersion", "PropertyName", "Version"))
	require.NoError(t, c.Run(ctx, env))
	assert.NotEmpty(t, env.props["Version"])
}

func TestRunReadTableFromDataStore(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	c := mustNew(t, "ReadTableFromDataStore", props("DataStore", "HydroBase", "DataStoreTable", "stations", "Top", "2", "TableID", "S", "RowCountProperty", "Count"))
	require.NoError(t, c.Run(ctx, env))
	assert.Equal(t, 2, env.tables["S"].NumRows())
	assert.Equal(t, "2", env.props["Count"])

	c = mustNew(t, "ReadTableFromDataStore", props("DataStore", "HydroBase", "Sql", "select name from stations order by name desc", "TableID", "Q"))
	require.NoError(t, c.Run(ctx, env))
	assert.Equal(t, [][]string{{"c"}, {"b"}, {"a"}}, env.tables["Q"].Rows)
}

func TestRunSetProperty(t *testing.T) {
	env, _ := newTestEnv(t)
	env.props["Base"] = "x"
	c := mustNew(t, "SetProperty", props("PropertyName", "Derived", "PropertyValue", "${Base}-1"))
	require.NoError(t, c.Run(context.Background(), env))
	assert.Equal(t, "x-1", env.props["Derived"])

	bad := mustNew(t, "SetProperty", props("PropertyName", "has space"))
	assert.Equal(t, SeverityFailure, bad.CheckParameters().Severity(PhaseInitialization))
}
