package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir    string
	config string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
[general]
data_dir = %q
log_level = "warn"

[[datastores]]
name = "HydroBase"
driver = "sqlite"
dsn = %q
description = "test"

[datastores.properties]
Region = "Platte"

[[datastores]]
name = "Archive"
driver = "sqlite"
dsn = "unused"
enabled = false
`, dir, filepath.Join(dir, "hb.db"))
	path := filepath.Join(dir, "dscmd.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return fixture{dir: dir, config: path}
}

func (f fixture) write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCommandFile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "seed.sql", "insert into stations values ('${Name}');")
	file := f.write(t, "load.cmd", `# seed the table
RunSql(DataStore="HydroBase",Sql="create table stations (name text)")
RunSql(DataStore="HydroBase",SqlFile="seed.sql")
SetPropertyFromDataStore(DataStore="HydroBase",DataStoreProperty="Region",PropertyName="Region")
DeleteDataStoreTableRows(DataStore="HydroBase",DataStoreTable="stations",Where="name = '${Name}'")
`)

	out, _, err := execute(t, "--config", f.config, "run", file, "-p", "Name=gauge1")
	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS RUN: Statement affected 1 row.")
	assert.Contains(t, out, `SUCCESS RUN: Set property Region="Platte".`)
	assert.Contains(t, out, "Deleted 1 row from stations.")
	assert.Contains(t, out, "4 commands, 0 failed, 0 with warnings")
}

func TestRunReportsFailures(t *testing.T) {
	f := newFixture(t)
	file := f.write(t, "bad.cmd", `RunSql(DataStore="HydroBase",Sql="select * from missing")
RunSql(DataStore="HydroBase")
`)

	out, _, err := execute(t, "--config", f.config, "run", file)
	require.Error(t, err)
	assert.Equal(t, "2 of 2 commands failed", err.Error())
	assert.Contains(t, out, "skipped: invalid parameters")
}

func TestRunRejectsBadProperty(t *testing.T) {
	f := newFixture(t)
	file := f.write(t, "x.cmd", "")
	_, _, err := execute(t, "--config", f.config, "run", file, "-p", "=x")
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	f := newFixture(t)
	good := f.write(t, "good.cmd", "# header\nRunSql(DataStore=\"HydroBase\",Sql=\"select 1\")\n# footer\n")
	out, _, err := execute(t, "--config", f.config, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "1 commands OK")

	bad := f.write(t, "bad.cmd", "DeleteDataStoreTableRows(DataStore=\"HydroBase\")\nRunSqll()\n")
	out, _, err = execute(t, "--config", f.config, "check", bad)
	require.Error(t, err)
	assert.Contains(t, out, "The DataStoreTable parameter must be specified.")
	assert.Contains(t, out, "Did you mean RunSql?")
}

func TestFormat(t *testing.T) {
	f := newFixture(t)
	file := f.write(t, "f.cmd", "# note\nrunsql( Sql = \"select 1\" , DataStore=HydroBase )\n")
	out, _, err := execute(t, "--config", f.config, "format", file)
	require.NoError(t, err)
	assert.Equal(t, "# note\nRunSql(DataStore=\"HydroBase\",Sql=\"select 1\")\n", out)
}

func TestCommandsListsKinds(t *testing.T) {
	out, _, err := execute(t, "commands")
	require.NoError(t, err)
	assert.Contains(t, out, "DeleteDataStoreTableRows - ")
	assert.Contains(t, out, "True|False")
	assert.Contains(t, out, "SetPropertyFromDataStore - ")
}

func TestDataStores(t *testing.T) {
	f := newFixture(t)
	out, _, err := execute(t, "--config", f.config, "datastores")
	require.NoError(t, err)
	assert.Regexp(t, `HydroBase\s+sqlite\s+ok\s+test`, out)
	assert.Regexp(t, `Archive\s+sqlite\s+disabled`, out)
}
