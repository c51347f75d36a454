package command

import (
	"context"
	"strings"
	"testing"

	"dscmd/datastore"
	"dscmd/model"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	stores map[string]DataStore
	props  map[string]string
	tables map[string]*model.Table
	dir    string
}

func newTestEnv(t *testing.T) (*testEnv, *datastore.DataStore) {
	t.Helper()
	ds, err := datastore.Open(context.Background(), datastore.Config{
		Name:        "HydroBase",
		Driver:      "sqlite",
		DSN:         ":memory:",
		Description: "test database",
		Properties:  map[string]string{"Region": "South Platte"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	_, err = ds.DB().Exec(`
		CREATE TABLE stations (id INTEGER PRIMARY KEY, name TEXT, year INTEGER);
		INSERT INTO stations (name, year) VALUES ('a', 2020), ('b', 2021), ('c', 2021);
	`)
	require.NoError(t, err)

	return &testEnv{
		stores: map[string]DataStore{"hydrobase": ds},
		props:  make(map[string]string),
		tables: make(map[string]*model.Table),
		dir:    t.TempDir(),
	}, ds
}

func (e *testEnv) DataStore(name string) (DataStore, error) {
	ds, ok := e.stores[strings.ToLower(name)]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return ds, nil
}

func (e *testEnv) Property(name string) (string, bool) {
	v, ok := e.props[name]
	return v, ok
}

func (e *testEnv) SetProperty(name, value string) { e.props[name] = value }
func (e *testEnv) SetTable(t *model.Table) { e.tables[t.ID] = t }
func (e *testEnv) WorkingDir() string { return e.dir }

func props(kv ...string) *model.PropList {
	p := model.NewPropList()
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

func mustNew(t *testing.T, name string, p *model.PropList) *Command {
	t.Helper()
	c, err := NewByName(name, p)
	require.NoError(t, err)
	return c
}
