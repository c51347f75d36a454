package command

import (
	"context"
	"fmt"

	"dscmd/model"
)

func init() {
	Register(&Definition{
		Name:        "SetPropertyFromDataStore",
		Description: "Set a processor property from a datastore property.",
		Params: []Param{
			{Name: "DataStore", Description: "Datastore to read the property from.", Required: true},
			{Name: "DataStoreProperty", Description: "Datastore property (Name, Description, Driver, DatabaseVersion or a configured property).", Required: true},
			{Name: "PropertyName", Description: "Processor property to set.", Required: true},
		},
		Run: runSetPropertyFromDataStore,
	})
}

func runSetPropertyFromDataStore(ctx context.Context, env Env, props *model.PropList, status *Status) error {
	ds, err := dataStore(env, props)
	if err != nil {
		return err
	}
	dsProp := param(env, props, "DataStoreProperty")
	name := param(env, props, "PropertyName")

	v, err := ds.Property(ctx, dsProp)
	if err != nil {
		return err
	}
	env.SetProperty(name, v)
	status.Add(PhaseRun, SeveritySuccess, fmt.Sprintf("Set property %s=%q.", name, v), "")
	return nil
}
