package command

import (
	"fmt"
	"strings"

	"dscmd/model"
)

// expand resolves ${Property} references against the processor properties.
func expand(env Env, s string) string {
	return model.ExpandProperties(s, env.Property)
}

// param returns the trimmed, property-expanded value of a parameter.
func param(env Env, props *model.PropList, name string) string {
	return strings.TrimSpace(expand(env, props.Value(name)))
}

// dataStore resolves the DataStore parameter.
func dataStore(env Env, props *model.PropList) (DataStore, error) {
	name := param(env, props, "DataStore")
	ds, err := env.DataStore(name)
	if err != nil {
		return nil, fmt.Errorf("datastore %q is not available: %w", name, err)
	}
	return ds, nil
}

// requireOneOf records a single failure naming the first parameter when none
// of names is set, or a failure when more than one is set.
func requireOneOf(props *model.PropList, status *Status, names ...string) {
	var set []string
	for _, n := range names {
		if strings.TrimSpace(props.Value(n)) != "" {
			set = append(set, n)
		}
	}
	switch {
	case len(set) == 0:
		status.Add(PhaseInitialization, SeverityFailure,
			fmt.Sprintf("The %s parameter must be specified (or %s).", names[0], strings.Join(names[1:], " or ")),
			fmt.Sprintf("Specify one of %s.", strings.Join(names, ", ")))
	case len(set) > 1:
		status.Add(PhaseInitialization, SeverityFailure,
			fmt.Sprintf("Only one of %s can be specified.", strings.Join(set, ", ")),
			fmt.Sprintf("Specify only one of %s.", strings.Join(names, ", ")))
	}
}

func isTrue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "True")
}

func plural(n int64, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
