package command

import (
	"context"
	"strings"

	"dscmd/model"
)

func init() {
	Register(&Definition{
		Name:        "SetProperty",
		Description: "Set a processor property.",
		Params: []Param{
			{Name: "PropertyName", Description: "Property to set.", Required: true},
			{Name: "PropertyValue", Description: "Value; ${Property} references are expanded."},
		},
		Check: func(props *model.PropList, status *Status) {
			if strings.ContainsAny(strings.TrimSpace(props.Value("PropertyName")), " \t${}") {
				status.Add(PhaseInitialization, SeverityFailure,
					"The PropertyName parameter cannot contain spaces or ${}.",
					"Use letters, digits and underscores in property names.")
			}
		},
		Run: func(_ context.Context, env Env, props *model.PropList, _ *Status) error {
			env.SetProperty(param(env, props, "PropertyName"), expand(env, props.Value("PropertyValue")))
			return nil
		},
	})
}
