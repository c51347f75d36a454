// Package command implements the datastore commands: parameter validation,
// the CommandName(Param="value",...) text form, and execution against an Env.
package command

import (
	"context"
	"fmt"
	"strings"

	"dscmd/logging"
	"dscmd/model"
)

// Command is one parsed command line: its kind, parameters and status log.
type Command struct {
	def    *Definition
	props  *model.PropList
	status Status
	raw    string

	parseErr error
	hint     string
}

// New creates a command of the given kind with a copy of props.
func New(def *Definition, props *model.PropList) *Command {
	if props == nil {
		props = model.NewPropList()
	}
	return &Command{def: def, props: props.Clone()}
}

// NewByName creates a command of the named kind.
func NewByName(name string, props *model.PropList) (*Command, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return New(def, props), nil
}

func (c *Command) Name() string { return c.def.Name }
func (c *Command) Definition() *Definition { return c.def }
func (c *Command) Parameters() *model.PropList { return c.props.Clone() }
func (c *Command) Status() *Status { return &c.status }

// IsComment reports whether the command is a # comment line.
func (c *Command) IsComment() bool { return c.def == commentDefinition }

// SetParameters replaces the parameters, as done when an editor is committed.
func (c *Command) SetParameters(props *model.PropList) {
	c.props = props.Clone()
}

// CheckParameters validates the parameters and records problems at INITIALIZATION.
func (c *Command) CheckParameters() *Status {
	c.status.Clear(PhaseInitialization)
	if c.def.raw {
		if c.parseErr != nil {
			c.status.Add(PhaseInitialization, SeverityFailure, c.parseErr.Error(), c.hint)
		}
		return &c.status
	}

	for _, p := range c.def.Params {
		v := strings.TrimSpace(c.props.Value(p.Name))
		if p.Required && v == "" {
			c.status.Add(PhaseInitialization, SeverityFailure,
				fmt.Sprintf("The %s parameter must be specified.", p.Name),
				fmt.Sprintf("Specify the %s parameter.", p.Name))
			continue
		}
		if v != "" && len(p.Choices) > 0 && !matchesChoice(v, p.Choices) {
			c.status.Add(PhaseInitialization, SeverityFailure,
				fmt.Sprintf("The %s parameter value %q is invalid.", p.Name, v),
				fmt.Sprintf("Specify %s as %s.", p.Name, strings.Join(p.Choices, " or ")))
		}
	}

	for _, k := range c.props.Keys() {
		if _, ok := c.def.Param(k); !ok {
			c.status.Add(PhaseInitialization, SeverityWarning,
				fmt.Sprintf("Parameter %q is not recognized by %s.", k, c.def.Name),
				"Remove the parameter or correct its spelling.")
		}
	}

	if c.def.Check != nil {
		c.def.Check(c.props, &c.status)
	}
	return &c.status
}

// Run executes the command. A failure is recorded at RUN and logged; it is
// also returned so callers can count failures, but the batch should continue.
func (c *Command) Run(ctx context.Context, env Env) error {
	c.status.Clear(PhaseRun)
	if c.def.Run == nil {
		return nil
	}
	logger := logging.FromContext(ctx).With().Str("command", c.def.Name).Logger()

	err := c.def.Run(ctx, env, c.props, &c.status)
	if err != nil {
		c.status.Add(PhaseRun, SeverityFailure,
			fmt.Sprintf("Error running %s: %v", c.def.Name, err),
			"Check the log file and datastore configuration.")
		logger.Warn().Err(err).Str("text", c.String()).Msg("command failed")
		return err
	}
	logger.Debug().Msg("command completed")
	return nil
}

// String renders Name(P1="v1",P2="v2"), declared order, non-empty parameters only.
func (c *Command) String() string {
	if c.def.raw {
		return c.raw
	}
	return Format(c.def, c.props)
}

// Format renders props for def. Undeclared and empty parameters are omitted.
func Format(def *Definition, props *model.PropList) string {
	var b strings.Builder
	b.WriteString(def.Name)
	b.WriteByte('(')
	n := 0
	for _, p := range def.Params {
		v := props.Value(p.Name)
		if v == "" {
			continue
		}
		if n > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Name)
		b.WriteString(`="`)
		b.WriteString(v)
		b.WriteByte('"')
		n++
	}
	b.WriteByte(')')
	return b.String()
}

func matchesChoice(v string, choices []string) bool {
	for _, c := range choices {
		if strings.EqualFold(v, c) {
			return true
		}
	}
	return false
}
