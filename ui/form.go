package ui

import (
	"strings"

	"dscmd/command"
	"dscmd/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Fixed fields ahead of the parameter fields.
const (
	fieldName = iota
	fieldDescription
	fixedFields
)

// editor is the parameter form for one command kind. Each declared parameter
// gets a text input whose value is mirrored into a PropList.
type editor struct {
	def    *command.Definition
	inputs []textinput.Model
	focus  int
}

func newEditor(def *command.Definition, saved *model.Command, props *model.PropList) *editor {
	e := &editor{def: def, inputs: make([]textinput.Model, fixedFields+len(def.Params))}

	name := textinput.New()
	name.Placeholder = "Name (e.g., purge staging rows)"
	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	if saved != nil {
		name.SetValue(saved.Name)
		desc.SetValue(saved.Description)
	}
	e.inputs[fieldName] = name
	e.inputs[fieldDescription] = desc

	for i, p := range def.Params {
		in := textinput.New()
		in.Placeholder = p.Description
		if p.Default != "" {
			in.Placeholder += " (default " + p.Default + ")"
		}
		if props != nil {
			in.SetValue(props.Value(p.Name))
		}
		e.inputs[fixedFields+i] = in
	}
	e.inputs[0].Focus()
	return e
}

func (e *editor) label(i int) string {
	switch i {
	case fieldName:
		return "Name"
	case fieldDescription:
		return "Description"
	}
	p := e.def.Params[i-fixedFields]
	if p.Required {
		return p.Name + "*"
	}
	return p.Name
}

// props mirrors the parameter inputs into a PropList, skipping blank values.
func (e *editor) props() *model.PropList {
	p := model.NewPropList()
	for i, param := range e.def.Params {
		v := strings.TrimSpace(e.inputs[fixedFields+i].Value())
		if v != "" {
			p.Set(param.Name, v)
		}
	}
	return p
}

func (e *editor) name() string { return strings.TrimSpace(e.inputs[fieldName].Value()) }
func (e *editor) description() string { return strings.TrimSpace(e.inputs[fieldDescription].Value()) }

// command builds the command from the current form values.
func (e *editor) command() *command.Command {
	return command.New(e.def, e.props())
}

func (e *editor) next() {
	e.focus = (e.focus + 1) % len(e.inputs)
}

func (e *editor) prev() {
	e.focus--
	if e.focus < 0 {
		e.focus = len(e.inputs) - 1
	}
}

func (e *editor) focusInput() tea.Cmd {
	for i := range e.inputs {
		e.inputs[i].Blur()
	}
	return e.inputs[e.focus].Focus()
}
