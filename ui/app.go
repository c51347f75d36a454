package ui

import (
	"context"
	"fmt"
	"strings"

	"dscmd/command"
	"dscmd/db"
	"dscmd/logging"
	"dscmd/model"
	"dscmd/processor"
	"dscmd/runner"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"
)

type mode int

const (
	modeNormal mode = iota
	modePick
	modeAdd
	modeEdit
	modeDelete
	modeParam
)

type App struct {
	ctx      context.Context
	db       *db.DB
	proc     *processor.Processor
	logger   zerolog.Logger
	commands []model.Command
	filtered []model.Command

	// UI state
	mode   mode
	cursor int
	width  int
	height int
	err    string
	status string

	// Search
	searchInput textinput.Model

	// Output
	output      viewport.Model
	outputLines []string
	running     bool
	outputChan  chan runner.OutputMsg

	// Command kind picker
	kinds      []*command.Definition
	kindCursor int

	// Editor (add/edit)
	form       *editor
	editingCmd *model.Command

	// Property prompts before a run
	paramNames  []string
	paramValues map[string]string
	paramIndex  int
	paramInput  textinput.Model
	pendingCmd  *model.Command
	pendingRun  *command.Command
	lastParams  map[string]string
}

func NewApp(ctx context.Context, database *db.DB, proc *processor.Processor) (*App, error) {
	commands, err := database.List()
	if err != nil {
		return nil, err
	}

	search := textinput.New()
	search.Placeholder = "Search commands..."
	search.Focus()

	output := viewport.New(80, 10)

	app := &App{
		ctx:         ctx,
		db:          database,
		proc:        proc,
		logger:      logging.WithComponent("ui"),
		commands:    commands,
		filtered:    commands,
		searchInput: search,
		output:      output,
		kinds:       command.Definitions(),
		paramValues: make(map[string]string),
	}

	return app, nil
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

type outputMsg runner.OutputMsg

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width - 4   // account for app padding
		a.height = msg.Height - 2 // account for app padding
		a.output.Width = a.width - 4
		a.output.Height = a.height / 3
		return a, nil

	case outputMsg:
		if msg.Done {
			a.running = false
			a.outputChan = nil
			if msg.Line != "" {
				a.outputLines = append(a.outputLines, "", mutedStyle.Render(msg.Line))
			}
			if msg.ErrMsg != "" {
				a.outputLines = append(a.outputLines, errorStyle.Render("Error: "+msg.ErrMsg))
			}
			a.output.SetContent(strings.Join(a.outputLines, "\n"))
			a.output.GotoBottom()
			return a, nil
		}
		a.outputLines = append(a.outputLines, severityStyle(msg.Severity).Render(msg.Line))
		a.output.SetContent(strings.Join(a.outputLines, "\n"))
		a.output.GotoBottom()
		// Keep reading from channel
		return a, waitForOutput(a.outputChan)

	case tea.KeyMsg:
		a.err = ""
		a.status = ""

		switch a.mode {
		case modeNormal:
			return a.updateNormal(msg)
		case modePick:
			return a.updatePick(msg)
		case modeAdd, modeEdit:
			return a.updateForm(msg)
		case modeDelete:
			return a.updateDelete(msg)
		case modeParam:
			return a.updateParam(msg)
		}
	}

	return a, nil
}

func (a *App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "up", "ctrl+k":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down", "ctrl+j":
		if a.cursor < len(a.filtered)-1 {
			a.cursor++
		}

	case "enter":
		if len(a.filtered) > 0 && !a.running {
			return a.runSelectedCommand()
		}

	case "ctrl+a":
		a.mode = modePick
		a.kindCursor = 0
		return a, nil

	case "ctrl+e":
		if len(a.filtered) > 0 {
			return a.editSelectedCommand()
		}
		return a, nil

	case "ctrl+d":
		if len(a.filtered) > 0 {
			a.mode = modeDelete
		}
		return a, nil

	case "esc":
		if a.searchInput.Value() == "" {
			return a, tea.Quit
		}
		a.searchInput.SetValue("")
		a.filterCommands()

	default:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.filterCommands()
		return a, cmd
	}

	return a, nil
}

func (a *App) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.searchInput.Focus()

	case "up", "k":
		if a.kindCursor > 0 {
			a.kindCursor--
		}

	case "down", "j":
		if a.kindCursor < len(a.kinds)-1 {
			a.kindCursor++
		}

	case "enter":
		if len(a.kinds) == 0 {
			return a, nil
		}
		a.mode = modeAdd
		a.editingCmd = nil
		a.form = newEditor(a.kinds[a.kindCursor], nil, nil)
		a.searchInput.Blur()
		return a, textinput.Blink
	}
	return a, nil
}

func (a *App) editSelectedCommand() (tea.Model, tea.Cmd) {
	saved := a.filtered[a.cursor]
	c, err := command.Parse(saved.Cmd)
	if err != nil {
		a.err = err.Error()
		return a, nil
	}
	if c == nil || c.IsComment() {
		a.err = "Comments cannot be edited in the form"
		return a, nil
	}
	a.mode = modeEdit
	a.editingCmd = &saved
	a.form = newEditor(c.Definition(), &saved, c.Parameters())
	a.searchInput.Blur()
	return a, textinput.Blink
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.form = nil
		a.searchInput.Focus()
		return a, nil

	case "tab", "down":
		a.form.next()
		return a, a.form.focusInput()

	case "shift+tab", "up":
		a.form.prev()
		return a, a.form.focusInput()

	case "enter":
		return a.submitForm()

	default:
		var cmd tea.Cmd
		a.form.inputs[a.form.focus], cmd = a.form.inputs[a.form.focus].Update(msg)
		return a, cmd
	}
}

func (a *App) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if len(a.filtered) > 0 {
			cmd := a.filtered[a.cursor]
			if err := a.db.Delete(cmd.ID); err != nil {
				a.err = err.Error()
			} else {
				a.status = "Deleted!"
				a.refreshCommands()
				if a.cursor >= len(a.filtered) && a.cursor > 0 {
					a.cursor--
				}
			}
		}
		a.mode = modeNormal
		return a, nil

	case "n", "N", "esc":
		a.mode = modeNormal
		return a, nil
	}

	return a, nil
}

func (a *App) updateParam(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.searchInput.Focus()
		return a, nil

	case "enter":
		// Save current property value
		a.paramValues[a.paramNames[a.paramIndex]] = a.paramInput.Value()
		a.paramIndex++

		if a.paramIndex >= len(a.paramNames) {
			// All properties collected, run the command
			return a.executeCommand()
		}

		// Next property
		a.promptParam()
		return a, nil

	default:
		var cmd tea.Cmd
		a.paramInput, cmd = a.paramInput.Update(msg)
		return a, cmd
	}
}

func (a *App) promptParam() {
	name := a.paramNames[a.paramIndex]
	a.paramInput = textinput.New()
	a.paramInput.Placeholder = name
	if v, ok := a.lastParams[name]; ok {
		a.paramInput.SetValue(v)
	}
	a.paramInput.Focus()
}

func (a *App) runSelectedCommand() (tea.Model, tea.Cmd) {
	saved := a.filtered[a.cursor]
	// Reload so last params reflect earlier runs.
	if fresh, err := a.db.Get(saved.ID); err == nil {
		saved = fresh
	} else {
		a.logger.Warn().Err(err).Int64("id", saved.ID).Msg("reload saved command")
	}
	c, err := command.Parse(saved.Cmd)
	if c == nil {
		a.err = "Nothing to run"
		return a, nil
	}
	if err != nil {
		a.logger.Warn().Err(err).Int64("id", saved.ID).Msg("saved command does not parse")
	}

	a.pendingCmd = &saved
	a.pendingRun = c
	a.paramValues = make(map[string]string)

	// Prompt for ${Property} references the processor cannot resolve.
	var missing []string
	for _, name := range model.ExtractProperties(saved.Cmd) {
		if _, ok := a.proc.Property(name); !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		a.mode = modeParam
		a.paramNames = missing
		a.paramIndex = 0
		a.lastParams = db.LastParams(saved)
		a.promptParam()
		a.searchInput.Blur()
		return a, nil
	}

	return a.executeCommand()
}

func (a *App) executeCommand() (tea.Model, tea.Cmd) {
	saved := a.pendingCmd
	for name, v := range a.paramValues {
		a.proc.SetProperty(name, v)
	}

	if err := a.db.UpdateLastUsed(saved.ID, a.paramValues); err != nil {
		a.logger.Warn().Err(err).Int64("id", saved.ID).Msg("update last used")
	}
	a.running = true
	a.outputLines = []string{cmdPreviewStyle.Render("> " + saved.Name), ""}
	a.output.SetContent(strings.Join(a.outputLines, "\n"))

	a.mode = modeNormal
	a.searchInput.Focus()

	// Start command in goroutine
	a.outputChan = make(chan runner.OutputMsg)
	go runner.Run(a.ctx, a.proc, []*command.Command{a.pendingRun}, a.outputChan)

	return a, waitForOutput(a.outputChan)
}

func waitForOutput(ch chan runner.OutputMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return outputMsg{Done: true}
		}
		return outputMsg(msg)
	}
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	name := a.form.name()
	desc := a.form.description()
	if name == "" {
		a.err = "Name is required"
		return a, nil
	}

	c := a.form.command()
	status := c.CheckParameters()
	if status.Severity(command.PhaseInitialization) == command.SeverityFailure {
		var msgs []string
		for _, e := range status.Entries(command.PhaseInitialization) {
			if e.Severity == command.SeverityFailure {
				msgs = append(msgs, e.Message)
			}
		}
		a.err = strings.Join(msgs, " ")
		return a, nil
	}
	text := c.String()

	excludeID := int64(0)
	if a.editingCmd != nil {
		excludeID = a.editingCmd.ID
	}

	dup, err := a.db.IsDuplicate(text, excludeID)
	if err != nil {
		a.err = err.Error()
		return a, nil
	}
	if dup {
		a.err = "An identical command already exists"
		return a, nil
	}

	if a.mode == modeAdd {
		_, err = a.db.Add(name, text, desc)
		if err != nil {
			a.err = err.Error()
			return a, nil
		}
		a.status = "Added!"
	} else {
		err = a.db.Update(a.editingCmd.ID, name, text, desc)
		if err != nil {
			a.err = err.Error()
			return a, nil
		}
		a.status = "Updated!"
	}

	a.refreshCommands()
	a.mode = modeNormal
	a.form = nil
	a.searchInput.Focus()
	return a, nil
}

func (a *App) refreshCommands() {
	commands, err := a.db.List()
	if err != nil {
		a.err = err.Error()
		return
	}
	a.commands = commands
	a.filterCommands()
}

func (a *App) filterCommands() {
	query := a.searchInput.Value()
	if query == "" {
		a.filtered = a.commands
		return
	}

	// Build searchable strings
	var targets []string
	for _, c := range a.commands {
		targets = append(targets, c.Name+" "+c.Cmd)
	}

	matches := fuzzy.Find(query, targets)
	a.filtered = make([]model.Command, len(matches))
	for i, m := range matches {
		a.filtered[i] = a.commands[m.Index]
	}

	if a.cursor >= len(a.filtered) {
		a.cursor = max(0, len(a.filtered)-1)
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render("dscmd"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  datastores: %s", strings.Join(a.proc.DataStores().Names(), ", "))))
	b.WriteString("\n\n")

	// Search bar
	b.WriteString(a.searchInput.View())
	b.WriteString("\n\n")

	listHeight := a.height - a.output.Height - 10
	if listHeight < 3 {
		listHeight = 3
	}

	switch a.mode {
	case modeAdd, modeEdit:
		b.WriteString(a.renderForm())
	case modePick:
		b.WriteString(a.renderPicker())
	default:
		b.WriteString(a.renderList(listHeight))
	}

	// Delete confirmation
	if a.mode == modeDelete && len(a.filtered) > 0 {
		cmd := a.filtered[a.cursor]
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(fmt.Sprintf("Delete '%s'? (y/n)", cmd.Name)))
		b.WriteString("\n")
	}

	// Property prompt
	if a.mode == modeParam {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("Enter value for ${%s}: ", a.paramNames[a.paramIndex])))
		b.WriteString(a.paramInput.View())
		b.WriteString("\n")
	}

	// Output pane
	b.WriteString("\n")
	b.WriteString(outputTitleStyle.Render("OUTPUT"))
	b.WriteString("\n")

	outputBox := borderStyle.Width(a.width - 4).Render(a.output.View())
	b.WriteString(outputBox)
	b.WriteString("\n")

	// Status/error
	if a.err != "" {
		b.WriteString(errorStyle.Render("Error: " + a.err))
		b.WriteString("\n")
	}
	if a.status != "" {
		b.WriteString(successStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString(a.renderHelp())

	return appStyle.Render(b.String())
}

func (a *App) renderList(height int) string {
	if len(a.filtered) == 0 {
		return mutedStyle.Render("No commands found. Press ctrl+a to add one.\n")
	}

	var lines []string
	start := 0
	if a.cursor >= height {
		start = a.cursor - height + 1
	}

	end := start + height
	if end > len(a.filtered) {
		end = len(a.filtered)
	}

	for i := start; i < end; i++ {
		cmd := a.filtered[i]
		prefix := "  "
		style := normalStyle
		if i == a.cursor {
			prefix = "▸ "
			style = selectedStyle
		}

		name := style.Render(prefix + cmd.Name)
		preview := cmdPreviewStyle.Render("  " + truncate(cmd.Cmd, a.width-10))
		lines = append(lines, name, preview)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (a *App) renderPicker() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("New Command"))
	b.WriteString("\n\n")
	for i, d := range a.kinds {
		prefix := "  "
		style := normalStyle
		if i == a.kindCursor {
			prefix = "▸ "
			style = selectedStyle
		}
		b.WriteString(style.Render(prefix + d.Name))
		b.WriteString(cmdPreviewStyle.Render("  " + d.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: select • enter: edit • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderForm() string {
	var b strings.Builder

	title := "Add " + a.form.def.Name
	if a.mode == modeEdit {
		title = "Edit " + a.form.def.Name
	}
	b.WriteString(labelStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(a.form.def.Description))
	b.WriteString("\n\n")

	for i, input := range a.form.inputs {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", a.form.label(i)+":")))
		style := inputStyle
		if i == a.form.focus {
			style = focusedInputStyle
		}
		b.WriteString(style.Width(a.width - 30).Render(input.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Command: "))
	b.WriteString(cmdPreviewStyle.Render(truncate(a.form.command().String(), a.width-12)))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	b.WriteString("\n")

	return b.String()
}

func (a *App) renderHelp() string {
	if a.mode != modeNormal {
		return ""
	}

	keys := []struct{ key, desc string }{
		{"enter", "run"},
		{"ctrl+a", "add"},
		{"ctrl+e", "edit"},
		{"ctrl+d", "delete"},
		{"esc", "clear/quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}

	return strings.Join(parts, "  ")
}

func truncate(s string, width int) string {
	if width < 4 {
		width = 4
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
