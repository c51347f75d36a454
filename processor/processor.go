// Package processor runs a list of commands against shared datastores,
// properties and tables.
package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"dscmd/command"
	"dscmd/datastore"
	"dscmd/logging"
	"dscmd/model"

	"github.com/google/uuid"
)

// Processor holds the state commands run against. It implements command.Env.
type Processor struct {
	stores  *datastore.Registry
	workDir string

	mu     sync.RWMutex
	props  map[string]string
	tables map[string]*model.Table
}

func New(stores *datastore.Registry, workDir string) *Processor {
	if stores == nil {
		stores = datastore.NewRegistry()
	}
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	return &Processor{
		stores:  stores,
		workDir: workDir,
		props:   make(map[string]string),
		tables:  make(map[string]*model.Table),
	}
}

func (p *Processor) DataStore(name string) (command.DataStore, error) {
	ds, err := p.stores.Get(name)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// DataStores returns the datastore registry.
func (p *Processor) DataStores() *datastore.Registry { return p.stores }

func (p *Processor) WorkingDir() string { return p.workDir }

func (p *Processor) Property(name string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.props[name]
	return v, ok
}

func (p *Processor) SetProperty(name, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.props[name] = value
}

// Properties returns a copy of the processor properties.
func (p *Processor) Properties() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.props))
	for k, v := range p.props {
		out[k] = v
	}
	return out
}

func (p *Processor) SetTable(t *model.Table) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tables[t.ID] = t
}

func (p *Processor) Table(id string) (*model.Table, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.tables[id]
	return t, ok
}

// TableIDs returns the identifiers of the tables created so far, sorted.
func (p *Processor) TableIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.tables))
	for id := range p.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadCommands parses a command file. Lines that cannot be parsed are kept as
// commands that fail at INITIALIZATION, so the returned slice mirrors the file.
func ReadCommands(r io.Reader) ([]*command.Command, error) {
	var cmds []*command.Command
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		c, _ := command.Parse(scanner.Text())
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return cmds, nil
}

// ReadCommandFile parses the command file at path.
func ReadCommandFile(path string) ([]*command.Command, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCommands(f)
}

// CheckAll validates every command and returns the number with failures.
func CheckAll(cmds []*command.Command) int {
	failed := 0
	for _, c := range cmds {
		if c.CheckParameters().Severity(command.PhaseInitialization) == command.SeverityFailure {
			failed++
		}
	}
	return failed
}

// Result reports the outcome of one command.
type Result struct {
	Index    int
	Command  *command.Command
	Skipped  bool
	Severity command.Severity
	Err      error
}

// Summary counts the outcomes of a run.
type Summary struct {
	RunID    string
	Total    int
	Failed   int
	Warnings int
	Skipped  int
}

// ErrCanceled is returned when the context ends before every command ran.
var ErrCanceled = errors.New("run canceled")

// RunCommands checks and runs cmds in order. Commands whose parameters fail
// validation are skipped; runtime failures are recorded and the run continues.
// onResult, when not nil, is called after each command.
func (p *Processor) RunCommands(ctx context.Context, cmds []*command.Command, onResult func(Result)) (Summary, error) {
	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.WithComponent("processor"))
	logger.Info().Int("commands", len(cmds)).Msg("run started")

	sum := Summary{RunID: runID}
	for i, c := range cmds {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("index", i).Msg("run canceled")
			return sum, fmt.Errorf("%w: %w", ErrCanceled, err)
		}
		if c.IsComment() {
			continue
		}
		sum.Total++

		res := Result{Index: i, Command: c}
		status := c.CheckParameters()
		if status.Severity(command.PhaseInitialization) == command.SeverityFailure {
			res.Skipped = true
			res.Severity = command.SeverityFailure
			sum.Skipped++
			sum.Failed++
			logger.Warn().Int("index", i).Str("text", c.String()).Msg("command has invalid parameters, skipped")
		} else {
			res.Err = c.Run(ctx, p)
			res.Severity = max(status.Severity(command.PhaseInitialization), status.Severity(command.PhaseRun))
			switch res.Severity {
			case command.SeverityFailure:
				sum.Failed++
			case command.SeverityWarning:
				sum.Warnings++
			}
		}
		if onResult != nil {
			onResult(res)
		}
	}

	logger.Info().
		Int("total", sum.Total).
		Int("failed", sum.Failed).
		Int("warnings", sum.Warnings).
		Msg("run finished")
	return sum, nil
}
