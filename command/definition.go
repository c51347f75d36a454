package command

import (
	"context"
	"sort"
	"strings"
	"sync"

	"dscmd/model"

	"github.com/sahilm/fuzzy"
)

// Param declares one command parameter. Declaration order is serialization order.
type Param struct {
	Name        string
	Description string
	Required    bool
	Choices     []string // allowed values, matched case-insensitively; empty means free text
	Default     string   // shown in the editor; not written when serializing
}

// CheckFunc adds kind-specific validation entries to status.
type CheckFunc func(props *model.PropList, status *Status)

// RunFunc performs the command. Returned errors become RUN failures.
type RunFunc func(ctx context.Context, env Env, props *model.PropList, status *Status) error

// Definition is the strategy object for one command kind.
type Definition struct {
	Name        string
	Description string
	Params      []Param
	Check       CheckFunc
	Run         RunFunc

	raw bool // comments and unknown lines are kept verbatim
}

// Param returns the declared parameter by name.
func (d *Definition) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

var (
	registryMu  sync.RWMutex
	definitions = make(map[string]*Definition)
)

// Register adds a command kind. It panics on a duplicate name.
func Register(def *Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	key := strings.ToLower(def.Name)
	if _, dup := definitions[key]; dup {
		panic("command: duplicate definition " + def.Name)
	}
	definitions[key] = def
}

// Lookup finds a command kind by name, case-insensitively.
func Lookup(name string) (*Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := definitions[strings.ToLower(name)]
	return def, ok
}

// Definitions returns every registered kind sorted by name.
func Definitions() []*Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Suggest returns registered names that fuzzily match name, best first.
// When name is not contained in any registered name, names contained in
// name are returned instead, so "RunSqll" suggests "RunSql".
func Suggest(name string) []string {
	defs := Definitions()
	targets := make([]string, len(defs))
	for i, d := range defs {
		targets[i] = d.Name
	}
	var out []string
	for _, m := range fuzzy.Find(name, targets) {
		out = append(out, m.Str)
	}
	if len(out) > 0 {
		return out
	}
	for _, t := range targets {
		if len(fuzzy.Find(t, []string{name})) > 0 {
			out = append(out, t)
		}
	}
	return out
}
