package db

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is the portable form of a library command.
type Entry struct {
	Name        string `yaml:"name"`
	Command     string `yaml:"command"`
	Description string `yaml:"description,omitempty"`
}

type document struct {
	Commands []Entry `yaml:"commands"`
}

// Export writes every library command as YAML.
func (d *DB) Export(w io.Writer) error {
	cmds, err := d.List()
	if err != nil {
		return err
	}
	doc := document{Commands: make([]Entry, 0, len(cmds))}
	for _, c := range cmds {
		doc.Commands = append(doc.Commands, Entry{Name: c.Name, Command: c.Cmd, Description: c.Description})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode library: %w", err)
	}
	return enc.Close()
}

// Import reads YAML written by Export. Entries whose command already exists
// are skipped. It returns the number added and the number skipped.
func (d *DB) Import(r io.Reader, validate func(cmd string) error) (added, skipped int, err error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return 0, 0, fmt.Errorf("decode library: %w", err)
	}
	for i, e := range doc.Commands {
		name := strings.TrimSpace(e.Name)
		cmd := strings.TrimSpace(e.Command)
		if name == "" || cmd == "" {
			return added, skipped, fmt.Errorf("commands[%d]: name and command are required", i)
		}
		if validate != nil {
			if err := validate(cmd); err != nil {
				return added, skipped, fmt.Errorf("commands[%d] %s: %w", i, name, err)
			}
		}
		dup, err := d.IsDuplicate(cmd, 0)
		if err != nil {
			return added, skipped, err
		}
		if dup {
			skipped++
			continue
		}
		if _, err := d.Add(name, cmd, strings.TrimSpace(e.Description)); err != nil {
			return added, skipped, err
		}
		added++
	}
	return added, skipped, nil
}
