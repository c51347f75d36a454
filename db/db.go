// Package db stores the library of saved command lines.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dscmd/model"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("command not found")

type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the library database at path.
func New(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}
	return Open("sqlite3", path)
}

// Open opens a library on any registered SQLite driver.
func Open(driver, dsn string) (*DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate library: %w", err)
	}

	return db, nil
}

func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			cmd TEXT NOT NULL,
			description TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_used_at DATETIME,
			last_params TEXT DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_commands_name ON commands(name);
		CREATE INDEX IF NOT EXISTS idx_commands_cmd ON commands(cmd);
	`)
	if err != nil {
		return err
	}
	return d.addColumn("last_params", "TEXT DEFAULT ''")
}

// addColumn upgrades libraries created before the column existed.
func (d *DB) addColumn(name, decl string) error {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('commands') WHERE name = ?`, name).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	_, err = d.conn.Exec(`ALTER TABLE commands ADD COLUMN ` + name + ` ` + decl)
	return err
}

func (d *DB) Close() error {
	return d.conn.Close()
}

const selectColumns = `SELECT id, name, cmd, description, created_at, last_used_at, last_params FROM commands`

type scanner interface {
	Scan(dest ...any) error
}

func scanCommand(s scanner) (model.Command, error) {
	var c model.Command
	var lastUsed sql.NullTime
	var lastParams sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &c.Cmd, &c.Description, &c.CreatedAt, &lastUsed, &lastParams); err != nil {
		return c, err
	}
	if lastUsed.Valid {
		c.LastUsedAt = &lastUsed.Time
	}
	c.LastParams = lastParams.String
	return c, nil
}

func (d *DB) List() ([]model.Command, error) {
	rows, err := d.conn.Query(selectColumns + `
		ORDER BY last_used_at DESC NULLS LAST, created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commands []model.Command
	for rows.Next() {
		c, err := scanCommand(rows)
		if err != nil {
			return nil, err
		}
		commands = append(commands, c)
	}
	return commands, rows.Err()
}

func (d *DB) Get(id int64) (model.Command, error) {
	c, err := scanCommand(d.conn.QueryRow(selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c, err
}

func (d *DB) Add(name, cmd, description string) (int64, error) {
	result, err := d.conn.Exec(
		`INSERT INTO commands (name, cmd, description) VALUES (?, ?, ?)`,
		name, cmd, description,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) Update(id int64, name, cmd, description string) error {
	_, err := d.conn.Exec(
		`UPDATE commands SET name = ?, cmd = ?, description = ? WHERE id = ?`,
		name, cmd, description, id,
	)
	return err
}

func (d *DB) Delete(id int64) error {
	_, err := d.conn.Exec(`DELETE FROM commands WHERE id = ?`, id)
	return err
}

// UpdateLastUsed stamps the command as used and remembers the property values
// supplied for the run.
func (d *DB) UpdateLastUsed(id int64, params map[string]string) error {
	encoded := ""
	if len(params) > 0 {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		encoded = string(b)
	}
	_, err := d.conn.Exec(
		`UPDATE commands SET last_used_at = ?, last_params = ? WHERE id = ?`,
		time.Now(), encoded, id,
	)
	return err
}

// LastParams decodes the property values remembered by UpdateLastUsed.
func LastParams(c model.Command) map[string]string {
	out := make(map[string]string)
	if c.LastParams == "" {
		return out
	}
	_ = json.Unmarshal([]byte(c.LastParams), &out)
	return out
}

// IsDuplicate checks if a command with the same cmd string exists
func (d *DB) IsDuplicate(cmd string, excludeID int64) (bool, error) {
	normalized := strings.TrimSpace(cmd)
	var count int
	err := d.conn.QueryRow(
		`SELECT COUNT(*) FROM commands WHERE TRIM(cmd) = ? AND id != ?`,
		normalized, excludeID,
	).Scan(&count)
	return count > 0, err
}
