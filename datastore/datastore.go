// Package datastore is the database interface used by the datastore commands.
// A DataStore is a named connection opened from configuration.
package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dscmd/model"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported driver")
	ErrNotFound          = errors.New("datastore not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrUnknownProperty   = errors.New("unknown datastore property")
)

// Config describes a datastore connection.
type Config struct {
	Name        string
	Driver      string
	DSN         string
	Description string
	Timeout     time.Duration
	Properties  map[string]string
}

type DataStore struct {
	cfg     Config
	dialect dialect
	conn    *sql.DB
}

// Open connects to the datastore and verifies the connection within cfg.Timeout.
func Open(ctx context.Context, cfg Config) (*DataStore, error) {
	d, err := lookupDialect(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("datastore %s: %w", cfg.Name, err)
	}

	conn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("datastore %s: open failed: %w", cfg.Name, err)
	}
	if strings.HasPrefix(cfg.Driver, "sqlite") {
		// A single connection keeps ":memory:" databases consistent across calls.
		conn.SetMaxOpenConns(1)
	}

	pingCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("datastore %s: ping failed: %w", cfg.Name, err)
	}

	return &DataStore{cfg: cfg, dialect: d, conn: conn}, nil
}

func (d *DataStore) Name() string { return d.cfg.Name }
func (d *DataStore) Driver() string { return d.cfg.Driver }
func (d *DataStore) Description() string { return d.cfg.Description }

// DB exposes the underlying connection pool.
func (d *DataStore) DB() *sql.DB { return d.conn }

func (d *DataStore) Close() error {
	return d.conn.Close()
}

// Property returns a datastore property. Name, Description, Driver and
// DatabaseVersion are built in; other names come from the configured properties.
func (d *DataStore) Property(ctx context.Context, name string) (string, error) {
	switch name {
	case "Name":
		return d.cfg.Name, nil
	case "Description":
		return d.cfg.Description, nil
	case "Driver":
		return d.cfg.Driver, nil
	case "DatabaseVersion":
		var v string
		if err := d.conn.QueryRowContext(ctx, d.dialect.versionQuery).Scan(&v); err != nil {
			return "", fmt.Errorf("query database version: %w", err)
		}
		return v, nil
	}
	if v, ok := d.cfg.Properties[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProperty, name)
}

// TableExists reports whether the (optionally schema-qualified) table or view exists.
func (d *DataStore) TableExists(ctx context.Context, table string) (bool, error) {
	q, args := d.dialect.tableExists(table)
	var n int
	if err := d.conn.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return n > 0, nil
}

// DeleteTableRows deletes rows from table. An empty where deletes all rows.
func (d *DataStore) DeleteTableRows(ctx context.Context, table, where string) (int64, error) {
	exists, err := d.TableExists(ctx, table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	stmt := "DELETE FROM " + QuoteIdentifier(table)
	if strings.TrimSpace(where) != "" {
		stmt += " WHERE " + where
	}
	res, err := d.conn.ExecContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	return res.RowsAffected()
}

// ExecResult is the outcome of Exec. Table is set for statements returning rows.
type ExecResult struct {
	Table        *model.Table
	RowsAffected int64
}

// Exec runs an arbitrary SQL statement. Statements that return rows are read into a table.
func (d *DataStore) Exec(ctx context.Context, stmt string) (ExecResult, error) {
	if returnsRows(stmt) {
		t, err := d.Query(ctx, stmt, 0)
		if err != nil {
			return ExecResult{}, err
		}
		return ExecResult{Table: t}, nil
	}
	res, err := d.conn.ExecContext(ctx, stmt)
	if err != nil {
		return ExecResult{}, fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Not all drivers report affected rows for DDL.
		n = 0
	}
	return ExecResult{RowsAffected: n}, nil
}

// Query runs a statement and reads at most limit rows (limit <= 0 reads all).
func (d *DataStore) Query(ctx context.Context, stmt string, limit int) (*model.Table, error) {
	rows, err := d.conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := &model.Table{Columns: cols}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if limit > 0 && len(t.Rows) >= limit {
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// SelectTable reads table rows, at most limit when limit > 0.
func (d *DataStore) SelectTable(ctx context.Context, table string, limit int) (*model.Table, error) {
	exists, err := d.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	stmt := "SELECT * FROM " + QuoteIdentifier(table)
	if limit > 0 {
		stmt += " LIMIT " + strconv.Itoa(limit)
	}
	return d.Query(ctx, stmt, limit)
}

var returningRegex = regexp.MustCompile(`(?i)\bRETURNING\b`)

func returnsRows(stmt string) bool {
	s := skipLeadingComments(stmt)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(strings.TrimRight(fields[0], ";")) {
	case "SELECT", "WITH", "PRAGMA", "VALUES", "EXPLAIN", "SHOW", "TABLE":
		return true
	case "INSERT", "UPDATE", "DELETE", "REPLACE":
		return returningRegex.MatchString(s)
	}
	return false
}

// skipLeadingComments drops whitespace, opening parentheses and leading
// "--" or "/* */" comments.
func skipLeadingComments(stmt string) string {
	s := stmt
	for {
		s = strings.TrimLeft(s, " \t\r\n(")
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return ""
			}
			s = s[i+4:]
		default:
			return s
		}
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
