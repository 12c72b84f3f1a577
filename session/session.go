// Package session is thin glue between callers and the database holding the
// generated tables: it opens the right database/sql driver for a database
// URL and exposes primary-key based create/read/update/delete operations.
// It deliberately contains no query building beyond those four statements.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/syssam/modelgen"
	"github.com/syssam/modelgen/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores,
// dots for schema.name).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// Client wraps a database connection for one dialect.
type Client struct {
	db      *sql.DB
	dialect string
}

// Open connects to the database named by a URL. The dialect is detected
// from the URL scheme and the matching registered driver is used.
func Open(databaseURL string) (*Client, error) {
	d, err := dialect.FromURL(databaseURL)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.DriverName(d), dialect.DSN(databaseURL, d))
	if err != nil {
		return nil, fmt.Errorf("session: open %s database: %w", d, err)
	}
	return &Client{db: db, dialect: d}, nil
}

// OpenDB wraps an existing database/sql handle with a Client.
func OpenDB(d string, db *sql.DB) *Client {
	return &Client{db: db, dialect: d}
}

// DB returns the underlying *sql.DB instance.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the client's dialect.
func (c *Client) Dialect() string {
	return c.dialect
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// Insert creates one row. Column order in the statement is sorted so the
// same values always produce the same SQL.
func (c *Client) Insert(ctx context.Context, table string, values map[string]any) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	cols := make([]string, 0, len(values))
	for col := range values {
		if err := checkIdent(col); err != nil {
			return err
		}
		cols = append(cols, col)
	}
	slices.Sort(cols)
	args := make([]any, 0, len(cols))
	holders := make([]string, 0, len(cols))
	for i, col := range cols {
		args = append(args, values[col])
		holders = append(holders, c.placeholder(i+1))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(holders, ", "))
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("session: insert into %s: %w", table, err)
	}
	return nil
}

// Get reads one row by primary key. A missing row is a NotFoundError.
func (c *Client) Get(ctx context.Context, table, pkColumn string, id any) (map[string]any, error) {
	if err := checkIdents(table, pkColumn); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", table, pkColumn, c.placeholder(1))
	rows, err := c.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("session: select from %s: %w", table, err)
	}
	defer rows.Close()
	all, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("session: select from %s: %w", table, err)
	}
	if len(all) == 0 {
		return nil, modelgen.NewNotFoundErrorWithRef(table, id)
	}
	return all[0], nil
}

// All reads every row of a table in the order the database returns them.
func (c *Client) All(ctx context.Context, table string) ([]map[string]any, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("session: select from %s: %w", table, err)
	}
	defer rows.Close()
	all, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("session: select from %s: %w", table, err)
	}
	return all, nil
}

// Update modifies columns of one row by primary key. Updating a missing row
// is a NotFoundError.
func (c *Client) Update(ctx context.Context, table, pkColumn string, id any, values map[string]any) error {
	if err := checkIdents(table, pkColumn); err != nil {
		return err
	}
	cols := make([]string, 0, len(values))
	for col := range values {
		if err := checkIdent(col); err != nil {
			return err
		}
		cols = append(cols, col)
	}
	slices.Sort(cols)
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = %s", col, c.placeholder(i+1)))
		args = append(args, values[col])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		table, strings.Join(sets, ", "), pkColumn, c.placeholder(len(cols)+1))
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("session: update %s: %w", table, err)
	}
	return checkAffected(res, table, id)
}

// Delete removes one row by primary key. Deleting a missing row is a
// NotFoundError.
func (c *Client) Delete(ctx context.Context, table, pkColumn string, id any) error {
	if err := checkIdents(table, pkColumn); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", table, pkColumn, c.placeholder(1))
	res, err := c.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("session: delete from %s: %w", table, err)
	}
	return checkAffected(res, table, id)
}

// placeholder returns the dialect's bind placeholder for position i.
func (c *Client) placeholder(i int) string {
	if c.dialect == dialect.Postgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func checkIdent(name string) error {
	if name == "" || len(name) > 128 || !validIdentifierRe.MatchString(name) {
		return fmt.Errorf("session: invalid identifier %q", name)
	}
	return nil
}

func checkIdents(names ...string) error {
	for _, name := range names {
		if err := checkIdent(name); err != nil {
			return err
		}
	}
	return nil
}

func checkAffected(res sql.Result, table string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("session: rows affected on %s: %w", table, err)
	}
	if n == 0 {
		return modelgen.NewNotFoundErrorWithRef(table, id)
	}
	return nil
}

// scanRows drains a result set into one map per row.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
