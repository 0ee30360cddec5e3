// Package attrdb reads attribute tables linked to vector datasets.
package attrdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dpup/vprofile/internal/logging"
)

// DefaultDriver is used when a link does not name a driver
const DefaultDriver = "sqlite"

// ErrNoSuchTable is returned when the linked table does not exist
var ErrNoSuchTable = errors.New("no such table")

// Client queries the attribute table of one link
type Client struct {
	db      *sql.DB
	link    Link
	columns []Column
	closed  bool
}

// Open connects to the database of link
func Open(ctx context.Context, link Link) (*Client, error) {
	if err := link.Validate(); err != nil {
		return nil, err
	}
	if link.Driver == "" {
		link.Driver = DefaultDriver
	}
	if link.Driver != DefaultDriver {
		return nil, fmt.Errorf("unsupported database driver %q", link.Driver)
	}

	db, err := sql.Open(link.Driver, link.Database)
	if err != nil {
		return nil, fmt.Errorf("unable to open database <%s> by driver <%s>: %w", link.Database, link.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to open database <%s> by driver <%s>: %w", link.Database, link.Driver, err)
	}

	logging.Debugw(ctx, "Opened attribute database", "database", link.Database, "table", link.Table, "layer", link.Layer)
	return &Client{db: db, link: link}, nil
}

// Link returns the link the client was opened with
func (c *Client) Link() Link {
	return c.link
}

// Describe returns the table's columns in declared order
func (c *Client) Describe(ctx context.Context) ([]Column, error) {
	if c.columns != nil {
		return c.columns, nil
	}

	rows, err := c.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(c.link.Table)+")")
	if err != nil {
		return nil, fmt.Errorf("unable to describe table <%s>: %w", c.link.Table, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("unable to describe table <%s>: %w", c.link.Table, err)
		}
		columns = append(columns, Column{Name: name, Type: ParseSQLType(declType)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to describe table <%s>: %w", c.link.Table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("unable to describe table <%s>: %w", c.link.Table, ErrNoSuchTable)
	}

	c.columns = columns
	return columns, nil
}

// SelectInts returns the key values of rows matching where. The clause is
// passed to the database as written.
func (c *Client) SelectInts(ctx context.Context, where string) ([]int, error) {
	query := "SELECT " + quoteIdent(c.link.Key) + " FROM " + quoteIdent(c.link.Table)
	if strings.TrimSpace(where) != "" {
		query += " WHERE " + where
	}
	logging.Debugw(ctx, "Selecting categories", "sql", query)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to select from table <%s>: %w", c.link.Table, err)
	}
	defer rows.Close()

	var keys []int
	for rows.Next() {
		var key sql.NullInt64
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("unable to read key from table <%s>: %w", c.link.Table, err)
		}
		if key.Valid {
			keys = append(keys, int(key.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to select from table <%s>: %w", c.link.Table, err)
	}
	return keys, nil
}

// Row returns the values of the row whose key equals cat, as text in column
// order. found is false when no row matches.
func (c *Client) Row(ctx context.Context, cat int) ([]string, bool, error) {
	columns, err := c.Describe(ctx)
	if err != nil {
		return nil, false, err
	}

	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdent(col.Name)
	}
	query := "SELECT " + strings.Join(names, ", ") + " FROM " + quoteIdent(c.link.Table) +
		" WHERE " + quoteIdent(c.link.Key) + " = ?"

	rows, err := c.db.QueryContext(ctx, query, cat)
	if err != nil {
		return nil, false, fmt.Errorf("unable to select attributes of cat %d: %w", cat, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}

	raw := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, false, fmt.Errorf("unable to read attributes of cat %d: %w", cat, err)
	}

	values := make([]string, len(columns))
	for i, v := range raw {
		values[i] = toText(v, columns[i].Type)
	}
	return values, true, nil
}

// Close closes the database. Calls after the first are no-ops.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func toText(v interface{}, t SQLType) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		switch t {
		case TypeDate:
			return v.Format("2006-01-02")
		case TypeTime:
			return v.Format("15:04:05")
		default:
			return v.Format("2006-01-02 15:04:05")
		}
	default:
		return fmt.Sprint(v)
	}
}
