package attrdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLink creates a roads table in a fresh database file
func newTestLink(t *testing.T) Link {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attrs.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE roads (cat INTEGER PRIMARY KEY, name VARCHAR(40), lanes INTEGER, speed DOUBLE PRECISION, note TEXT)`,
		`INSERT INTO roads VALUES (3, 'Main St', 2, 45.5, NULL)`,
		`INSERT INTO roads VALUES (7, 'Elm', 1, 25, 'school zone')`,
		`INSERT INTO roads VALUES (9, 'The "Loop"', 4, 65, '')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	return Link{Layer: 1, Name: "roads", Database: path, Table: "roads", Key: "cat"}
}

func openTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := Open(context.Background(), newTestLink(t))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDescribe(t *testing.T) {
	c := openTestClient(t)

	columns, err := c.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Column{
		{Name: "cat", Type: TypeInteger},
		{Name: "name", Type: TypeCharacter},
		{Name: "lanes", Type: TypeInteger},
		{Name: "speed", Type: TypeDouble},
		{Name: "note", Type: TypeText},
	}, columns)
}

func TestDescribe_MissingTable(t *testing.T) {
	link := newTestLink(t)
	link.Table = "rivers"
	c, err := Open(context.Background(), link)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Describe(context.Background())
	assert.ErrorIs(t, err, ErrNoSuchTable)
}

func TestSelectInts(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	keys, err := c.SelectInts(ctx, "lanes > 1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{3, 9}, keys)

	keys, err = c.SelectInts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	keys, err = c.SelectInts(ctx, "name = 'Nowhere'")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = c.SelectInts(ctx, "no_such_column = 1")
	assert.Error(t, err)
}

func TestRow(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	values, found, err := c.Row(ctx, 3)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"3", "Main St", "2", "45.5", ""}, values)

	values, found, err = c.Row(ctx, 9)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `The "Loop"`, values[1])

	values, found, err = c.Row(ctx, 100)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, values)
}

func TestRow_ManyLookupsReleaseCursors(t *testing.T) {
	c := openTestClient(t)
	c.db.SetMaxOpenConns(1)

	for i := 0; i < 50; i++ {
		_, _, err := c.Row(context.Background(), i%10)
		require.NoError(t, err, "lookup %d", i)
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Link{Layer: 1, Database: "x.db", Table: "t"})
	assert.Error(t, err, "key is required")

	link := newTestLink(t)
	link.Driver = "pg"
	_, err = Open(ctx, link)
	assert.Error(t, err)
}

func TestClose_Once(t *testing.T) {
	c, err := Open(context.Background(), newTestLink(t))
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestParseSQLType(t *testing.T) {
	for decl, want := range map[string]SQLType{
		"VARCHAR(20)":      TypeCharacter,
		"char":             TypeCharacter,
		"text":             TypeText,
		"INTEGER":          TypeInteger,
		"smallint":         TypeSmallInt,
		"double precision": TypeDouble,
		"REAL":             TypeReal,
		"DATE":             TypeDate,
		"time":             TypeTime,
		"DATETIME":         TypeTimestamp,
		"numeric(10,2)":    TypeNumeric,
		"UNSIGNED BIG INT": TypeInteger,
		"BLOB":             TypeUnknown,
		"":                 TypeUnknown,
	} {
		assert.Equal(t, want, ParseSQLType(decl), decl)
	}
}

func TestSQLType_Quoted(t *testing.T) {
	for _, typ := range []SQLType{TypeCharacter, TypeText, TypeDate, TypeTime, TypeTimestamp, TypeInterval, TypeSerial} {
		assert.True(t, typ.Quoted(), typ.String())
	}
	for _, typ := range []SQLType{TypeSmallInt, TypeInteger, TypeReal, TypeDouble, TypeDecimal, TypeNumeric, TypeUnknown} {
		assert.False(t, typ.Quoted(), typ.String())
	}
}
