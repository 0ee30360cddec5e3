package attrdb

import (
	"errors"
	"fmt"
	"strings"
)

// SQLType classifies a column's declared type
type SQLType int

const (
	TypeUnknown SQLType = iota
	TypeCharacter
	TypeText
	TypeSmallInt
	TypeInteger
	TypeReal
	TypeDouble
	TypeDecimal
	TypeNumeric
	TypeDate
	TypeTime
	TypeTimestamp
	TypeInterval
	TypeSerial
)

var typeNames = map[SQLType]string{
	TypeUnknown:   "UNKNOWN",
	TypeCharacter: "CHARACTER",
	TypeText:      "TEXT",
	TypeSmallInt:  "SMALLINT",
	TypeInteger:   "INTEGER",
	TypeReal:      "REAL",
	TypeDouble:    "DOUBLE PRECISION",
	TypeDecimal:   "DECIMAL",
	TypeNumeric:   "NUMERIC",
	TypeDate:      "DATE",
	TypeTime:      "TIME",
	TypeTimestamp: "TIMESTAMP",
	TypeInterval:  "INTERVAL",
	TypeSerial:    "SERIAL",
}

func (t SQLType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SQLType(%d)", int(t))
}

// Quoted reports whether values of this type are printed between quotes
func (t SQLType) Quoted() bool {
	switch t {
	case TypeCharacter, TypeText, TypeDate, TypeTime, TypeTimestamp, TypeInterval, TypeSerial:
		return true
	default:
		return false
	}
}

// ParseSQLType classifies a declared column type such as "VARCHAR(20)" or
// "double precision". Unrecognised declarations fall back to sqlite's
// affinity rules.
func ParseSQLType(decl string) SQLType {
	name := strings.ToUpper(strings.TrimSpace(decl))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	switch name {
	case "CHAR", "CHARACTER", "VARCHAR", "CHARACTER VARYING", "NCHAR", "NVARCHAR":
		return TypeCharacter
	case "TEXT", "CLOB", "STRING":
		return TypeText
	case "SMALLINT", "INT2", "TINYINT":
		return TypeSmallInt
	case "INT", "INTEGER", "BIGINT", "INT4", "INT8", "MEDIUMINT":
		return TypeInteger
	case "REAL", "FLOAT", "FLOAT4":
		return TypeReal
	case "DOUBLE", "DOUBLE PRECISION", "FLOAT8":
		return TypeDouble
	case "DECIMAL":
		return TypeDecimal
	case "NUMERIC":
		return TypeNumeric
	case "DATE":
		return TypeDate
	case "TIME":
		return TypeTime
	case "TIMESTAMP", "DATETIME":
		return TypeTimestamp
	case "INTERVAL":
		return TypeInterval
	case "SERIAL":
		return TypeSerial
	}

	switch {
	case strings.Contains(name, "INT"):
		return TypeInteger
	case strings.Contains(name, "CHAR"), strings.Contains(name, "CLOB"), strings.Contains(name, "TEXT"):
		return TypeText
	case strings.Contains(name, "REAL"), strings.Contains(name, "FLOA"), strings.Contains(name, "DOUB"):
		return TypeDouble
	default:
		return TypeUnknown
	}
}

// Column describes one table column
type Column struct {
	Name string
	Type SQLType
}

// Link ties a dataset layer to an attribute table
type Link struct {
	Layer    int
	Name     string
	Driver   string
	Database string
	Table    string
	Key      string
}

// Validate checks that the link can be opened
func (l Link) Validate() error {
	var problems []string
	if l.Layer < 1 {
		problems = append(problems, "layer must be 1 or greater")
	}
	if l.Database == "" {
		problems = append(problems, "database is required")
	}
	if l.Table == "" {
		problems = append(problems, "table is required")
	}
	if l.Key == "" {
		problems = append(problems, "key column is required")
	}
	if len(problems) > 0 {
		return errors.New("invalid database link: " + strings.Join(problems, ", "))
	}
	return nil
}
