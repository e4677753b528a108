package rdbms

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reQuotedDottedName = regexp.MustCompile(`^"[^"]*\.[^"]*"$`) // "random.table"
	reQuotedName       = regexp.MustCompile(`^".+"$`)
	rePlainIdentifier  = regexp.MustCompile(`^[A-Z_][A-Z0-9_$]*$`)
)

// QuoteIdentifier renders a name read from the catalog as a SQL identifier.
// Names Snowflake would store unchanged when unquoted are returned as is,
// others are double-quoted with embedded quotes doubled.
func QuoteIdentifier(name string) string {
	if rePlainIdentifier.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<object>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{table}
	}
	return SchemaTable{strings.TrimRight(schema, ".") + "." + table}
}

func (st SchemaTable) isQuotedTable() bool {
	// if the schemaTable is a quoted "random.table" and not a regular "schema"."table"...
	return reQuotedDottedName.MatchString(st.SchemaTable)
}

// GetTable returns the object name without its schema.
// Database and schema qualifiers are split at the last unquoted dot, so DB.SCHEMA.TABLE gives TABLE.
func (st SchemaTable) GetTable() string {
	if st.isQuotedTable() {
		return st.SchemaTable // return the "random.table"
	}
	_, table := st.split()
	return table
}

// GetSchema returns everything before the table name, e.g. DB.SCHEMA for DB.SCHEMA.TABLE.
func (st SchemaTable) GetSchema() string {
	if st.isQuotedTable() {
		return ""
	}
	schema, _ := st.split()
	return schema
}

func (st SchemaTable) split() (schema string, table string) {
	s := st.SchemaTable
	if strings.HasSuffix(s, `"`) { // if the table is quoted it may contain dots...
		if i := strings.LastIndex(s[:len(s)-1], `"`); i > 0 && s[i-1] == '.' {
			return s[:i-1], s[i:]
		}
	}
	i := strings.LastIndex(s, ".")
	if i < 0 { // if we have just a table...
		return "", s
	}
	return s[:i], s[i+1:]
}

// PrependPrefix adds prefix to the table name, keeping any quotes around it.
func (st SchemaTable) PrependPrefix(prefix string) string {
	return st.rename(func(table string) string { return prefix + table })
}

func (st SchemaTable) rename(fn func(string) string) string {
	schema := st.GetSchema()
	table := st.GetTable()
	sep := "."
	if schema == "" {
		sep = ""
	}
	if reQuotedName.MatchString(table) { // if the table is quoted...
		return fmt.Sprintf(`%v%v"%v"`, schema, sep, fn(strings.Trim(table, `"`)))
	}
	return fmt.Sprintf("%v%v%v", schema, sep, fn(table))
}

// InSchema returns the table moved into schema. An empty schema keeps the current one.
func (st SchemaTable) InSchema(schema string) SchemaTable {
	if schema == "" {
		return st
	}
	return NewSchemaTable(schema, st.GetTable())
}

func (st SchemaTable) String() string {
	return st.SchemaTable
}
