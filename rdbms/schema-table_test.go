package rdbms

import (
	"testing"
)

func TestSchemaTable(t *testing.T) {
	cases := []struct {
		input, schema, table string
	}{
		{"schema.table", "schema", "table"},
		{`schema."table"`, "schema", `"table"`},
		{`"random.table"`, "", `"random.table"`},
		{`"schema"."table"`, `"schema"`, `"table"`},
		{`"schema".table`, `"schema"`, "table"},
		{"table", "", "table"},
		{"DB.SCHEMA.TABLE", "DB.SCHEMA", "TABLE"},
		{`DB.SCHEMA."my.table"`, "DB.SCHEMA", `"my.table"`},
	}
	for _, c := range cases {
		st := SchemaTable{SchemaTable: c.input}
		if got := st.GetSchema(); got != c.schema {
			t.Fatalf("input %v: expected schema = %q; got %q", c.input, c.schema, got)
		}
		if got := st.GetTable(); got != c.table {
			t.Fatalf("input %v: expected table = %q; got %q", c.input, c.table, got)
		}
		if got := st.String(); got != c.input {
			t.Fatalf("input %v: expected %q; got %q", c.input, c.input, got)
		}
	}
}

func TestSchemaTableRename(t *testing.T) {
	cases := []struct {
		input, prefixed string
	}{
		{`"schema".table`, `"schema".TEMP_table`},
		{`"schema"."table"`, `"schema"."TEMP_table"`},
		{`table`, `TEMP_table`},
		{`DB.STAGING.ISSUES`, `DB.STAGING.TEMP_ISSUES`},
	}
	for _, c := range cases {
		st := SchemaTable{SchemaTable: c.input}
		if got := st.PrependPrefix("TEMP_"); got != c.prefixed {
			t.Fatalf("expected %v; got %v", c.prefixed, got)
		}
	}
}

func TestNewSchemaTableAndInSchema(t *testing.T) {
	if got := NewSchemaTable("DB.PUBLIC.", "T").String(); got != "DB.PUBLIC.T" {
		t.Fatalf("expected DB.PUBLIC.T; got %v", got)
	}
	if got := NewSchemaTable("", "T").String(); got != "T" {
		t.Fatalf("expected T; got %v", got)
	}
	st := SchemaTable{"DB.PUBLIC.ISSUES"}
	if got := st.InSchema("DB.STAGING").String(); got != "DB.STAGING.ISSUES" {
		t.Fatalf("expected DB.STAGING.ISSUES; got %v", got)
	}
	if got := st.InSchema("").String(); got != "DB.PUBLIC.ISSUES" {
		t.Fatalf("expected table unchanged; got %v", got)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	cases := []struct {
		input, expected string
	}{
		{"ID", "ID"},
		{"_ROW$1", "_ROW$1"},
		{"id", `"id"`},
		{"Title", `"Title"`},
		{"MY COL", `"MY COL"`},
		{"1ST", `"1ST"`},
		{`A"B`, `"A""B"`},
	}
	for _, c := range cases {
		if got := QuoteIdentifier(c.input); got != c.expected {
			t.Fatalf("input %v: expected %v; got %v", c.input, c.expected, got)
		}
	}
}
