package rdbms

import (
	"testing"
)

type testColumns struct {
	names []string
	types map[string]string
}

func (c testColumns) Names() []string { return c.names }
func (c testColumns) Get(name string) (string, bool) {
	v, ok := c.types[name]
	return v, ok
}

func TestBuildTempTableDDL(t *testing.T) {
	cols := testColumns{
		names: []string{"ID", "NAME", "CREATED_AT"},
		types: map[string]string{"ID": "NUMBER", "NAME": "VARCHAR(255)", "CREATED_AT": "TIMESTAMP_NTZ"},
	}
	tmp := TempTableName(SchemaTable{"DB.PUBLIC.ISSUES"}, "DB.STAGING")
	if tmp.String() != "DB.STAGING.TEMP_ISSUES" {
		t.Fatalf("expected DB.STAGING.TEMP_ISSUES; got %v", tmp)
	}
	got := BuildTempTableDDL(tmp, cols)
	expected := "CREATE or replace TRANSIENT TABLE DB.STAGING.TEMP_ISSUES (ID NUMBER, NAME VARCHAR(255), CREATED_AT TIMESTAMP_NTZ);"
	if got != expected {
		t.Fatalf("expected sql: '%v'; got '%v'", expected, got)
	}
	// Same input gives byte-identical output.
	if again := BuildTempTableDDL(tmp, cols); again != got {
		t.Fatalf("expected identical DDL; got '%v' and '%v'", got, again)
	}
}

func TestTempTableNameWithoutTempSchema(t *testing.T) {
	if got := TempTableName(SchemaTable{"T"}, "").String(); got != "TEMP_T" {
		t.Fatalf("expected TEMP_T; got %v", got)
	}
}
