package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/hpingest/constants"
)

// ColumnDefinitions is an ordered set of column names and their types.
type ColumnDefinitions interface {
	Names() []string
	Get(name string) (dataType string, ok bool)
}

// TempTableName returns the staging table for target: TEMP_<table> in tempSchema,
// or in the target's own schema if tempSchema is empty.
func TempTableName(target SchemaTable, tempSchema string) SchemaTable {
	return SchemaTable{target.InSchema(tempSchema).PrependPrefix(constants.TempTablePrefix)}
}

// BuildTempTableDDL returns the statement that creates (or replaces) the transient staging table
// with one column per entry in cols, in order.
func BuildTempTableDDL(tempTable SchemaTable, cols ColumnDefinitions) string {
	names := cols.Names()
	fields := make([]string, 0, len(names))
	for _, n := range names {
		dt, _ := cols.Get(n)
		fields = append(fields, fmt.Sprintf("%v %v", n, dt))
	}
	return fmt.Sprintf("CREATE or replace TRANSIENT TABLE %v (%v);", tempTable.String(), strings.Join(fields, ", "))
}
