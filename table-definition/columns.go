//go:generate mockgen -package mocks -destination mocks/columns.go github.com/relloyd/hpingest/table-definition ColumnsGetter
package tabledefinition

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms"
	"github.com/relloyd/hpingest/rdbms/shared"
)

// TableColumn defines a single table column.
type TableColumn struct {
	ColName       string
	DataType      string
	DataLen       int
	DataPrecision int
	DataScale     int
	Nullable      bool
	ColID         int
}

// NormalizedType renders the column type as TYPE(len) when the column has a
// maximum character length, TYPE(precision,scale) for fixed-point numbers,
// else the bare type name.
func (c TableColumn) NormalizedType() string {
	dt := strings.ToUpper(strings.TrimSpace(c.DataType))
	if c.DataLen > 0 {
		return fmt.Sprintf("%v(%v)", dt, c.DataLen)
	}
	if c.DataPrecision > 0 && isFixedPoint(dt) {
		return fmt.Sprintf("%v(%v,%v)", dt, c.DataPrecision, c.DataScale)
	}
	return dt
}

// isFixedPoint reports whether dt takes a (precision,scale) argument.
// FLOAT also reports a NUMERIC_PRECISION but takes none.
func isFixedPoint(dt string) bool {
	switch dt {
	case "NUMBER", "DECIMAL", "NUMERIC", "FIXED":
		return true
	}
	return false
}

// QuotedName returns ColName as an identifier usable in generated SQL.
func (c TableColumn) QuotedName() string {
	return rdbms.QuoteIdentifier(c.ColName)
}

// ColumnsGetter fetches column metadata for a [<database>.][<schema>.]<table>.
type ColumnsGetter interface {
	ColumnsOf(ctx context.Context, table string) ([]TableColumn, error)
}

// SnowflakeColumnsGetter reads column metadata from Snowflake's information_schema.
type SnowflakeColumnsGetter struct {
	Log logger.Logger
	Db  shared.Connector
}

const snowflakeColumnsSql = `select COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH AS DATA_LENGTH, 
	NUMERIC_PRECISION AS DATA_PRECISION, NUMERIC_SCALE AS DATA_SCALE, IS_NULLABLE AS NULLABLE,
	ORDINAL_POSITION AS COLUMN_ID
	from %vinformation_schema.columns
	where %v
	and table_name = ?
	order by ORDINAL_POSITION`

// buildColumnsQuery returns SQL and bind values for the given table.
// Unquoted identifiers are matched in upper case as Snowflake stores them.
func buildColumnsQuery(table string) (string, []interface{}) {
	st := rdbms.SchemaTable{SchemaTable: table}
	db, schema := "", st.GetSchema()
	if idx := strings.LastIndex(schema, "."); idx >= 0 {
		db = schema[:idx+1]
		schema = schema[idx+1:]
	}
	args := make([]interface{}, 0, 2)
	schemaFilter := "table_schema = current_schema()"
	if schema != "" {
		schemaFilter = "table_schema = ?"
		args = append(args, identifierValue(schema))
	}
	args = append(args, identifierValue(st.GetTable()))
	return fmt.Sprintf(snowflakeColumnsSql, db, schemaFilter), args
}

func identifierValue(s string) string {
	if len(s) > 1 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.Trim(s, `"`)
	}
	return strings.ToUpper(s)
}

// ColumnsOf returns the columns of table in ordinal order.
// A table without any column metadata is reported as an error since it cannot be loaded.
func (g *SnowflakeColumnsGetter) ColumnsOf(ctx context.Context, table string) ([]TableColumn, error) {
	query, args := buildColumnsQuery(table)
	g.Log.Debug("fetching column metadata for table ", table)
	rows, err := g.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to fetch column metadata for table %v", table)
	}
	defer rows.Close()
	var retval []TableColumn
	for rows.Next() {
		var c TableColumn
		var dataLen, precision, scale sql.NullInt64
		var nullable string
		if err = rows.Scan(&c.ColName, &c.DataType, &dataLen, &precision, &scale, &nullable, &c.ColID); err != nil {
			return nil, errors.Wrapf(err, "unable to read column metadata for table %v", table)
		}
		c.DataLen = int(dataLen.Int64)
		c.DataPrecision = int(precision.Int64)
		c.DataScale = int(scale.Int64)
		c.Nullable = strings.EqualFold(nullable, "YES")
		retval = append(retval, c)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "unable to read column metadata for table %v", table)
	}
	if len(retval) == 0 {
		return nil, fmt.Errorf("no column metadata found for table %v", table)
	}
	return retval, nil
}
