package tabledefinition

import (
	"context"
	"fmt"

	"github.com/relloyd/hpingest/logger"
)

// CatalogLookupError means the columns of one table could not be described.
// The table is left out of the results and may be retried on its own.
type CatalogLookupError struct {
	Table string
	Err   error
}

func (e *CatalogLookupError) Error() string {
	return fmt.Sprintf("catalog lookup failed for table %v: %v", e.Table, e.Err)
}

func (e *CatalogLookupError) Unwrap() error {
	return e.Err
}

// Catalog builds a ColumnSchema per table from column metadata.
type Catalog struct {
	Log    logger.Logger
	Getter ColumnsGetter
}

func NewCatalog(log logger.Logger, getter ColumnsGetter) *Catalog {
	return &Catalog{Log: log, Getter: getter}
}

// Describe returns the ColumnSchema of each table it could look up and a
// *CatalogLookupError for each table it could not. A failure for one table
// does not stop the others.
func (c *Catalog) Describe(ctx context.Context, tables []string) (map[string]*ColumnSchema, map[string]error) {
	schemas := make(map[string]*ColumnSchema)
	failures := make(map[string]error)
	for _, t := range tables {
		if _, ok := schemas[t]; ok {
			continue
		}
		if _, ok := failures[t]; ok {
			continue
		}
		cols, err := c.Getter.ColumnsOf(ctx, t)
		if err != nil {
			e := &CatalogLookupError{Table: t, Err: err}
			c.Log.Error(e)
			failures[t] = e
			continue
		}
		cs := NewColumnSchema()
		for _, col := range cols {
			cs.Set(col.QuotedName(), col.NormalizedType())
		}
		c.Log.Debug("table ", t, " has ", cs.Len(), " columns")
		schemas[t] = cs
	}
	return schemas, failures
}
