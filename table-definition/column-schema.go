package tabledefinition

import (
	om "github.com/cevaris/ordered_map"
)

// ColumnSchema is an ordered mapping of column name to normalized data type.
// The order is the order in which columns were added and drives DDL column order.
type ColumnSchema struct {
	m *om.OrderedMap
}

func NewColumnSchema() *ColumnSchema {
	return &ColumnSchema{m: om.NewOrderedMap()}
}

// Set adds or replaces a column. Replacing keeps the original position.
func (c *ColumnSchema) Set(name string, dataType string) {
	c.m.Set(name, dataType)
}

func (c *ColumnSchema) Get(name string) (string, bool) {
	v, ok := c.m.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Names returns the column names in order.
func (c *ColumnSchema) Names() []string {
	retval := make([]string, 0, c.m.Len())
	c.Iter(func(name, _ string) {
		retval = append(retval, name)
	})
	return retval
}

func (c *ColumnSchema) Len() int {
	return c.m.Len()
}

// Clone returns a copy of c that can be extended without changing c.
func (c *ColumnSchema) Clone() *ColumnSchema {
	retval := NewColumnSchema()
	c.Iter(func(name, dataType string) {
		retval.Set(name, dataType)
	})
	return retval
}

// Iter calls fn for each column in order.
func (c *ColumnSchema) Iter(fn func(name string, dataType string)) {
	iter := c.m.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		fn(kv.Key.(string), kv.Value.(string))
	}
}
