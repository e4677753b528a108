package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/hpingest/helper"
)

const (
	mergeTargetAlias = "t"
	mergeSourceAlias = "s"
)

// PrecontractViolation is a programming error in the columns given to the merge.
type PrecontractViolation struct {
	Reason string
}

func (e *PrecontractViolation) Error() string {
	return "invalid merge specification: " + e.Reason
}

// MergeSpec describes a delete+insert of SourceTable into TargetTable.
// KeyColumns must be a non-empty subset of Columns.
type MergeSpec struct {
	SourceTable SchemaTable
	TargetTable SchemaTable
	Columns     []string
	KeyColumns  []string
}

// Validate returns a *PrecontractViolation if m breaks its invariants.
func (m MergeSpec) Validate() error {
	if len(m.Columns) == 0 {
		return &PrecontractViolation{Reason: "no columns supplied"}
	}
	if len(m.KeyColumns) == 0 {
		return &PrecontractViolation{Reason: "no key columns supplied"}
	}
	if m.SourceTable.String() == "" || m.TargetTable.String() == "" {
		return &PrecontractViolation{Reason: "source and target tables are required"}
	}
	if missing := helper.StringSliceDiff(m.KeyColumns, m.Columns); len(missing) > 0 {
		return &PrecontractViolation{Reason: fmt.Sprintf("key columns %v are not in the column list", strings.Join(missing, ","))}
	}
	return nil
}

// OtherColumns returns the non-key columns. They are replaced wholesale by the merge.
func (m MergeSpec) OtherColumns() []string {
	return helper.StringSliceDiff(m.Columns, m.KeyColumns)
}

// MergeStatementCount is the number of statements in the SQL returned by BuildMergeStatement.
const MergeStatementCount = 2

// BuildMergeStatement returns SQL that deletes every target row matched by key in the source
// and then inserts every source row. m is not validated here; call Validate first.
func BuildMergeStatement(m MergeSpec) string {
	predicate := helper.GenerateStringOfColsEqualsCols(m.KeyColumns, mergeTargetAlias, mergeSourceAlias, " AND ")
	cols := helper.StringsToCsv(m.Columns)
	return fmt.Sprintf("DELETE FROM %v %v USING %v %v WHERE %v;\nINSERT INTO %v (%v) SELECT %v FROM %v;",
		m.TargetTable.String(), mergeTargetAlias, m.SourceTable.String(), mergeSourceAlias, predicate,
		m.TargetTable.String(), cols, cols, m.SourceTable.String())
}
