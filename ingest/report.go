package ingest

import (
	"github.com/relloyd/hpingest/watermark"
)

// TableResult is the outcome of planning, and optionally loading, one table.
// Either Err is set or the SQL and ordered files are, never both.
// A table without new files has neither.
type TableResult struct {
	Table         string                     `json:"table" yaml:"table"`
	TargetTable   string                     `json:"targetTable" yaml:"targetTable"`
	TempTable     string                     `json:"tempTable,omitempty" yaml:"tempTable,omitempty"`
	Prefix        string                     `json:"prefix" yaml:"prefix"`
	Boundary      *watermark.Watermark       `json:"boundary,omitempty" yaml:"boundary,omitempty"`
	HighWatermark *watermark.Watermark       `json:"highWatermark,omitempty" yaml:"highWatermark,omitempty"`
	Files         []watermark.FileDescriptor `json:"files" yaml:"files"`
	CreateTempSql string                     `json:"createTempTableSql,omitempty" yaml:"createTempTableSql,omitempty"`
	CopyIntoSql   []string                   `json:"copyIntoSql,omitempty" yaml:"copyIntoSql,omitempty"`
	MergeSql      string                     `json:"mergeSql,omitempty" yaml:"mergeSql,omitempty"`
	Loaded        bool                       `json:"loaded" yaml:"loaded"`
	Reason        string                     `json:"error,omitempty" yaml:"error,omitempty"`
	Err           error                      `json:"-" yaml:"-"`
}

func (t *TableResult) setErr(err error) {
	t.Err = err
	t.Reason = err.Error()
}

// HasWork reports whether the table has files to load and no failure.
func (t *TableResult) HasWork() bool {
	return t.Err == nil && len(t.Files) > 0
}

// Report is the result of one ingestion run across all configured tables.
type Report struct {
	BatchID string            `json:"batchId" yaml:"batchId"`
	State   State             `json:"state" yaml:"state"`
	Results []*TableResult    `json:"tables" yaml:"tables"`
	Skipped map[string]string `json:"skipped,omitempty" yaml:"skipped,omitempty"` // tables whose columns could not be described.
}

func NewReport(batchID string) *Report {
	return &Report{BatchID: batchID, Results: make([]*TableResult, 0), Skipped: make(map[string]string)}
}

// Tables returns the names of the tables with a result, in plan order.
func (r *Report) Tables() []string {
	retval := make([]string, 0, len(r.Results))
	for _, t := range r.Results {
		retval = append(retval, t.Table)
	}
	return retval
}

// Result returns the result for the named table.
func (r *Report) Result(table string) (*TableResult, bool) {
	for _, t := range r.Results {
		if t.Table == table {
			return t, true
		}
	}
	return nil, false
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []*TableResult {
	retval := make([]*TableResult, 0)
	for _, t := range r.Results {
		if t.Err != nil {
			retval = append(retval, t)
		}
	}
	return retval
}

// Pending returns the results with files to load.
func (r *Report) Pending() []*TableResult {
	retval := make([]*TableResult, 0)
	for _, t := range r.Results {
		if t.HasWork() && !t.Loaded {
			retval = append(retval, t)
		}
	}
	return retval
}
