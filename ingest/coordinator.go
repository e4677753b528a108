// Package ingest plans and loads the new files of each configured table.
//
// A Coordinator reads the high watermark of each table, lists the table's files,
// selects those beyond the watermark and generates the SQL to load them.
// An Executor runs that SQL against the warehouse and records the loaded files.
package ingest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/helper"
	"github.com/relloyd/hpingest/history"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms"
	tabledefinition "github.com/relloyd/hpingest/table-definition"
	"github.com/relloyd/hpingest/watermark"
	"github.com/rs/xid"
)

//go:generate mockgen -package mocks -destination mocks/interface.go -source=coordinator.go

// ObjectLister lists the files found below a prefix.
type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]watermark.Object, error)
}

// Refresher is implemented by listers that must sync their view of storage before listing.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SchemaDescriber returns the columns of each table it can describe and an error for each one it cannot.
type SchemaDescriber interface {
	Describe(ctx context.Context, tables []string) (map[string]*tabledefinition.ColumnSchema, map[string]error)
}

// TableConfig is one table to ingest.
type TableConfig struct {
	Name       string   // target table, also the key of its watermark history.
	Prefix     string   // path of the table's files below the stage.
	KeyColumns []string // columns that identify a row for the merge.
	FileFormat string   // JSON or PARQUET
}

type Config struct {
	Stage           string
	TempSchema      string
	IncludeMetadata bool
	Tables          []TableConfig
}

type Coordinator struct {
	log     logger.Logger
	cfg     Config
	catalog SchemaDescriber
	history history.Reader
	lister  ObjectLister
	state   int32
}

func NewCoordinator(log logger.Logger, cfg Config, catalog SchemaDescriber, hist history.Reader, lister ObjectLister) *Coordinator {
	return &Coordinator{
		log:     log,
		cfg:     cfg,
		catalog: catalog,
		history: hist,
		lister:  lister,
	}
}

func (c *Coordinator) State() State {
	return State(atomic.LoadInt32(&c.state))
}

func (c *Coordinator) setState(s State) {
	if prev := State(atomic.SwapInt32(&c.state, int32(s))); prev != s {
		c.log.Debug("coordinator state ", prev, " -> ", s)
	}
}

// Plan works out the files to load and the SQL to load them for every configured table.
func (c *Coordinator) Plan(ctx context.Context) (*Report, error) {
	return c.PlanTables(ctx, nil)
}

// PlanTables plans the named tables only. Nil names plans every configured table.
//
// A table whose columns cannot be described is recorded in Report.Skipped.
// A table whose files cannot be listed or parsed gets a result carrying the error.
// Failing to read the watermark history of any table fails the whole plan since no
// boundary is known; the returned report then holds the tables planned so far
// including the failed one.
func (c *Coordinator) PlanTables(ctx context.Context, names []string) (*Report, error) {
	tables, err := c.selectTables(names)
	if err != nil {
		return nil, err
	}
	report := NewReport(xid.New().String())
	c.setState(StateIdle)
	defer func() { report.State = c.State() }()
	// Describe all tables up front so that failures are known before any listing.
	tableNames := make([]string, 0, len(tables))
	for _, t := range tables {
		tableNames = append(tableNames, t.Name)
	}
	schemas, failures := c.catalog.Describe(ctx, tableNames)
	for t, e := range failures {
		report.Skipped[t] = e.Error()
	}
	c.setState(StateListing)
	if r, ok := c.lister.(Refresher); ok {
		if err = r.Refresh(ctx); err != nil {
			c.setState(StateFailed)
			return report, err
		}
	}
	for _, t := range tables {
		cols, ok := schemas[t.Name]
		if !ok { // if the table was skipped...
			c.log.Warn("skipping table ", t.Name, ": ", report.Skipped[t.Name])
			continue
		}
		res, err := c.planTable(ctx, t, cols)
		report.Results = append(report.Results, res)
		if err != nil {
			c.setState(StateFailed)
			return report, err
		}
	}
	c.setState(StateDone)
	c.log.Info("planned batch ", report.BatchID, ": ", len(report.Pending()), " tables with new files, ",
		len(report.Failed()), " failed, ", len(report.Skipped), " skipped")
	return report, nil
}

func (c *Coordinator) selectTables(names []string) ([]TableConfig, error) {
	if names == nil {
		return c.cfg.Tables, nil
	}
	retval := make([]TableConfig, 0, len(names))
	for _, n := range names {
		found := false
		for _, t := range c.cfg.Tables {
			if t.Name == n {
				retval = append(retval, t)
				found = true
				break
			}
		}
		if !found {
			return nil, &UnknownTableError{Table: n}
		}
	}
	return retval, nil
}

// planTable returns an error only when the history of the table cannot be read.
func (c *Coordinator) planTable(ctx context.Context, t TableConfig, cols *tabledefinition.ColumnSchema) (*TableResult, error) {
	c.setState(StateListing)
	res := &TableResult{Table: t.Name, TargetTable: t.Name, Prefix: t.Prefix, Files: make([]watermark.FileDescriptor, 0)}
	boundary, err := c.history.HighWatermark(ctx, t.Name)
	if err != nil {
		var hle *history.HistoryLookupError
		if !errors.As(err, &hle) {
			err = &history.HistoryLookupError{Table: t.Name, Err: err}
		}
		c.log.Error(err)
		res.setErr(err)
		return res, err
	}
	res.Boundary = boundary
	objects, err := c.lister.List(ctx, t.Prefix)
	if err != nil {
		c.log.Error("unable to list files for table ", t.Name, ": ", err)
		res.setErr(err)
		return res, nil
	}
	c.setState(StateSelecting)
	files, err := watermark.SelectUnprocessed(objects, boundary)
	if err != nil { // if a file name could not be parsed the whole batch for this table is aborted...
		c.log.Error("aborting table ", t.Name, ": ", err)
		res.setErr(err)
		return res, nil
	}
	res.Files = files
	if len(files) == 0 {
		c.log.Info("no new files for table ", t.Name, " after watermark ", boundary)
		return res, nil
	}
	hw, _ := watermark.MaxWatermark(files)
	res.HighWatermark = &hw
	c.setState(StateEmitting)
	if err = c.emitSql(t, cols, res); err != nil {
		c.log.Error("unable to generate SQL for table ", t.Name, ": ", err)
		res.Files = make([]watermark.FileDescriptor, 0)
		res.HighWatermark = nil
		res.setErr(err)
		return res, nil
	}
	c.log.Info("table ", t.Name, " has ", len(files), " new files up to watermark ", hw)
	return res, nil
}

func (c *Coordinator) emitSql(t TableConfig, cols *tabledefinition.ColumnSchema, res *TableResult) error {
	target := rdbms.SchemaTable{SchemaTable: t.Name}
	temp := rdbms.TempTableName(target, c.cfg.TempSchema)
	merge := rdbms.MergeSpec{
		SourceTable: temp,
		TargetTable: target,
		Columns:     cols.Names(),
		KeyColumns:  helper.ToUpperIfNotQuoted(t.KeyColumns),
	}
	if err := merge.Validate(); err != nil {
		return err
	}
	c.log.Debug("table ", t.Name, " merge keys ", merge.KeyColumns, " replace columns ", merge.OtherColumns())
	tempCols := cols
	if c.cfg.IncludeMetadata {
		tempCols = cols.Clone()
		if _, ok := tempCols.Get(constants.FileSourceColumnName); !ok {
			tempCols.Set(constants.FileSourceColumnName, constants.FileSourceColumnType)
		}
		if _, ok := tempCols.Get(constants.FileRowNumberColumnName); !ok {
			tempCols.Set(constants.FileRowNumberColumnName, constants.FileRowNumberColumnType)
		}
	}
	res.TempTable = temp.String()
	res.CreateTempSql = rdbms.BuildTempTableDDL(temp, tempCols)
	res.CopyIntoSql = rdbms.BuildCopyInto(rdbms.CopyIntoConfig{
		TargetTable:     temp,
		StageName:       c.cfg.Stage,
		Path:            t.Prefix,
		Files:           watermark.Keys(res.Files),
		FileFormat:      t.FileFormat,
		IncludeMetadata: c.cfg.IncludeMetadata,
	})
	res.MergeSql = rdbms.BuildMergeStatement(merge)
	return nil
}

// UnknownTableError is returned when asked to plan a table that is not configured.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("table %v is not configured", e.Table)
}
