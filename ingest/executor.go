package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/history"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms"
	"github.com/relloyd/hpingest/rdbms/shared"
)

//go:generate mockgen -package mocks -destination mocks/executor.go github.com/relloyd/hpingest/ingest Executor

// Executor loads the tables planned in a report.
type Executor interface {
	Execute(ctx context.Context, report *Report) error
}

// SnowflakeExecutor runs the planned SQL of each table in its own transaction
// together with the insert of the table's watermark history.
type SnowflakeExecutor struct {
	log      logger.Logger
	db       shared.Connector
	recorder history.Recorder
}

func NewSnowflakeExecutor(log logger.Logger, db shared.Connector, recorder history.Recorder) *SnowflakeExecutor {
	return &SnowflakeExecutor{log: log, db: db, recorder: recorder}
}

// ExecuteError lists the tables that failed to load.
type ExecuteError struct {
	Errors map[string]error
	Tables []string
}

func (e *ExecuteError) Error() string {
	msgs := make([]string, 0, len(e.Tables))
	for _, t := range e.Tables {
		msgs = append(msgs, fmt.Sprintf("%v: %v", t, e.Errors[t]))
	}
	return fmt.Sprintf("failed to load %v tables: %v", len(e.Tables), strings.Join(msgs, "; "))
}

// Execute loads each pending table. A failure rolls back that table only and
// the remaining tables are still loaded. The returned *ExecuteError names every failed table.
func (e *SnowflakeExecutor) Execute(ctx context.Context, report *Report) error {
	pending := report.Pending()
	if len(pending) == 0 {
		e.log.Info("batch ", report.BatchID, " has no files to load")
		return nil
	}
	var failed *ExecuteError
	for _, res := range pending {
		if err := e.executeTable(ctx, report.BatchID, res); err != nil {
			e.log.Error("batch ", report.BatchID, " failed to load table ", res.Table, ": ", err)
			res.setErr(err)
			if failed == nil {
				failed = &ExecuteError{Errors: make(map[string]error)}
			}
			failed.Tables = append(failed.Tables, res.Table)
			failed.Errors[res.Table] = err
			continue
		}
		res.Loaded = true
		e.log.Info("batch ", report.BatchID, " loaded ", len(res.Files), " files into table ", res.Table, " up to watermark ", res.HighWatermark)
	}
	if failed != nil {
		return failed
	}
	return nil
}

func (e *SnowflakeExecutor) executeTable(ctx context.Context, batchID string, res *TableResult) error {
	// DDL commits any open transaction in Snowflake so the staging table is created first.
	e.log.Debug(res.CreateTempSql)
	if _, err := e.db.ExecContext(ctx, res.CreateTempSql); err != nil {
		return errors.Wrapf(err, "unable to create staging table %v", res.TempTable)
	}
	return shared.WithTransaction(ctx, e.db, func(tx shared.Transacter) error {
		for _, stmt := range res.CopyIntoSql {
			e.log.Debug(stmt)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "unable to copy files into %v", res.TempTable)
			}
		}
		mctx, err := rdbms.SnowflakeMultiStatementContext(ctx, rdbms.MergeStatementCount)
		if err != nil {
			return err
		}
		e.log.Debug(res.MergeSql)
		if _, err = tx.ExecContext(mctx, res.MergeSql); err != nil {
			return errors.Wrapf(err, "unable to merge %v into %v", res.TempTable, res.TargetTable)
		}
		return e.recorder.RecordProcessed(ctx, tx, batchID, res.Table, res.Files)
	})
}

// Runner plans and then loads a batch.
type Runner struct {
	Coordinator *Coordinator
	Executor    Executor
}

// Run plans every configured table and loads those with new files.
// The report is returned even when an error occurs so that callers can see per-table outcomes.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report, err := r.Coordinator.Plan(ctx)
	if err != nil {
		return report, err
	}
	return report, r.Executor.Execute(ctx, report)
}
