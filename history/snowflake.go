package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms"
	"github.com/relloyd/hpingest/rdbms/shared"
	"github.com/relloyd/hpingest/watermark"
)

// maxInsertRows limits the rows per INSERT when recording history.
const maxInsertRows = 1000

var historyColumns = []string{
	"TABLE_NAME",
	"FILE_NAME",
	"WATERMARK_TIMESTAMP",
	"WATERMARK_INDEX",
	"FILE_SIZE",
	"AWS_LT_MODIFIED",
	"BATCH_ID",
	"IS_PROCESSED",
	"LOADED_AT",
}

// BuildCreateHistoryTable returns DDL for the history table.
func BuildCreateHistoryTable(historyTable rdbms.SchemaTable) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %v (
	TABLE_NAME VARCHAR(1024) NOT NULL,
	FILE_NAME VARCHAR(1024) NOT NULL,
	WATERMARK_TIMESTAMP NUMBER(38,0) NOT NULL,
	WATERMARK_INDEX NUMBER(38,0) NOT NULL,
	FILE_SIZE NUMBER(38,0),
	AWS_LT_MODIFIED TIMESTAMP_LTZ,
	BATCH_ID VARCHAR(64) NOT NULL,
	IS_PROCESSED BOOLEAN DEFAULT TRUE,
	LOADED_AT TIMESTAMP_LTZ DEFAULT CURRENT_TIMESTAMP()
)`, historyTable.String())
}

// SnowflakeHistory keeps the history of loaded files in a Snowflake table.
type SnowflakeHistory struct {
	Log          logger.Logger
	Db           shared.Connector
	HistoryTable rdbms.SchemaTable
}

func NewSnowflakeHistory(log logger.Logger, db shared.Connector, historyTable string) *SnowflakeHistory {
	return &SnowflakeHistory{Log: log, Db: db, HistoryTable: rdbms.SchemaTable{SchemaTable: historyTable}}
}

func (h *SnowflakeHistory) highWatermarkQuery() string {
	return fmt.Sprintf(`SELECT WATERMARK_TIMESTAMP, WATERMARK_INDEX FROM %v
WHERE TABLE_NAME = ? AND IS_PROCESSED = TRUE
ORDER BY WATERMARK_TIMESTAMP DESC, WATERMARK_INDEX DESC
LIMIT 1`, h.HistoryTable)
}

func (h *SnowflakeHistory) HighWatermark(ctx context.Context, table string) (*watermark.Watermark, error) {
	rows, err := h.Db.QueryContext(ctx, h.highWatermarkQuery(), table)
	if err != nil {
		return nil, &HistoryLookupError{Table: table, Err: err}
	}
	defer rows.Close()
	var retval *watermark.Watermark
	if rows.Next() {
		w := watermark.Watermark{}
		if err = rows.Scan(&w.Timestamp, &w.Index); err != nil {
			return nil, &HistoryLookupError{Table: table, Err: err}
		}
		retval = &w
	}
	if err = rows.Err(); err != nil {
		return nil, &HistoryLookupError{Table: table, Err: err}
	}
	if retval == nil {
		h.Log.Info("no files have been processed for table ", table)
	} else {
		h.Log.Info("high watermark for table ", table, " is ", retval)
	}
	return retval, nil
}

// RecordProcessed inserts one history row per file using tx.
func (h *SnowflakeHistory) RecordProcessed(ctx context.Context, tx shared.Transacter, batchID string, table string, files []watermark.FileDescriptor) error {
	for start := 0; start < len(files); start += maxInsertRows {
		end := start + maxInsertRows
		if end > len(files) {
			end = len(files)
		}
		query, args := h.buildInsert(batchID, table, files[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "unable to record processed files for table %v", table)
		}
	}
	h.Log.Debug("recorded ", len(files), " processed files for table ", table, " in batch ", batchID)
	return nil
}

func (h *SnowflakeHistory) buildInsert(batchID string, table string, files []watermark.FileDescriptor) (string, []interface{}) {
	values := make([]string, 0, len(files))
	args := make([]interface{}, 0, len(files)*7)
	for _, f := range files {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, TRUE, CURRENT_TIMESTAMP())")
		args = append(args, table, f.Key, f.Watermark.Timestamp, f.Watermark.Index, f.Size, f.LastModified, batchID)
	}
	return fmt.Sprintf("INSERT INTO %v (%v) VALUES %v",
		h.HistoryTable, strings.Join(historyColumns, ", "), strings.Join(values, ", ")), args
}
