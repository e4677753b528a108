// Package history records which files have been loaded into each table and
// returns the high watermark from which the next run continues.
package history

import (
	"context"
	"fmt"

	"github.com/relloyd/hpingest/rdbms/shared"
	"github.com/relloyd/hpingest/watermark"
)

//go:generate mockgen -package mocks -destination mocks/history.go -source=history.go

// Reader returns the greatest watermark processed for a table.
// A nil watermark with no error means nothing has been processed yet.
type Reader interface {
	HighWatermark(ctx context.Context, table string) (*watermark.Watermark, error)
}

// Recorder saves processed files inside the caller's transaction so that the
// history only moves forward when the data merge commits.
type Recorder interface {
	RecordProcessed(ctx context.Context, tx shared.Transacter, batchID string, table string, files []watermark.FileDescriptor) error
}

// HistoryLookupError means the processed boundary for a table is unknown.
// No file can safely be selected for the table when this happens.
type HistoryLookupError struct {
	Table string
	Err   error
}

func (e *HistoryLookupError) Error() string {
	return fmt.Sprintf("unable to read watermark history for table %v: %v", e.Table, e.Err)
}

func (e *HistoryLookupError) Unwrap() error {
	return e.Err
}
