package rdbms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms/shared"
	"github.com/relloyd/hpingest/watermark"
)

// BuildRefreshStage returns SQL to refresh the directory table of an external stage
// so that newly landed files become visible.
func BuildRefreshStage(stageName string) string {
	return fmt.Sprintf("ALTER STAGE %v REFRESH", strings.TrimPrefix(stageName, "@"))
}

// StageLister lists the files of an external stage using its directory table.
type StageLister struct {
	Log       logger.Logger
	Db        shared.Connector
	StageName string
}

// Refresh syncs the stage's directory table with the files in cloud storage.
func (s *StageLister) Refresh(ctx context.Context) error {
	s.Log.Info("refreshing stage ", s.StageName)
	if _, err := s.Db.ExecContext(ctx, BuildRefreshStage(s.StageName)); err != nil {
		return errors.Wrapf(err, "unable to refresh stage %v", s.StageName)
	}
	return nil
}

func (s *StageLister) buildQuery() string {
	return fmt.Sprintf(`SELECT RELATIVE_PATH, SIZE, LAST_MODIFIED FROM DIRECTORY(@%v) WHERE RELATIVE_PATH LIKE ? ESCAPE '\\'`,
		strings.TrimPrefix(s.StageName, "@"))
}

// List returns every file below prefix in the stage. The order is not defined.
func (s *StageLister) List(ctx context.Context, prefix string) ([]watermark.Object, error) {
	query := s.buildQuery()
	s.Log.Debug("listing stage ", s.StageName, " with prefix '", prefix, "'")
	rows, err := s.Db.QueryContext(ctx, query, escapeLike(strings.TrimLeft(prefix, "/"))+"%")
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list stage %v", s.StageName)
	}
	defer rows.Close()
	retval := make([]watermark.Object, 0)
	for rows.Next() {
		var o watermark.Object
		var mod time.Time
		if err = rows.Scan(&o.Key, &o.Size, &mod); err != nil {
			return nil, errors.Wrapf(err, "unable to read directory of stage %v", s.StageName)
		}
		o.LastModified = mod
		retval = append(retval, o)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "unable to read directory of stage %v", s.StageName)
	}
	s.Log.Debug("stage ", s.StageName, " prefix '", prefix, "' contains ", len(retval), " files")
	return retval, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
