package actions

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/config"
	"github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/history"
	"github.com/relloyd/hpingest/rdbms"
	"github.com/relloyd/hpingest/rdbms/shared"
)

type InitConfig struct {
	IngestConfig
	ExecuteDDL   bool
	SkipPipeline bool // only print or execute the history DDL.
}

// RunInit writes a sample pipeline file, unless SkipPipeline is set, and prints the DDL of the
// history table. The DDL is executed instead when cfg.ExecuteDDL is set.
func RunInit(ctx context.Context, cfg *InitConfig) error {
	if cfg.Env == "" {
		cfg.Env = constants.DefaultEnvironment
	}
	if cfg.PipelineFile == "" {
		p, err := config.DefaultPipelinePath()
		if err != nil {
			return err
		}
		cfg.PipelineFile = p
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if !cfg.SkipPipeline {
		if err := config.WriteSample(cfg.PipelineFile, cfg.Env); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cfg.Writer, "Sample pipeline for environment %q written to %v\n", cfg.Env, cfg.PipelineFile)
	}
	log, p, err := cfg.setup()
	if err != nil {
		return err
	}
	ddl := history.BuildCreateHistoryTable(rdbms.SchemaTable{SchemaTable: p.HistoryTable})
	printLogFn := getPrintLogFunc(log, cfg.Writer, !cfg.ExecuteDDL)
	if !cfg.ExecuteDDL {
		printLogFn(ddl + ";")
		return nil
	}
	dsn, err := p.ResolveSnowflakeDsn(cfg.Connections)
	if err != nil {
		return err
	}
	db, err := cfg.OpenConnection(log, &shared.DsnConnectionDetails{Dsn: dsn})
	if err != nil {
		return err
	}
	defer db.Close()
	printLogFn(ddl)
	if _, err = db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrapf(err, "unable to create history table %v", p.HistoryTable)
	}
	printLogFn("history table ", p.HistoryTable, " is ready")
	return nil
}
