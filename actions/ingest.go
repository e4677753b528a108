package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/aws/s3"
	"github.com/relloyd/hpingest/config"
	"github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/history"
	"github.com/relloyd/hpingest/ingest"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms"
	"github.com/relloyd/hpingest/rdbms/shared"
	tabledefinition "github.com/relloyd/hpingest/table-definition"
)

// IngestConfig holds the inputs common to the plan, run and serve commands.
// Empty fields take their defaults.
type IngestConfig struct {
	PipelineFile     string
	Env              string
	LogLevel         string
	Output           string   // json or yaml
	Tables           []string // plan or load only these tables.
	StackDumpOnPanic bool
	Connections      ConnectionResolver
	OpenConnection   rdbms.ConnectionFactory
	Writer           io.Writer
	Log              logger.Logger
}

func (cfg *IngestConfig) setup() (logger.Logger, *config.Pipeline, error) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.Output == "" {
		cfg.Output = OutputJson
	}
	if cfg.Log == nil {
		cfg.Log = logger.NewLogger(constants.ServiceName, cfg.LogLevel, cfg.StackDumpOnPanic)
	}
	if cfg.OpenConnection == nil {
		cfg.OpenConnection = rdbms.NewSnowflakeConnection
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.PipelineFile == "" {
		p, err := config.DefaultPipelinePath()
		if err != nil {
			return nil, nil, err
		}
		cfg.PipelineFile = p
	}
	if cfg.Env == "" {
		cfg.Env = constants.DefaultEnvironment
	}
	p, err := config.LoadPipeline(cfg.PipelineFile, cfg.Env)
	if err != nil {
		return nil, nil, err
	}
	return cfg.Log, p, nil
}

// CoordinatorConfig maps the pipeline parameters onto the tables the coordinator plans.
func CoordinatorConfig(p *config.Pipeline) ingest.Config {
	retval := ingest.Config{
		Stage:           p.Stage,
		TempSchema:      p.TempSchema,
		IncludeMetadata: p.IncludeMetadata,
		Tables:          make([]ingest.TableConfig, 0, len(p.Tables)),
	}
	for _, t := range p.Tables {
		retval.Tables = append(retval.Tables, ingest.TableConfig{
			Name:       p.TargetTable(t),
			Prefix:     t.GetPrefix(),
			KeyColumns: t.KeyColumns,
			FileFormat: p.FileFormatOf(t),
		})
	}
	return retval
}

// newLister returns the configured lister: the stage directory table or the S3 bucket behind the stage.
func newLister(log logger.Logger, p *config.Pipeline, db shared.Connector) (ingest.ObjectLister, error) {
	switch p.Lister {
	case constants.ListerTypeS3:
		b, err := p.GetBucket()
		if err != nil {
			return nil, err
		}
		return s3.NewBucketLister(log, b.Name, b.Region, b.Prefix)
	case constants.ListerTypeStage:
		return &rdbms.StageLister{Log: log, Db: db, StageName: p.Stage}, nil
	}
	return nil, fmt.Errorf("unsupported lister %q", p.Lister)
}

// NewRunnerFactory returns a factory that opens one Snowflake session per run and wires
// the catalog, history, lister and executor to it.
func NewRunnerFactory(log logger.Logger, p *config.Pipeline, connections ConnectionResolver, open rdbms.ConnectionFactory) ingest.RunnerFactory {
	return func(ctx context.Context) (*ingest.Runner, func(), error) {
		dsn, err := p.ResolveSnowflakeDsn(connections)
		if err != nil {
			return nil, nil, err
		}
		db, err := open(log, &shared.DsnConnectionDetails{Dsn: dsn})
		if err != nil {
			return nil, nil, err
		}
		lister, err := newLister(log, p, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		hist := history.NewSnowflakeHistory(log, db, p.HistoryTable)
		catalog := tabledefinition.NewCatalog(log, &tabledefinition.SnowflakeColumnsGetter{Log: log, Db: db})
		runner := &ingest.Runner{
			Coordinator: ingest.NewCoordinator(log, CoordinatorConfig(p), catalog, hist, lister),
			Executor:    ingest.NewSnowflakeExecutor(log, db, hist),
		}
		return runner, db.Close, nil
	}
}

// RunPlan prints the files and SQL of each table without loading anything.
func RunPlan(ctx context.Context, cfg *IngestConfig) (*ingest.Report, error) {
	return runIngest(ctx, cfg, false)
}

// RunIngest plans and loads every table with new files and prints the report.
func RunIngest(ctx context.Context, cfg *IngestConfig) (*ingest.Report, error) {
	return runIngest(ctx, cfg, true)
}

func runIngest(ctx context.Context, cfg *IngestConfig, execute bool) (*ingest.Report, error) {
	log, p, err := cfg.setup()
	if err != nil {
		return nil, err
	}
	runner, closer, err := NewRunnerFactory(log, p, cfg.Connections, cfg.OpenConnection)(ctx)
	if err != nil {
		return nil, err
	}
	defer closer()
	start := time.Now()
	var names []string
	if len(cfg.Tables) > 0 {
		names = cfg.Tables
	}
	report, err := runner.Coordinator.PlanTables(ctx, names)
	if err == nil && execute {
		err = runner.Executor.Execute(ctx, report)
	}
	if report != nil {
		if werr := WriteReport(cfg.Writer, report, cfg.Output); werr != nil {
			log.Error(werr)
		}
		log.Info("batch ", report.BatchID, " finished in ", time.Since(start).Round(time.Millisecond))
	}
	if err != nil {
		return report, errors.Wrap(err, "ingestion failed")
	}
	return report, nil
}

// ServeConfig holds the inputs of the serve command.
type ServeConfig struct {
	IngestConfig
	Web ingest.WebServerConfig
}

// RunServe starts the HTTP service for the pipeline.
func RunServe(cfg *ServeConfig) error {
	log, p, err := cfg.setup()
	if err != nil {
		return err
	}
	return ingest.RunWebServer(log, &cfg.Web, NewRunnerFactory(log, p, cfg.Connections, cfg.OpenConnection))
}
