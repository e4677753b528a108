package cmd

import (
	"context"

	"github.com/relloyd/hpingest/actions"
	"github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/ingest"
	"github.com/spf13/cobra"
)

var (
	planCfg actions.IngestConfig
	runCfg  actions.IngestConfig
)

var planCmd = &cobra.Command{
	Use:   "plan [<table> ...]",
	Short: "Print the files and SQL each table would load without loading them",
	Long: `Print the files and SQL each table would load without loading them.

The external stage is refreshed and listed, and the high watermark of each table is read
from the history table, but nothing is written. Supply table names to limit the plan to
those tables, else all tables in the pipeline file are planned.`,
	Args: getTablesArgsFunc(&planCfg.Tables),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runPlan(cmd.Context())
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run [<table> ...]",
	Short: "Load the new files of each table and record them in the history table",
	Long: `Load the new files of each table and record them in the history table.

Each table with new files is loaded in its own transaction: the files are copied into a
transient staging table, matching rows are replaced in the target table and the files are
recorded in the history table. A failed table is rolled back and the remaining tables are
still loaded.`,
	Args: getTablesArgsFunc(&runCfg.Tables),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runIngest(cmd.Context())
		return err
	},
}

func runPlan(ctx context.Context) (*ingest.Report, error) {
	planCfg.Connections = getConnectionResolver()
	planCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunPlan(ctx, &planCfg)
}

func runIngest(ctx context.Context) (*ingest.Report, error) {
	runCfg.Connections = getConnectionResolver()
	runCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunIngest(ctx, &runCfg)
}

// addIngestFlags adds the flags used to find and load a pipeline.
func addIngestFlags(c *cobra.Command, cfg *actions.IngestConfig) {
	c.Flags().SortFlags = false
	switches.addFlag(c, &cfg.PipelineFile, "config-file", "", false, "")
	switches.addFlag(c, &cfg.Env, "environment", constants.DefaultEnvironment, false, "")
	switches.addFlag(c, &cfg.Output, "output", actions.OutputJson, false, "")
	switches.addFlag(c, &cfg.LogLevel, "log-level", "warn", false, "")
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
	addIngestFlags(planCmd, &planCfg)
	addIngestFlags(runCmd, &runCfg)
}
