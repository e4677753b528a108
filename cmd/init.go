package cmd

import (
	"context"

	"github.com/relloyd/hpingest/actions"
	"github.com/relloyd/hpingest/constants"
	"github.com/spf13/cobra"
)

var initCfg actions.InitConfig

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample pipeline file and print the history table DDL",
	Long: `Write a sample pipeline file and print the history table DDL.

Use --execute-ddl to create the history table in Snowflake instead of printing the DDL.
An existing pipeline file is never overwritten: use --skip-pipeline to print the DDL only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.Context())
	},
}

func runInit(ctx context.Context) error {
	initCfg.Connections = getConnectionResolver()
	initCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunInit(ctx, &initCfg)
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().SortFlags = false
	switches.addFlag(initCmd, &initCfg.PipelineFile, "config-file", "", false, "")
	switches.addFlag(initCmd, &initCfg.Env, "environment", constants.DefaultEnvironment, false, "")
	switches.addFlag(initCmd, &initCfg.LogLevel, "log-level", "warn", false, "")
	switches.addFlag(initCmd, &initCfg.ExecuteDDL, "execute-ddl", "false", false, "")
	switches.addFlag(initCmd, &initCfg.SkipPipeline, "skip-pipeline", "false", false, "")
}
