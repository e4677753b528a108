package cmd

import (
	"github.com/relloyd/hpingest/actions"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service that plans and runs the pipeline on request",
	Long: `Start a web service that plans and runs the pipeline on request.

Endpoints:
  GET  /health         liveness
  GET  /plan           plan all tables
  GET  /plan/{table}   plan one table
  POST /run            plan and load all tables`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveCfg.Connections = getConnectionResolver()
		serveCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunServe(&serveCfg)
	},
}

var serveCfg actions.ServeConfig

func init() {
	rootCmd.AddCommand(serveCmd)
	addIngestFlags(serveCmd, &serveCfg.IngestConfig)
	switches.addFlag(serveCmd, &serveCfg.Web.Addr, "address", "", false, "")
	switches.addFlag(serveCmd, &serveCfg.Web.Port, "port", "8080", false, "")
	switches.addFlag(serveCmd, &serveCfg.Web.RunTimeout, "run-timeout", "600", false, "")
}
