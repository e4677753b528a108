package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/relloyd/hpingest/ingest"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2024-01-02T03:04+0000"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   "hpi",
	Short: "Load new files from S3 into Snowflake tables incrementally",
	Long: `hpi loads the files that land below an external Snowflake stage into their target tables.

Each file name carries a <timestamp>_<index> watermark. For every configured table hpi reads
the highest watermark loaded so far, selects the newer files in watermark order, copies them
into a transient staging table and replaces matching rows in the target table. The loaded
files are recorded in a history table in the same transaction so the next run continues
where this one stopped.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func(ctx context.Context) (*ingest.Report, error) {
				return execute12FactorMode(ctx, twelveFactorActions)
			})
		} else {
			if _, err := execute12FactorMode(ctx, twelveFactorActions); err != nil {
				// execute12FactorMode logs the error.
				cancel()
				os.Exit(1)
			}
		}
	} else { // else we're using CLI args and flags via Cobra...
		if err := rootCmd.ExecuteContext(ctx); err != nil {
			// Execute() prints the error.
			cancel()
			os.Exit(1)
		}
	}
}
