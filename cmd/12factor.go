package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	c "github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/helper"
	"github.com/relloyd/hpingest/ingest"
	"github.com/relloyd/hpingest/logger"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the actions.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(c.EnvVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		lambdaMode = strings.ToLower(mode) == "lambda"
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarCommand = c.EnvVarPrefix + "_" + "COMMAND" // plan|run|init
	envVarTables  = c.EnvVarPrefix + "_" + "TABLES"  // CSV of tables to plan or run, default all.
)

var (
	twelveFactorMode bool // true if os env var c.EnvVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var c.EnvVarTwelveFactorMode is set to "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:              "",
		envVarTables:               "",
		c.EnvVarConfigFile:         "",
		c.EnvVarEnvironment:        "",
		c.EnvVarSnowflakeDsn:       "",
		c.EnvVarLogLevel:           "",
		c.EnvVarStackDump:          "",
		"AWS_REGION":               "",
		"AWS_LAMBDA_FUNCTION_NAME": "",
	}
	twelveFactorVarsSensitive = map[string]string{ // used to flag some of the above variables as being sensitive.
		c.EnvVarSnowflakeDsn: "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(tables []string)
	runnerFunc func(ctx context.Context) (*ingest.Report, error)
}

var twelveFactorActions = map[string]twelveFactorAction{
	"plan": {
		setupFunc:  func(tables []string) { planCfg.Tables = tables },
		runnerFunc: runPlan,
	},
	"run": {
		setupFunc:  func(tables []string) { runCfg.Tables = tables },
		runnerFunc: runIngest,
	},
	"init": {
		setupFunc: func(tables []string) {},
		runnerFunc: func(ctx context.Context) (*ingest.Report, error) {
			return nil, runInit(ctx)
		},
	},
}

func execute12FactorMode(ctx context.Context, acts map[string]twelveFactorAction) (report *ingest.Report, err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(c.EnvVarLogLevel, "warn") // fetch logLevel from env as this is not a persistent flag.
	var log logger.Logger
	if lambdaMode {
		log = logger.NewLambdaLogger(c.ServiceName, logLevel, nil)
	} else {
		log = logger.NewLogger(c.ServiceName, logLevel, stackDumpOnPanic)
	}
	planCfg.Log, runCfg.Log, initCfg.Log = log, log, log
	log.Info("hpi is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		// Save it and log it.
		twelveFactorVars[k] = os.Getenv(k)
		_, sensitive := twelveFactorVarsSensitive[k]
		if !sensitive { // if the env variable does not contain sensitive values...
			log.Debug(k, "=", twelveFactorVars[k])
		} else { // else output obfuscated value...
			log.Debug(k, "=", "<obfuscated>")
		}
	}
	// Use the command to fetch the appropriate action.
	a, ok := acts[strings.ToLower(twelveFactorVars[envVarCommand])]
	if !ok {
		err = fmt.Errorf("invalid command %q in %v: expected plan, run or init", twelveFactorVars[envVarCommand], envVarCommand)
		log.Error(err.Error())
		return
	}
	var tables []string
	if v := twelveFactorVars[envVarTables]; v != "" {
		tables = helper.CsvToStringSliceTrimSpaces(v)
	}
	a.setupFunc(tables)
	// Run the action.
	report, err = a.runnerFunc(ctx)
	if err != nil {
		log.Error("Error: ", err)
	}
	return report, err
}
