package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/relloyd/hpingest/actions"
	"github.com/relloyd/hpingest/config"
	"github.com/relloyd/hpingest/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"config-file": cliFlag{name: "config-file", shortHand: "c",
		desc: "The pipeline file (.yaml) that describes the stage, tables and history table.\n" +
			"Leave blank to use the file in the config home directory"},
	"environment": cliFlag{name: "environment", shortHand: "e",
		desc: "The top-level section of the pipeline file to use"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Specify \"yaml\" or \"json\" to print the report of planned or loaded files"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"execute-ddl": cliFlag{name: "execute-ddl", shortHand: "x",
		desc: "Execute the generated DDL against the Snowflake connection (otherwise it's printed only)"},
	"skip-pipeline": cliFlag{name: "skip-pipeline", shortHand: "s",
		desc: "Do not write a sample pipeline file"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"address": cliFlag{name: "address", shortHand: "a",
		desc: "Address to listen on (leave blank for all interfaces)"},
	"run-timeout": cliFlag{name: "run-timeout", shortHand: "t",
		desc: "The number of seconds after which a POST /run is cancelled and its open transactions rolled back (use 0 for 15 minutes)"},
	"connection-name": cliFlag{name: "connection-name", shortHand: "n",
		desc: "Connection name referred to by the pipeline file"},
	"dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "Connection string of the form snowflake://<user>:<password>@<account>/<database>/<schema>?warehouse=<wh>\n" +
			"or s3://<bucket name>/<prefix>"},
	"region": cliFlag{name: "region", shortHand: "r",
		desc: "AWS S3 bucket region (s3 connections only)"},
	"force": cliFlag{name: "force", shortHand: "f",
		desc: "Allow overwrite of existing entries"},
	"key": cliFlag{name: "key", shortHand: "k",
		desc: "The name of the flag to save a default value for"},
	"value": cliFlag{name: "value", shortHand: "v",
		desc: "The default value of the flag"},
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from the defaults file if it exists else the
// supplied defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, getDefaultsFunc())
	desc := sw.desc + desc2
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		defaultBool := false
		if b, err := strconv.ParseBool(sw.val); err == nil {
			defaultBool = b
		} else if twelveFactorMode && sw.val != "" { // any other non-empty env value switches the flag on.
			defaultBool = true
		}
		if twelveFactorMode {
			*p = defaultBool
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc)
			mustSetFlag(c.Flags(), sw.name, strconv.FormatBool(defaultBool))
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			if sw.val != "" {
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *time.Duration: // supplied in whole seconds.
		secs, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be a number of seconds: %v\n", sw.name, err)
			os.Exit(1)
		}
		d := time.Duration(secs) * time.Second
		if twelveFactorMode {
			*p = d
		} else {
			c.Flags().DurationVarP(p, sw.name, sw.shortHand, d, desc)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode { // if the flag is required...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the defaults file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if v := os.Getenv(flagNameToEnvVar(name)); v != "" {
			s.val = v
		} else {
			s.val = defaultValue
		}
	} else { // else check the defaults file or apply default...
		err := fnGetConfig(s.name, &s.val)
		if err != nil || s.val == "" { // if there was no key found...
			s.val = defaultValue
		}
	}
	return s
}

var defaultsFile *config.File

// getDefaultsFunc returns the Get method of the defaults file or a func that finds nothing
// when the config home directory is not available.
func getDefaultsFunc() func(key string, out interface{}) error {
	if defaultsFile == nil {
		f, err := config.NewDefaultsFile()
		if err != nil {
			return func(key string, out interface{}) error {
				return err
			}
		}
		defaultsFile = f
	}
	return defaultsFile.Get
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return helper.GetEnvVarName(name)
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// getConnectionResolver returns the connections file or nil in twelveFactorMode where the
// DSN comes from the environment.
func getConnectionResolver() actions.ConnectionResolver {
	if twelveFactorMode {
		return nil
	}
	f, err := config.NewConnectionsFile()
	if err != nil {
		return nil
	}
	return f
}

// getTablesArgsFunc returns a func that cobra uses to save the optional table names in args.
func getTablesArgsFunc(tables *[]string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for _, a := range args {
			if strings.TrimSpace(a) == "" {
				return errors.New("table names must not be blank")
			}
		}
		*tables = args
		return nil
	}
}
