package cmd

import (
	"fmt"

	"github.com/relloyd/hpingest/actions"
	"github.com/relloyd/hpingest/config"
	"github.com/relloyd/hpingest/constants"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure connections and default flag values",
	Long: fmt.Sprintf(`Configure connections & default parameters where:

- Connections are stored in file %q
- Default flag values are stored in file %q

Both files live in the config home directory and are encrypted.
`, config.ConnectionsConfigFileFullName, config.DefaultsConfigFileFullName),
}

var configConnCmd = &cobra.Command{
	Use:   "connections",
	Short: "Add, list or remove named connections",
}

var configDefaultCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Add, list or remove default flag values",
}

var (
	connAddCfg    actions.ConnectionConfig
	connRemoveCfg actions.ConnectionConfig
	defAddCfg     actions.DefaultAddConfig
	defRemoveCfg  actions.DefaultRemoveConfig
)

func newConnectionAddCmd(connType string, desc string) *cobra.Command {
	return &cobra.Command{
		Use:   connType,
		Short: "Add a " + desc + " connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.NewConnectionsFile()
			if err != nil {
				return err
			}
			connAddCfg.ConfigFile = f
			connAddCfg.Type = connType
			return actions.RunConnectionAdd(&connAddCfg)
		},
	}
}

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a named connection",
}

var configConnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List named connections with their passwords redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.NewConnectionsFile()
		if err != nil {
			return err
		}
		return actions.RunConnectionList(f, cmd.OutOrStdout())
	},
}

var configConnRemoveCmd = &cobra.Command{
	Use:   "rm",
	Short: "Remove a named connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.NewConnectionsFile()
		if err != nil {
			return err
		}
		connRemoveCfg.ConfigFile = f
		return actions.RunConnectionRemove(&connRemoveCfg)
	},
}

var configDefaultAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a default value for a flag",
	Long: `Save a default value for a flag.

The key is the long name of a flag, for example "environment" or "log-level".
Saved values are used when the flag is not given on the command line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.NewDefaultsFile()
		if err != nil {
			return err
		}
		defAddCfg.ConfigFile = f
		return actions.RunDefaultAdd(&defAddCfg)
	},
}

var configDefaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved default flag values",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.NewDefaultsFile()
		if err != nil {
			return err
		}
		return actions.RunDefaultList(f, cmd.OutOrStdout())
	},
}

var configDefaultRemoveCmd = &cobra.Command{
	Use:   "rm",
	Short: "Remove a saved default flag value",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.NewDefaultsFile()
		if err != nil {
			return err
		}
		defRemoveCfg.ConfigFile = f
		return actions.RunDefaultRemove(&defRemoveCfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configConnCmd)
	configCmd.AddCommand(configDefaultCmd)
	// Connections.
	configConnCmd.AddCommand(configConnAddCmd, configConnListCmd, configConnRemoveCmd)
	snowflakeAddCmd := newConnectionAddCmd(constants.ConnectionTypeSnowflake, "Snowflake")
	s3AddCmd := newConnectionAddCmd(constants.ConnectionTypeS3, "AWS S3 bucket")
	configConnAddCmd.AddCommand(snowflakeAddCmd, s3AddCmd)
	for _, c := range []*cobra.Command{snowflakeAddCmd, s3AddCmd} {
		c.Flags().SortFlags = false
		switches.addFlag(c, &connAddCfg.LogicalName, "connection-name", "", true, "")
		switches.addFlag(c, &connAddCfg.Dsn, "dsn", "", true, "")
		switches.addFlag(c, &connAddCfg.Force, "force", "false", false, "")
	}
	switches.addFlag(s3AddCmd, &connAddCfg.Region, "region", "", false, "")
	switches.addFlag(configConnRemoveCmd, &connRemoveCfg.LogicalName, "connection-name", "", true, "")
	// Defaults.
	configDefaultCmd.AddCommand(configDefaultAddCmd, configDefaultListCmd, configDefaultRemoveCmd)
	configDefaultAddCmd.Flags().SortFlags = false
	switches.addFlag(configDefaultAddCmd, &defAddCfg.Key, "key", "", true, "")
	switches.addFlag(configDefaultAddCmd, &defAddCfg.Value, "value", "", true, "")
	switches.addFlag(configDefaultAddCmd, &defAddCfg.Force, "force", "false", false, "")
	switches.addFlag(configDefaultRemoveCmd, &defRemoveCfg.Key, "key", "", true, "")
}
