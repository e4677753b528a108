package actions

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/aws/s3"
	"github.com/relloyd/hpingest/config"
	"github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/helper"
	"github.com/relloyd/hpingest/rdbms"
	"github.com/relloyd/hpingest/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile  ConnectionGetterSetter `errorTxt:"connections file" mandatory:"yes"`
	LogicalName string                 `errorTxt:"connection name" mandatory:"yes"`
	Type        string                 `errorTxt:"connection type" mandatory:"yes"`
	Dsn         string                 `errorTxt:"DSN" mandatory:"yes"`
	Region      string                 // used by s3 connections only.
	Force       bool
}

// validateDsn checks that the DSN can be used by a connection of type t.
func validateDsn(t string, dsn string, region string) error {
	switch t {
	case constants.ConnectionTypeSnowflake:
		_, err := rdbms.SnowflakeParseDSN(dsn)
		return err
	case constants.ConnectionTypeS3:
		_, err := s3.ParseDSN(dsn, region)
		return err
	}
	return fmt.Errorf("unsupported connection type %q: expected %v or %v", t, constants.ConnectionTypeSnowflake, constants.ConnectionTypeS3)
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	// Validate connection name.
	if strings.Contains(cfg.LogicalName, ".") {
		return fmt.Errorf("connection name cannot contain period characters '.'")
	}
	if err := validateDsn(cfg.Type, cfg.Dsn, cfg.Region); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	// Check for an existing saved connection.
	existing := config.Connection{}
	err := cfg.ConfigFile.Get(cfg.LogicalName, &existing)
	if err != nil { // if there is an error finding the connection...
		var fnf config.FileNotFoundError
		var knf config.KeyNotFoundError
		if !errors.As(err, &fnf) && !errors.As(err, &knf) { // if the error is real...
			return err
		}
	} else if existing.Type != "" && !cfg.Force { // else if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	}
	// Set config (creates the file if missing).
	err = cfg.ConfigFile.SaveConnection(cfg.LogicalName, config.Connection{Type: cfg.Type, Dsn: cfg.Dsn})
	if err != nil {
		return fmt.Errorf("error writing connections config file after adding: %v", err)
	}
	fmt.Printf("Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if cfg.ConfigFile == nil || cfg.LogicalName == "" {
		return fmt.Errorf("please supply a connection name to remove")
	}
	err := cfg.ConfigFile.Delete(cfg.LogicalName)
	if err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	fmt.Printf("Connection %q removed\n", cfg.LogicalName)
	return nil
}

// RunConnectionList writes each saved connection to w in name order with its password redacted.
func RunConnectionList(f ConnectionGetterSetter, w io.Writer) error {
	keys, err := f.GetAllKeys()
	if err != nil {
		return err
	}
	sort.Strings(keys)
	for _, k := range keys { // for each connection...
		conn := config.Connection{}
		if err = f.Get(k, &conn); err != nil {
			return err
		}
		if _, err = fmt.Fprintf(w, "%v:\n  type: %v\n  dsn: %v\n", k, conn.Type, shared.DsnConnectionDetails{Dsn: conn.Dsn}); err != nil {
			return err
		}
	}
	return nil
}
