package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/constants"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/rdbms/shared"
	sf "github.com/snowflakedb/gosnowflake"
)

const snowflakeDsnPrefix = "snowflake://"

type SnowflakeConnectionDetails struct {
	Account   string `errorTxt:"Snowflake account" mandatory:"yes"`
	DBName    string `errorTxt:"Snowflake db name" mandatory:"yes"`
	Schema    string `errorTxt:"Snowflake schema" mandatory:"yes"`
	User      string `errorTxt:"Snowflake username" mandatory:"yes"`
	Password  string `errorTxt:"Snowflake password" mandatory:"yes"`
	Warehouse string `errorTxt:"Snowflake warehouse"`
	RoleName  string `errorTxt:"Snowflake role name"`
}

func (d SnowflakeConnectionDetails) String() string {
	return fmt.Sprintf("%v:%v@%v/%v?schema=%v&warehouse=%v&role=%v",
		d.User,
		"xxxxxxx",
		d.Account,
		d.DBName,
		d.Schema,
		d.Warehouse,
		d.RoleName,
	)
}

// ConnectionFactory opens a warehouse session for one ingestion run.
type ConnectionFactory func(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error)

// NewSnowflakeConnection opens the Snowflake database connection specified in d.
// The caller owns the connection and must Close() it at the end of the run.
func NewSnowflakeConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	if _, err := SnowflakeParseDSN(d.Dsn); err != nil {
		return nil, err
	}
	dsn := strings.TrimPrefix(d.Dsn, snowflakeDsnPrefix)
	conn := &shared.HpConnection{
		DbType: constants.ConnectionTypeSnowflake,
	}
	var err error
	conn.DbSql, err = sql.Open("snowflake", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open Snowflake connection")
	}
	// A single session per run keeps temporary objects and the transaction on one connection.
	conn.DbSql.SetMaxOpenConns(1)
	if err = conn.DbSql.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "unable to connect to Snowflake %v", d)
	}
	log.Info("Successful database connection to Snowflake: ", d)
	return conn, nil
}

// SnowflakeParseDSN converts a Snowflake DSN into native connection details.
// The prefix 'snowflake://' is removed from the DSN if it exists.
func SnowflakeParseDSN(d string) (*SnowflakeConnectionDetails, error) {
	if !strings.HasPrefix(d, snowflakeDsnPrefix) {
		return nil, errors.New("unsupported Snowflake DSN format: expected prefix snowflake://")
	}
	cfg, err := sf.ParseDSN(strings.TrimPrefix(d, snowflakeDsnPrefix))
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse Snowflake DSN")
	}
	retval := &SnowflakeConnectionDetails{
		User:      cfg.User,
		Password:  cfg.Password,
		Schema:    cfg.Schema,
		DBName:    cfg.Database,
		Account:   cfg.Account,
		RoleName:  cfg.Role,
		Warehouse: cfg.Warehouse,
	}
	if cfg.Region != "" { // if region exists in the parsed config...
		// Add it to our account settings.
		retval.Account = fmt.Sprintf("%v.%v", retval.Account, cfg.Region)
	}
	return retval, nil
}

// SnowflakeMultiStatementContext allows numStatements statements separated by semicolons
// to be sent in one call.
func SnowflakeMultiStatementContext(ctx context.Context, numStatements int) (context.Context, error) {
	return sf.WithMultiStatement(ctx, numStatements)
}
