package config

import (
	"fmt"

	"github.com/relloyd/hpingest/constants"
)

// Connection is a named connection saved in the connections file.
type Connection struct {
	Type string `mapstructure:"type"`
	Dsn  string `mapstructure:"dsn"`
}

// SaveConnection stores the connection under name, replacing any existing entry.
func (c *File) SaveConnection(name string, conn Connection) error {
	if conn.Type == "" {
		return fmt.Errorf("unknown type for connection %q", name)
	}
	return c.Set(name, map[string]string{"type": conn.Type, "dsn": conn.Dsn})
}

// GetConnection fetches the named connection.
// If the connection is not found then an error is produced.
func (c *File) GetConnection(name string) (Connection, error) {
	conn := Connection{}
	if err := c.Get(name, &conn); err != nil {
		return conn, err
	}
	if conn.Type == "" { // if the connection was not found...
		return conn, fmt.Errorf("connection %q is not configured: use 'hpi config connections add' to create it", name)
	}
	return conn, nil
}

// GetSnowflakeDsn returns the DSN of the named connection, which must be of type snowflake.
func (c *File) GetSnowflakeDsn(name string) (string, error) {
	conn, err := c.GetConnection(name)
	if err != nil {
		return "", err
	}
	if conn.Type != constants.ConnectionTypeSnowflake {
		return "", fmt.Errorf("connection %q must be of type %v, got %q", name, constants.ConnectionTypeSnowflake, conn.Type)
	}
	return conn.Dsn, nil
}
