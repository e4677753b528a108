package actions

import (
	"github.com/relloyd/hpingest/config"
)

type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	SaveConnection(name string, conn config.Connection) error
	Delete(key string) error
	GetAllKeys() ([]string, error)
}

// ConnectionResolver supplies the Snowflake DSN of a pipeline.
type ConnectionResolver interface {
	GetSnowflakeDsn(name string) (string, error)
}

var _ ConnectionGetterSetter = &config.File{}
var _ ConnectionResolver = &config.File{}
