package shared

import (
	"net/url"

	"github.com/xo/dburl"
)

// DsnConnectionDetails is a simple struct to hold a DSN only.
type DsnConnectionDetails struct {
	Dsn string `errorTxt:"data source name i.e. connect string" mandatory:"yes"`
}

// String returns the DSN with redacted password.
func (d DsnConnectionDetails) String() string {
	if u, err := dburl.Parse(d.Dsn); err == nil {
		return u.Redacted()
	}
	if u, err := url.Parse(d.Dsn); err == nil {
		return u.Redacted()
	}
	return "<unparsable dsn>"
}
