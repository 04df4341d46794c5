package database

import "github.com/druscope/druscope/internal/errs"

// Driver identifies the database engine. Exactly four values are recognized;
// anything else fails at construction time.
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "pgsql"
	DriverMSSQL    Driver = "mssql"
	DriverOracle   Driver = "oracle"
)

// Config holds all settings needed to reach a database. It is typically
// produced by the settings parser and is immutable after construction.
type Config struct {
	// Driver is the database engine (e.g. DriverMySQL).
	Driver Driver

	Host     string
	Port     int
	Username string
	Password string

	// Database is the database name; for Oracle it maps to the service name.
	Database string

	// Prefix is prepended to every logical table name to build the
	// physical name that exists in the database. Empty means no prefix.
	Prefix string
}

// Validate checks that every field required for connecting is present.
// Prefix is optional; everything else is mandatory.
func (c *Config) Validate() error {
	missing := ""
	switch {
	case c.Driver == "":
		missing = "driver"
	case c.Database == "":
		missing = "database"
	case c.Username == "":
		missing = "username"
	case c.Password == "":
		missing = "password"
	case c.Host == "":
		missing = "host"
	case c.Port == 0:
		missing = "port"
	}
	if missing != "" {
		return errs.Newf(errs.ErrKindInvalidInput,
			"database configuration is incomplete: missing %s", missing)
	}
	return nil
}
