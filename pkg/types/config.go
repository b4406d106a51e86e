package types

import "fmt"

// Supported backend names.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendFile:     true,
	BackendSQLite:   true,
	BackendPostgres: true,
}

// Config holds backend selection and parameters, resolved once at
// process startup. The chosen backend never changes per call.
type Config struct {
	Backend  string         `json:"backend" yaml:"backend"`
	DataDir  string         `json:"data_dir" yaml:"data_dir"`
	Database DatabaseConfig `json:"database" yaml:"database"`
}

// DatabaseConfig holds relational connection parameters. Path applies
// to the sqlite dialect; the remaining fields to postgres.
type DatabaseConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
}

// Configuration errors. All wrap ErrConfiguration so callers can treat
// any of them as the fatal startup condition.
var (
	ErrBackendEmpty      = fmt.Errorf("%w: backend must not be empty", ErrConfiguration)
	ErrBackendUnknown    = fmt.Errorf("%w: unknown backend", ErrConfiguration)
	ErrDBHostMissing     = fmt.Errorf("%w: database host is required", ErrConfiguration)
	ErrDBPasswordMissing = fmt.Errorf("%w: database password is required", ErrConfiguration)
)

// Validate checks that the Config is well-formed for its selected
// backend. Missing postgres credentials are fatal rather than
// recoverable: the process must not serve requests without them.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if c.Backend == BackendPostgres {
		if c.Database.Host == "" {
			return ErrDBHostMissing
		}
		if c.Database.Password == "" {
			return ErrDBPasswordMissing
		}
	}
	return nil
}
