// Dialect handling for the relational backend. The two supported
// engines differ only in DSN shape, placeholder syntax, and column
// types; everything else goes through database/sql.
package relstore

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// Dialect identifies the relational engine in use.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a backend name from configuration to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("%w: unknown relational dialect %q", types.ErrConfiguration, s)
	}
}

// DriverName returns the database/sql driver name for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// Rebind rewrites ? placeholders into the dialect's native form.
// Queries in this package are written with ?; sqlite takes them as-is
// and postgres needs $1, $2, ...
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DSN builds the connection string for the dialect from configuration.
func (d Dialect) DSN(cfg types.Config) string {
	if d == DialectPostgres {
		db := cfg.Database
		port := db.Port
		if port == 0 {
			port = 5432
		}
		user := db.User
		if user == "" {
			user = "postgres"
		}
		name := db.Name
		if name == "" {
			name = "kindling"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			db.Host, port, user, db.Password, name)
	}

	if cfg.Database.Path != "" {
		return cfg.Database.Path
	}
	if cfg.DataDir != "" {
		return filepath.Join(cfg.DataDir, "kindling.db")
	}
	return "kindling.db"
}
