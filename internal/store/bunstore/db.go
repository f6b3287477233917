package bunstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/kaizen"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to dsn with the given driver and wraps it in a bun.DB using
// the matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open sqlite")
		}
		// a single connection keeps in-memory databases shared and serializes writers
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open postgres")
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, goerrors.New(fmt.Sprintf("unsupported sql driver %q", driver), goerrors.CategoryBadInput)
	}
}

func benefitsJSON(b kaizen.Benefits) string {
	data, err := json.Marshal(b)
	if err != nil {
		return "[]"
	}
	return string(data)
}
