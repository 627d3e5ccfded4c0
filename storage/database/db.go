package database

import (
	"context"
	"embed"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trezcool/ratiba/core"
)

// Engines
const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

var (
	ErrUnknownEngine = errors.New("database engine must be one of sqlite or postgres")

	//go:embed schema/schema.sql
	schemaFS embed.FS
)

// Open connects to the configured database and waits for it to answer.
func Open(conf *core.Config) (*sqlx.DB, error) {
	var driver string
	switch conf.Database.Engine {
	case EngineSQLite:
		driver = "sqlite" // modernc.org/sqlite
	case EnginePostgres:
		driver = "postgres" // lib/pq
	default:
		return nil, ErrUnknownEngine
	}

	db, err := sqlx.Open(driver, conf.Database.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driver == "sqlite" {
		// in-memory databases live and die with their connection
		db.SetMaxOpenConns(1)
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate creates the workload tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema, err := schemaFS.ReadFile("schema/schema.sql")
	if err != nil {
		return errors.Wrap(err, "reading schema")
	}
	for _, stmt := range splitStatements(string(schema)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migrating database: %.40s", stmt)
		}
	}
	return nil
}

// splitStatements splits a script on `;`, dropping comments and blank statements.
// Statements must not hold string literals containing `;` or `--`.
func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		lines = append(lines, line)
	}
	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
