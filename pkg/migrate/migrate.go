package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is the on-disk root used by the create/validate commands.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedded embed.FS

// dialectDirs maps a gorm dialect name to goose's dialect and the folder
// holding its SQL.
var dialectDirs = map[string]struct {
	goose   goose.Dialect
	dialect string
	dir     string
}{
	"postgres": {goose: goose.DialectPostgres, dialect: "postgres", dir: "postgres"},
	"sqlite":   {goose: goose.DialectSQLite3, dialect: "sqlite3", dir: "sqlite"},
}

// Dirs lists the per-dialect sub directories under DefaultDir.
func Dirs() []string {
	return []string{"postgres", "sqlite"}
}

func lookup(dialect string) (goose.Dialect, string, string, error) {
	entry, ok := dialectDirs[dialect]
	if !ok {
		return "", "", "", fmt.Errorf("unsupported migration dialect %q", dialect)
	}
	return entry.goose, entry.dialect, path.Join("migrations", entry.dir), nil
}

// Up applies every embedded migration for the dialect.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	gooseDialect, _, dir, err := lookup(dialect)
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(embedded, dir)
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Run executes a goose command against the embedded migrations of the dialect.
func Run(ctx context.Context, db *sql.DB, dialect string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	_, name, dir, err := lookup(dialect)
	if err != nil {
		return err
	}

	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(name); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	_, name, dir, err := lookup(dialect)
	if err != nil {
		return err
	}
	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(name); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
