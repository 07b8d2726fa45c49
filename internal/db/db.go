package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"hawaii-climate/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// requiredTables are the dataset tables the service reads. The service never creates them.
var requiredTables = []string{"station", "measurement"}

// Open returns a pooled read-only handle to the dataset. With cfg.Debug set and the
// sqlite3 driver selected, every statement is logged through logger.
func Open(cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.Debug && cfg.Driver == "sqlite3" {
		connector, err := NewLoggingConnector(dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("db connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// VerifySchema checks that the dataset tables exist and are readable.
func VerifySchema(ctx context.Context, db *sql.DB) error {
	for _, table := range requiredTables {
		rows, err := db.QueryContext(ctx, "SELECT 1 FROM "+table+" LIMIT 1")
		if err != nil {
			return fmt.Errorf("dataset table %q: %w", table, err)
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("dataset table %q: %w", table, err)
		}
	}
	return nil
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := cfg.Path
	if !strings.HasPrefix(path, "file:") {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("dataset %s: %w", path, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("dataset %s: is a directory", path)
		}
	}

	// - mode=ro: the dataset is input, never written by the service
	// - busy_timeout: readers wait out a concurrent dataset reload instead of failing
	params := []string{
		"mode=ro",
		"_busy_timeout=5000",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
