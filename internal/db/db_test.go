package db

import (
	"context"
	"database/sql"
	"io/fs"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawaii-climate/internal/config"
)

func writeDataset(t *testing.T, ddl string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	// user_version forces sqlite to create the file even without tables.
	_, err = conn.Exec(`PRAGMA user_version = 1;` + ddl)
	require.NoError(t, err)
	return path
}

const datasetDDL = `
CREATE TABLE station (station TEXT, name TEXT);
CREATE TABLE measurement (station TEXT, date TEXT, prcp REAL, tobs REAL);
INSERT INTO station VALUES ('USC00519397', 'WAIKIKI 717.2, HI US');
`

func TestBuildDSN(t *testing.T) {
	path := writeDataset(t, "")

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{name: "dsn override wins", cfg: config.Config{DSN: "file::memory:", Path: "ignored"}, want: "file::memory:"},
		{name: "plain path", cfg: config.Config{Path: path}, want: "file:" + path + "?mode=ro&_busy_timeout=5000"},
		{name: "file uri", cfg: config.Config{Path: "file:/x/y.db"}, want: "file:/x/y.db?mode=ro&_busy_timeout=5000"},
		{name: "file uri with params", cfg: config.Config{Path: "file:/x/y.db?cache=shared"}, want: "file:/x/y.db?cache=shared&mode=ro&_busy_timeout=5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDSN_missingDataset(t *testing.T) {
	_, err := buildDSN(config.Config{Path: filepath.Join(t.TempDir(), "missing.sqlite")})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBuildDSN_directory(t *testing.T) {
	_, err := buildDSN(config.Config{Path: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestOpen_readOnly(t *testing.T) {
	path := writeDataset(t, datasetDDL)

	conn, err := Open(config.Config{Driver: "sqlite3", Path: path, MaxOpenConns: 2, MaxIdleConns: 2}, slog.Default())
	require.NoError(t, err)
	defer func() { _ = Close(conn) }()

	require.NoError(t, VerifySchema(context.Background(), conn))

	var name string
	require.NoError(t, conn.QueryRow(`SELECT name FROM station WHERE station = ?`, "USC00519397").Scan(&name))
	assert.Equal(t, "WAIKIKI 717.2, HI US", name)

	_, err = conn.Exec(`INSERT INTO station VALUES ('X', 'Y')`)
	assert.Error(t, err, "insert on read-only handle should fail")
}

func TestOpen_debugLogsStatements(t *testing.T) {
	path := writeDataset(t, datasetDDL)
	handler := &captureHandler{}

	conn, err := Open(config.Config{Driver: "sqlite3", Path: path, Debug: true, MaxOpenConns: 1}, slog.New(handler))
	require.NoError(t, err)
	defer func() { _ = Close(conn) }()

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM station`).Scan(&n))
	assert.Equal(t, 1, n)

	recs := handler.recordsFor(t, "sql")
	require.NotEmpty(t, recs, "DEBUG open did not log statements")
	assert.Equal(t, `SELECT COUNT(*) FROM station`, recs[len(recs)-1]["sql"].String())
}

func TestOpen_missingDataset(t *testing.T) {
	_, err := Open(config.Config{Driver: "sqlite3", Path: filepath.Join(t.TempDir(), "nope.sqlite")}, nil)
	assert.Error(t, err)
}

func TestVerifySchema_missingTable(t *testing.T) {
	path := writeDataset(t, `CREATE TABLE station (station TEXT, name TEXT);`)

	conn, err := Open(config.Config{Driver: "sqlite3", Path: path}, nil)
	require.NoError(t, err)
	defer func() { _ = Close(conn) }()

	err = VerifySchema(context.Background(), conn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"measurement"`)
}

func TestClose_nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
